package handlers

import (
	"errors"
	"log"
	"net/http"

	"shrikavin.dev/internal/services"
)

// ResumeHandler serves the resume download
type ResumeHandler struct {
	resumeService *services.ResumeService
}

// NewResumeHandler creates a new ResumeHandler
func NewResumeHandler(rs *services.ResumeService) *ResumeHandler {
	return &ResumeHandler{resumeService: rs}
}

// Download handles GET /resume. Handheld devices get the PDF inline,
// everything else a named attachment.
func (h *ResumeHandler) Download(w http.ResponseWriter, r *http.Request) {
	f, info, err := h.resumeService.Open()
	if errors.Is(err, services.ErrResumeMissing) {
		http.Error(w, "Resume not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error opening resume: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", h.resumeService.Disposition(r.UserAgent()))
	w.Header().Set("Vary", "User-Agent")
	http.ServeContent(w, r, h.resumeService.Filename(), info.ModTime(), f)
}

// Link handles GET /api/resume/link
func (h *ResumeHandler) Link(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.resumeService.Link(r.UserAgent()))
}
