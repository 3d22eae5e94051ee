package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shrikavin.dev/internal/render"
	"shrikavin.dev/internal/services"
)

// PageHandler serves the HTML page and its section fragments
type PageHandler struct {
	renderer      *render.Renderer
	resumeService *services.ResumeService
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(renderer *render.Renderer, rs *services.ResumeService) *PageHandler {
	return &PageHandler{renderer: renderer, resumeService: rs}
}

func (h *PageHandler) request(r *http.Request) render.Request {
	return render.Request{Resume: h.resumeService.Link(r.UserAgent())}
}

// Index handles GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, h.request(r)); err != nil {
		log.Printf("Error rendering page: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// Section handles GET /sections/{id}
func (h *PageHandler) Section(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var buf bytes.Buffer
	err := h.renderer.Section(&buf, id, h.request(r))
	if errors.Is(err, render.ErrUnknownSection) {
		http.Error(w, "Section not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error rendering section %s: %v", id, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Vary", "User-Agent")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}
