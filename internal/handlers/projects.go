package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shrikavin.dev/internal/services"
)

// ProjectHandler serves the portfolio content as JSON
type ProjectHandler struct {
	portfolioService *services.PortfolioService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(ps *services.PortfolioService) *ProjectHandler {
	return &ProjectHandler{portfolioService: ps}
}

// GetPortfolio handles GET /api/portfolio
func (h *ProjectHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.portfolioService.GetAll())
}

// ListProjects handles GET /api/projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.portfolioService.GetProjects())
}

// GetProject handles GET /api/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	project, err := h.portfolioService.GetProjectByID(id)
	if errors.Is(err, services.ErrProjectNotFound) {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load project")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// ListSkills handles GET /api/skills
func (h *ProjectHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.portfolioService.Skills())
}
