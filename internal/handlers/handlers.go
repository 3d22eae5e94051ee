package handlers

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shrikavin.dev/internal/cache"
	"shrikavin.dev/internal/config"
	"shrikavin.dev/internal/mailer"
	"shrikavin.dev/internal/middleware"
	"shrikavin.dev/internal/ratelimit"
	"shrikavin.dev/internal/render"
	"shrikavin.dev/internal/services"
	"shrikavin.dev/web"
)

// Dependencies are the long-lived resources owned by the caller
type Dependencies struct {
	Store   services.MessageStore
	Mailer  mailer.Mailer
	Guard   cache.Guard
	Limiter *ratelimit.Limiter
	Logger  *log.Logger
}

// SetupRoutes configures all routes and returns the router
func SetupRoutes(cfg *config.Config, deps Dependencies) (http.Handler, error) {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NewLimiter(ratelimit.Config{})
	}

	proxies, err := middleware.ParseProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RealIP(proxies))
	r.Use(middleware.Logger(logger))

	// Initialize services
	portfolioService := services.NewPortfolioService(cfg.Portfolio)
	contactService := services.NewContactService(deps.Store, deps.Mailer, deps.Guard, services.ContactOptions{
		GuardTTL: cfg.SubmitGuardTTL,
		Salt:     cfg.ContactSalt,
		Logger:   logger,
	})
	resumeService := services.NewResumeService(cfg.ResumeFile(), cfg.Portfolio.Profile)
	backgroundService := services.NewBackgroundService(cfg.BackgroundFPS, logger)

	renderer, err := render.New(web.Templates, portfolioService, render.DefaultAssets)
	if err != nil {
		return nil, err
	}

	// Initialize handlers
	pageHandler := NewPageHandler(renderer, resumeService)
	projectHandler := NewProjectHandler(portfolioService)
	contactHandler := NewContactHandler(contactService, renderer, logger)
	resumeHandler := NewResumeHandler(resumeService)
	backgroundHandler := NewBackgroundHandler(backgroundService, logger)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/portfolio", projectHandler.GetPortfolio)
		r.Get("/skills", projectHandler.ListSkills)

		// Project endpoints
		r.Get("/projects", projectHandler.ListProjects)
		r.Get("/projects/{id}", projectHandler.GetProject)

		r.Get("/background", backgroundHandler.Snapshot)
		r.Get("/resume/link", resumeHandler.Link)
		r.With(middleware.RateLimit(deps.Limiter, http.HandlerFunc(contactHandler.Limited))).Post("/contact", contactHandler.Submit)

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	r.Get("/ws/background", backgroundHandler.Stream)
	r.Get("/resume", resumeHandler.Download)
	r.Get("/sections/{id}", pageHandler.Section)

	// Static files
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	fileServer := http.FileServer(http.FS(static))
	r.Handle("/static/*", http.StripPrefix("/static", fileServer))

	r.Get("/", pageHandler.Index)

	return r, nil
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON: %v", err)
	}
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
