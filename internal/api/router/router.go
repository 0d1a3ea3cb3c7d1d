package router

import (
	"encoding/json"
	"net/http"

	"github.com/didax-edu/site-api/internal/http/middleware"
	"github.com/didax-edu/site-api/internal/leads"
	"github.com/didax-edu/site-api/pkg/logging"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	CatalogHandler     *leads.CatalogHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// No RealIP: the lead handler reads X-Forwarded-For and needs the peer address as fallback.
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/public", func(public chi.Router) {
		if cfg.LeadsHandler != nil {
			public.Post("/leads", cfg.LeadsHandler.CreatePublicLead)
		}
		if cfg.CatalogHandler != nil {
			public.Get("/interests", cfg.CatalogHandler.ListInterests)
			public.Get("/modules", cfg.CatalogHandler.ListModules)
		}
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
