package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gaedke-construction/smartquote/internal/analytics"
	"github.com/gaedke-construction/smartquote/internal/chat"
	httpmiddleware "github.com/gaedke-construction/smartquote/internal/http/middleware"
	"github.com/gaedke-construction/smartquote/internal/leads"
	"github.com/gaedke-construction/smartquote/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *chat.Handler
	LeadsHandler       *leads.Handler
	AnalyticsHandler   *analytics.Handler
	MetricsHandler     http.Handler
	RateLimiter        *httpmiddleware.RateLimiter
	AdminAuthSecret    string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		// Endpoints that reach the model or mail providers are rate limited.
		api.Group(func(limited chi.Router) {
			if cfg.RateLimiter != nil {
				limited.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
			}
			if cfg.ChatHandler != nil {
				limited.Post("/chat", cfg.ChatHandler.Chat)
			}
			if cfg.LeadsHandler != nil {
				limited.Post("/lead", cfg.LeadsHandler.SubmitLead)
			}
		})
		if cfg.ChatHandler != nil {
			api.Get("/chat/models", cfg.ChatHandler.Models)
		}
		if cfg.AnalyticsHandler != nil {
			api.Post("/analytics", cfg.AnalyticsHandler.Record)
			api.With(httpmiddleware.AdminJWTIfConfigured(cfg.AdminAuthSecret)).Get("/analytics", cfg.AnalyticsHandler.List)
		}
	})

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		if cfg.LeadsHandler != nil {
			admin.Get("/leads", cfg.LeadsHandler.ListLeads)
			admin.Get("/leads/{leadID}", cfg.LeadsHandler.GetLead)
		}
		if cfg.AnalyticsHandler != nil {
			admin.Get("/analytics/counts", cfg.AnalyticsHandler.Counts)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
