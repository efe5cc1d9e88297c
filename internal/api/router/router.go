package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/llc-formation-platform/internal/admin"
	"github.com/wolfman30/llc-formation-platform/internal/applications"
	"github.com/wolfman30/llc-formation-platform/internal/contacts"
	httpmiddleware "github.com/wolfman30/llc-formation-platform/internal/http/middleware"
	"github.com/wolfman30/llc-formation-platform/internal/intake"
	"github.com/wolfman30/llc-formation-platform/internal/observability/metrics"
	"github.com/wolfman30/llc-formation-platform/internal/webchat"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Metrics            *metrics.IntakeMetrics
	ApplicationHandler *applications.Handler
	ContactHandler     *contacts.Handler
	ChatHandler        *webchat.Handler
	AdminHandler       *admin.Handler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Public POST rate limit per client IP. Zero disables it.
	PublicRateLimit float64
	PublicBurst     int

	// Ready reports whether backing stores are reachable (optional).
	Ready func(ctx context.Context) error
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger, cfg.Metrics))

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.PublicRateLimit > 0 {
		limit = httpmiddleware.RateLimit(cfg.PublicRateLimit, cfg.PublicBurst)
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", health(cfg.Ready))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.ApplicationHandler != nil {
			public.With(limit).Post("/applications", cfg.ApplicationHandler.CreateApplication)
		}
		if cfg.ContactHandler != nil {
			public.With(limit).Post("/contacts", cfg.ContactHandler.CreateContact)
		}
		if cfg.ChatHandler != nil {
			public.Route("/chat", func(chat chi.Router) {
				chat.With(limit).Post("/message", cfg.ChatHandler.HandleMessage)
				chat.Get("/history", cfg.ChatHandler.HandleHistory)
				chat.Get("/ws", cfg.ChatHandler.HandleWebSocket)
			})
		}
	})

	// Operator routes are only mounted when a signing secret is configured.
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(adm chi.Router) {
			adm.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.AdminHandler != nil {
				adm.Get("/dashboard", cfg.AdminHandler.Dashboard)
				adm.Get("/analytics", cfg.AdminHandler.Analytics)
				adm.Get("/conversations", cfg.AdminHandler.Conversations)
			}
			if cfg.ApplicationHandler != nil {
				adm.Route("/applications/{id}", func(app chi.Router) {
					app.Get("/", cfg.ApplicationHandler.GetApplication)
					app.Patch("/status", cfg.ApplicationHandler.UpdateStatus)
				})
			}
		})
	}

	return r
}

func health(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				intake.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		intake.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
