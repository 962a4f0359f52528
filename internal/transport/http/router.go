package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "clientreport/internal/errors"
	"clientreport/internal/middleware"
)

// RouterConfig carries everything the router mounts. Nil Metrics or
// WebSocket handlers leave those endpoints out.
type RouterConfig struct {
	Reports        *ReportHandler
	Health         *HealthHandler
	WebSocket      http.Handler
	Metrics        http.Handler
	OTel           *middleware.OTelMiddleware
	ErrorHandler   *apierrors.ErrorHandler
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter assembles the middleware chain and routes.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	if cfg.OTel != nil {
		r.Use(cfg.OTel.Handler)
	}
	r.Use(middleware.StructuredLogger(cfg.Logger))
	r.Use(cfg.ErrorHandler.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.AllowedOrigins}))

	r.NotFound(cfg.ErrorHandler.NotFound)
	r.MethodNotAllowed(cfg.ErrorHandler.MethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", cfg.Health.HealthCheck)
		r.Get("/version", cfg.Health.Version)
		r.Mount("/reports", cfg.Reports.Routes())
	})

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	if cfg.WebSocket != nil {
		r.Method(http.MethodGet, "/ws", cfg.WebSocket)
	}
	return r
}
