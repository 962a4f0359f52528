package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"clientreport/internal/config"
	apierrors "clientreport/internal/errors"
	"clientreport/internal/infrastructure"
	"clientreport/internal/middleware"
	"clientreport/internal/pipeline"
	"clientreport/internal/services"
	"clientreport/internal/sheets"
	"clientreport/internal/store"
	handlers "clientreport/internal/transport/http"
	ws "clientreport/internal/websocket"
	"clientreport/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	OTel      *infrastructure.OTelProviders
	Metrics   *infrastructure.BusinessMetrics
	Runner    *pipeline.Runner
	Downloads *store.Downloads
	Hub       *ws.Hub
	Router    http.Handler
	Server    *http.Server
}

// Option customizes New.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	resolver sheets.Resolver
}

// WithLogger uses logger instead of initializing the global one.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithResolver replaces the Google Sheets resolver. Credentials are not
// loaded when a resolver is given.
func WithResolver(r sheets.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// New builds the application. It fails fast on invalid configuration and
// on missing credentials.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		if logger, err = infrastructure.InitializeLogger(cfg.Logging); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	logger.InfoContext(ctx, "application starting",
		slog.String("version", contracts.Version),
		slog.Int("port", cfg.Server.Port))

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	limiter := NewLimiter(cfg.Sheets)
	resolver := o.resolver
	if resolver == nil {
		if resolver, err = NewResolver(ctx, cfg.Sheets, limiter, logger); err != nil {
			return nil, err
		}
	}

	hub := ws.NewHub(logger)
	downloads := store.NewDownloads(cfg.Downloads.TTL, cfg.Downloads.CleanupInterval)
	runner := NewRunner(cfg.Sheets, resolver, limiter, logger, providers, metrics, hub)

	errorHandler := apierrors.NewErrorHandler(logger, false)
	router := handlers.NewRouter(handlers.RouterConfig{
		Reports: handlers.NewReportHandler(
			services.NewReportService(runner, downloads, cfg.Server.MaxLocators, metrics.DownloadsServed, logger),
			middleware.NewRequestValidator(), errorHandler, logger),
		Health:         handlers.NewHealthHandler(services.NewHealthService(hub.ClientCount, downloads.Len)),
		WebSocket:      ws.NewHandler(hub, cfg.WebSocket, cfg.Server.AllowedOrigins, logger),
		Metrics:        providers.PrometheusHTTP,
		OTel:           middleware.NewOTelMiddleware(providers.Tracer, metrics),
		ErrorHandler:   errorHandler,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	return &Application{
		Config:    cfg,
		Logger:    logger,
		OTel:      providers,
		Metrics:   metrics,
		Runner:    runner,
		Downloads: downloads,
		Hub:       hub,
		Router:    router,
		Server: &http.Server{
			Addr:         net.JoinHostPort("", strconv.Itoa(cfg.Server.Port)),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

// Run listens on the configured port and serves until ctx ends.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends or the server fails, then shuts the
// application down.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Hub.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.InfoContext(gctx, "server listening", slog.String("address", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Shutdown stops the server, the hub and the telemetry providers.
func (a *Application) Shutdown(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	a.Hub.Stop()
	if err := a.OTel.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return errors.Join(errs...)
}
