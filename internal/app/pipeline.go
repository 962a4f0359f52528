package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"clientreport/internal/chart"
	"clientreport/internal/config"
	"clientreport/internal/document"
	"clientreport/internal/infrastructure"
	"clientreport/internal/pipeline"
	"clientreport/internal/report"
	"clientreport/internal/sheets"
)

// NewLimiter returns the Sheets request limiter for cfg, nil when rate
// limiting is off. Pass the same limiter to NewResolver and NewRunner.
func NewLimiter(cfg config.SheetsConfig) *rate.Limiter {
	return sheets.NewLimiter(cfg.RatePerMinute)
}

// NewResolver loads the service-account credentials named in cfg and
// returns a Google Sheets resolver. A missing file yields an error wrapping
// sheets.ErrCredentialsMissing.
func NewResolver(ctx context.Context, cfg config.SheetsConfig, limiter *rate.Limiter, logger *slog.Logger) (sheets.Resolver, error) {
	creds, err := sheets.LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	resolver, err := sheets.NewGoogleResolverFromCredentials(ctx, creds, limiter, logger)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return resolver, nil
}

// NewRunner assembles the report pipeline: fetcher with retries and rate
// limit, PNG charts and the XLSX encoder. metrics may be nil.
func NewRunner(cfg config.SheetsConfig, resolver sheets.Resolver, limiter *rate.Limiter, logger *slog.Logger, providers *infrastructure.OTelProviders, metrics *infrastructure.BusinessMetrics, observer pipeline.Observer) *pipeline.Runner {
	fetcher := sheets.NewFetcher(cfg.Retries, cfg.InitialDelay, logger,
		sheets.WithLimiter(limiter),
		sheets.WithFetchMetrics(metrics.FetchMetrics()))

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithObserver(observer),
		pipeline.WithMetrics(metrics.PipelineMetrics()),
		pipeline.WithStrictFetch(cfg.StrictFetch),
	}
	if providers != nil {
		opts = append(opts, pipeline.WithTracer(providers.Tracer))
	}
	return pipeline.NewRunner(resolver, fetcher,
		report.NewSynthesizer(chart.NewPNGRenderer()),
		document.NewXLSXEncoder(),
		opts...)
}
