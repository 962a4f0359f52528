package sheets

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"clientreport/internal/records"
)

const (
	DefaultRetries      = 5
	DefaultInitialDelay = 2 * time.Second
)

// FetchResult is the detailed outcome of a fetch.
type FetchResult struct {
	Grid      records.RawGrid
	Attempts  int
	Exhausted bool
	LastErr   error
}

// FetchMetrics are the counters a Fetcher reports to. Nil fields are skipped.
type FetchMetrics struct {
	Attempts  metric.Int64Counter
	Failures  metric.Int64Counter
	Exhausted metric.Int64Counter
}

func (m FetchMetrics) add(ctx context.Context, c metric.Int64Counter, table string) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("table", table)))
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Fetcher reads grids with bounded retries. The delay doubles after every
// failed attempt, including the last one.
type Fetcher struct {
	retries int
	delay   time.Duration
	logger  *slog.Logger
	limiter *rate.Limiter
	sleep   SleepFunc
	metrics FetchMetrics
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithLimiter throttles every attempt through l.
func WithLimiter(l *rate.Limiter) FetcherOption {
	return func(f *Fetcher) { f.limiter = l }
}

// NewLimiter returns a limiter allowing n Sheets requests per minute, or nil
// for non-positive n. Workbook lookups and grid reads count against the
// same quota, so the resolver and the fetcher share one limiter.
func NewLimiter(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
}

// WithSleep replaces the backoff wait.
func WithSleep(fn SleepFunc) FetcherOption {
	return func(f *Fetcher) { f.sleep = fn }
}

// WithFetchMetrics sets the counters the fetcher reports to.
func WithFetchMetrics(m FetchMetrics) FetcherOption {
	return func(f *Fetcher) { f.metrics = m }
}

// NewFetcher returns a Fetcher. Non-positive retries fall back to
// DefaultRetries and a negative delay to zero.
func NewFetcher(retries int, delay time.Duration, logger *slog.Logger, opts ...FetcherOption) *Fetcher {
	if retries <= 0 {
		retries = DefaultRetries
	}
	if delay < 0 {
		delay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fetcher{
		retries: retries,
		delay:   delay,
		logger:  logger.With(slog.String("component", "sheets_fetcher")),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Retries returns the attempt bound.
func (f *Fetcher) Retries() int { return f.retries }

// Fetch returns the grid read by r, or an empty grid once every attempt
// has failed. Use FetchDetailed to tell the two apart.
func (f *Fetcher) Fetch(ctx context.Context, r GridReader) records.RawGrid {
	return f.FetchDetailed(ctx, r).Grid
}

// FetchDetailed is Fetch with the attempt count and final error.
func (f *Fetcher) FetchDetailed(ctx context.Context, r GridReader) FetchResult {
	table := r.Name()
	delay := f.delay

	var lastErr error
	attempts := 0
	for attempts < f.retries {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				lastErr = err
				break
			}
		}

		attempts++
		f.metrics.add(ctx, f.metrics.Attempts, table)

		values, err := r.ReadGrid(ctx)
		if err == nil {
			return FetchResult{Grid: records.RawGrid(values), Attempts: attempts}
		}
		lastErr = err
		f.metrics.add(ctx, f.metrics.Failures, table)

		f.logger.WarnContext(ctx, "fetch attempt failed",
			slog.String("table", table),
			slog.Int("attempt", attempts),
			slog.Int("max_attempts", f.retries),
			slog.Duration("retry_in", delay),
			slog.String("error", err.Error()))

		if err := f.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
		delay *= 2
	}

	f.metrics.add(ctx, f.metrics.Exhausted, table)
	f.logger.ErrorContext(ctx, "fetch exhausted, continuing with empty table",
		slog.String("table", table),
		slog.Int("attempts", attempts),
		slog.Any("error", lastErr))

	return FetchResult{
		Grid:      records.RawGrid{},
		Attempts:  attempts,
		Exhausted: true,
		LastErr:   lastErr,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
