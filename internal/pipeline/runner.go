// Package pipeline runs the per-client report pipeline over a batch of
// spreadsheet locators.
//
// Sources are processed sequentially in input order. Every source yields
// exactly one Result; a failure at any stage, including a panic, is
// captured on that source's Result and the batch moves on.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"clientreport/internal/document"
	"clientreport/internal/records"
	"clientreport/internal/report"
	"clientreport/internal/sheets"
)

const tracerName = "clientreport/pipeline"

// Result is the outcome of one source: either Report and Artifact are set
// or Err is.
type Result struct {
	Source   string
	Report   *report.Report
	Artifact *document.Artifact
	Err      *SourceError
}

// OK reports whether the source produced a document.
func (r Result) OK() bool { return r.Err == nil }

// Errors collects the failures of a batch.
func Errors(results []Result) *ErrorList {
	list := &ErrorList{}
	for _, r := range results {
		list.Add(r.Err)
	}
	return list
}

// Metrics are the instruments a Runner reports to. Nil fields are skipped.
type Metrics struct {
	SourcesProcessed metric.Int64Counter
	RunDuration      metric.Float64Histogram
}

// Runner executes batches.
type Runner struct {
	resolver    sheets.Resolver
	fetcher     *sheets.Fetcher
	synthesizer *report.Synthesizer
	encoder     document.Encoder

	observer    Observer
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     Metrics
	strictFetch bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracer sets the tracer used for run and source spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithMetrics sets the metric instruments.
func WithMetrics(m Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithStrictFetch makes an exhausted fetch fail the source instead of
// continuing with an empty table.
func WithStrictFetch(strict bool) Option {
	return func(r *Runner) { r.strictFetch = strict }
}

// NewRunner wires the pipeline stages together.
func NewRunner(resolver sheets.Resolver, fetcher *sheets.Fetcher, synthesizer *report.Synthesizer, encoder document.Encoder, opts ...Option) *Runner {
	r := &Runner{
		resolver:    resolver,
		fetcher:     fetcher,
		synthesizer: synthesizer,
		encoder:     encoder,
		observer:    nopObserver{},
		logger:      slog.Default(),
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(slog.String("component", "pipeline"))
	return r
}

// Run processes locators under a fresh run id.
func (r *Runner) Run(ctx context.Context, locators []string) []Result {
	return r.RunWithID(ctx, uuid.NewString(), locators)
}

// RunWithID processes locators in order and returns one result per locator.
func (r *Runner) RunWithID(ctx context.Context, runID string, locators []string) []Result {
	ctx, span := r.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("run.sources", len(locators)),
	))
	defer span.End()

	start := time.Now()
	r.logger.InfoContext(ctx, "batch started",
		slog.String("run_id", runID),
		slog.Int("sources", len(locators)))

	results := make([]Result, len(locators))
	failed := 0
	for i, locator := range locators {
		results[i] = r.processSource(ctx, runID, i, len(locators), locator)
		if !results[i].OK() {
			failed++
		}
	}

	elapsed := time.Since(start)
	if r.metrics.RunDuration != nil {
		r.metrics.RunDuration.Record(ctx, elapsed.Seconds())
	}
	span.SetAttributes(attribute.Int("run.failed", failed))

	r.logger.InfoContext(ctx, "batch complete",
		slog.String("run_id", runID),
		slog.Int("sources", len(locators)),
		slog.Int("succeeded", len(locators)-failed),
		slog.Int("failed", failed),
		slog.Duration("duration", elapsed))

	return results
}

func (r *Runner) processSource(ctx context.Context, runID string, index, total int, locator string) (res Result) {
	ctx, span := r.tracer.Start(ctx, "pipeline.source", trace.WithAttributes(
		attribute.String("source.locator", locator),
		attribute.Int("source.index", index),
	))
	defer span.End()

	stage := StageResolve
	notify := func(status Status, msg string) {
		r.observer.Notify(Event{
			RunID:   runID,
			Index:   index,
			Total:   total,
			Source:  locator,
			Stage:   stage,
			Status:  status,
			Message: msg,
			Time:    time.Now(),
		})
	}

	fail := func(sErr *SourceError) Result {
		span.RecordError(sErr)
		span.SetStatus(codes.Error, sErr.Message)
		r.count(ctx, "failed", sErr.Stage)
		r.logger.ErrorContext(ctx, "source failed",
			slog.String("run_id", runID),
			slog.String("source", locator),
			slog.String("stage", string(sErr.Stage)),
			slog.String("error_type", string(sErr.Type)),
			slog.String("error", sErr.Message))
		notify(StatusFailed, sErr.Message)
		return Result{Source: locator, Err: sErr}
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "panic while processing source",
				slog.String("source", locator),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			res = fail(&SourceError{
				Source:  locator,
				Stage:   stage,
				Type:    ErrorTypePanic,
				Message: fmt.Sprintf("panic: %v", rec),
			})
		}
	}()

	notify(StatusProcessing, "")
	if err := ctx.Err(); err != nil {
		return fail(newSourceError(locator, stage, err))
	}

	src, err := r.resolver.Open(ctx, locator)
	if err != nil {
		return fail(newSourceError(locator, stage, err))
	}
	client := src.Title()
	span.SetAttributes(attribute.String("source.title", client))

	readers := make([]sheets.GridReader, len(records.Kinds))
	for i, kind := range records.Kinds {
		if readers[i], err = src.Table(kind.TableName()); err != nil {
			return fail(newSourceError(locator, stage, err))
		}
	}

	var tables records.Tables
	var degraded []string
	for i, kind := range records.Kinds {
		stage = StageFetch
		notify(StatusProcessing, kind.TableName())

		fetched := r.fetcher.FetchDetailed(ctx, readers[i])
		if err := ctx.Err(); err != nil {
			return fail(newSourceError(locator, stage, err))
		}
		if fetched.Exhausted {
			degraded = append(degraded, kind.TableName())
			if r.strictFetch {
				return fail(newSourceError(locator, stage,
					fmt.Errorf("%s unavailable after %d attempts: %w", kind.TableName(), fetched.Attempts, fetched.LastErr)))
			}
			r.logger.WarnContext(ctx, "table unavailable, reporting it as empty",
				slog.String("source", locator),
				slog.String("table", kind.TableName()))
		}

		stage = StageNormalize
		if err := tables.Load(kind, fetched.Grid); err != nil {
			return fail(newSourceError(locator, stage, fmt.Errorf("%s: %w", kind.TableName(), err)))
		}
	}

	stage = StageSynthesize
	notify(StatusProcessing, "")
	rep, err := r.synthesizer.Synthesize(client, tables.Listings, tables.Orders, tables.Time)
	if err != nil {
		return fail(newSourceError(locator, stage, err))
	}
	rep.Degraded = degraded

	stage = StageEncode
	art, err := document.Build(r.encoder, rep)
	if err != nil {
		return fail(newSourceError(locator, stage, err))
	}

	r.count(ctx, "succeeded", "")
	r.logger.InfoContext(ctx, "report generated",
		slog.String("run_id", runID),
		slog.String("source", locator),
		slog.String("client", client),
		slog.String("file", art.Name),
		slog.Int("bytes", art.Size()),
		slog.Any("degraded", degraded))
	notify(StatusCompleted, art.Name)

	return Result{Source: locator, Report: rep, Artifact: art}
}

func (r *Runner) count(ctx context.Context, outcome string, stage Stage) {
	if r.metrics.SourcesProcessed == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("outcome", outcome)}
	if stage != "" {
		attrs = append(attrs, attribute.String("stage", string(stage)))
	}
	r.metrics.SourcesProcessed.Add(ctx, 1, metric.WithAttributes(attrs...))
}
