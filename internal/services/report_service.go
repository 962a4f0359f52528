package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"clientreport/internal/document"
	"clientreport/internal/pipeline"
	api "clientreport/pkg/contracts/api/v1"
)

// BatchRunner runs the report pipeline over a list of locators.
type BatchRunner interface {
	RunWithID(ctx context.Context, runID string, locators []string) []pipeline.Result
}

// ArtifactStore keeps documents until they are downloaded.
type ArtifactStore interface {
	Put(a *document.Artifact) string
	Get(id string) (*document.Artifact, bool)
}

// DownloadPath returns the URL path a stored document is served from.
func DownloadPath(id string) string {
	return "/api/reports/" + id + "/download"
}

// ReportService generates reports and serves their documents.
type ReportService struct {
	runner      BatchRunner
	store       ArtifactStore
	maxLocators int
	downloads   metric.Int64Counter
	logger      *slog.Logger
}

// NewReportService creates the service. maxLocators <= 0 means no limit;
// a nil downloads counter disables download metrics.
func NewReportService(runner BatchRunner, store ArtifactStore, maxLocators int, downloads metric.Int64Counter, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		runner:      runner,
		store:       store,
		maxLocators: maxLocators,
		downloads:   downloads,
		logger:      logger.With(slog.String("service", "report")),
	}
}

// Generate parses links, runs the batch and stores every document.
func (s *ReportService) Generate(ctx context.Context, links string) (*api.GenerateReportsResponse, error) {
	locators := pipeline.ParseLocators(links)
	if s.maxLocators > 0 && len(locators) > s.maxLocators {
		return nil, fmt.Errorf("%w: got %d, limit is %d", ErrTooManyLocators, len(locators), s.maxLocators)
	}

	runID := uuid.NewString()
	results := s.runner.RunWithID(ctx, runID, locators)

	resp := &api.GenerateReportsResponse{
		RunID:   runID,
		Results: make([]api.SourceResult, 0, len(results)),
	}
	for _, res := range results {
		out := api.SourceResult{Source: res.Source, OK: res.OK()}
		if res.OK() {
			id := s.store.Put(res.Artifact)
			out.ClientName = res.Report.ClientName
			out.FileName = res.Artifact.Name
			out.DownloadURL = DownloadPath(id)
			out.Degraded = res.Report.Degraded
			resp.Succeeded++
		} else {
			out.Error = &api.SourceError{
				Stage:   string(res.Err.Stage),
				Type:    string(res.Err.Type),
				Message: res.Err.Message,
			}
			resp.Failed++
		}
		resp.Results = append(resp.Results, out)
	}

	s.logger.InfoContext(ctx, "batch served",
		slog.String("run_id", runID),
		slog.Int("succeeded", resp.Succeeded),
		slog.Int("failed", resp.Failed))
	return resp, nil
}

// Download returns the stored document for id.
func (s *ReportService) Download(ctx context.Context, id string) (*document.Artifact, error) {
	art, ok := s.store.Get(id)
	if !ok {
		return nil, ErrReportNotFound
	}
	if s.downloads != nil {
		s.downloads.Add(ctx, 1)
	}
	return art, nil
}
