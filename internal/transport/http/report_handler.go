package http

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"clientreport/internal/document"
	apierrors "clientreport/internal/errors"
	"clientreport/internal/middleware"
	"clientreport/internal/services"
	api "clientreport/pkg/contracts/api/v1"
)

// ReportService is the part of services.ReportService the handler needs.
type ReportService interface {
	Generate(ctx context.Context, links string) (*api.GenerateReportsResponse, error)
	Download(ctx context.Context, id string) (*document.Artifact, error)
}

// ReportHandler handles report generation and download.
type ReportHandler struct {
	service      ReportService
	validator    *middleware.RequestValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService, validator *middleware.RequestValidator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "report_handler")),
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(middleware.ContentTypeValidator(h.errorHandler, "application/json")).Post("/", h.Generate)
	r.Get("/{id}/download", h.Download)
	return r
}

// Generate handles POST /api/reports. The batch runs synchronously; per
// link failures are part of a 200 response.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateReportsRequest
	if err := h.validator.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Generate(r.Context(), req.Links)
	if err != nil {
		if errors.Is(err, services.ErrTooManyLocators) {
			err = apierrors.NewValidationErrors([]apierrors.ValidationError{
				{Field: "links", Message: err.Error()},
			})
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// Download handles GET /api/reports/{id}/download
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	art, err := h.service.Download(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			err = apierrors.ReportNotFound(id)
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(art.Size()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(art.Data); err != nil {
		h.logger.WarnContext(r.Context(), "download interrupted",
			slog.String("id", id),
			slog.String("error", err.Error()))
	}
}
