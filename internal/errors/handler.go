package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"clientreport/internal/sheets"
)

// Problem types
const (
	TypeValidation  = "/errors/validation"
	TypeNotFound    = "/errors/not-found"
	TypeInternal    = "/errors/internal"
	TypeServiceDown = "/errors/service-unavailable"
	TypeTimeout     = "/errors/timeout"
	TypeMethod      = "/errors/method-not-allowed"

	TypeReportExpired      = "/errors/report/expired"
	TypeInvalidLocator     = "/errors/sheets/invalid-locator"
	TypeCredentialsMissing = "/errors/sheets/credentials-missing"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	reqID := middleware.GetReqID(r.Context())

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))

	_ = render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	var (
		apiErr  *APIError
		valErrs validator.ValidationErrors
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", r.URL.Path)

	case errors.As(err, &apiErr):
		return h.apiErrorToProblem(apiErr, r)

	case errors.As(err, &valErrs):
		fields := make([]ValidationError, 0, len(valErrs))
		for _, fe := range valErrs {
			fields = append(fields, ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			})
		}
		return NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed",
			"Request validation failed", r.URL.Path).WithExtension("errors", fields)

	case errors.Is(err, sheets.ErrInvalidLocator):
		return NewProblemDetails(http.StatusBadRequest, TypeInvalidLocator, "Invalid Spreadsheet Link",
			err.Error(), r.URL.Path)

	case errors.Is(err, sheets.ErrCredentialsMissing):
		return NewProblemDetails(http.StatusServiceUnavailable, TypeCredentialsMissing, "Credentials Missing",
			"The service account credentials are not configured", r.URL.Path)

	default:
		return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
			"An unexpected error occurred while processing your request", r.URL.Path)
	}
}

func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case CodeValidationFailed, CodeInvalidRequest:
		problemType = TypeValidation
	case CodeNotFound:
		problemType = TypeNotFound
	case CodeReportExpired:
		problemType = TypeReportExpired
	case CodeServiceUnavailable:
		problemType = TypeServiceDown
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

// HandlePanic responds to a recovered panic with a 500 problem.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())
	stack := string(debug.Stack())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", stack))

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", stack)
	}
	_ = render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))
	_ = render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethod,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))
	_ = render.Render(w, r, problem)
}

// Recoverer is middleware turning panics into problem responses.
func (h *ErrorHandler) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.HandlePanic(w, r, rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
