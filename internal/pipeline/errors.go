package pipeline

import (
	"context"
	"errors"
	"fmt"

	"clientreport/internal/records"
	"clientreport/internal/sheets"
)

// Stage names the step of per-source processing an error came from.
type Stage string

const (
	StageResolve    Stage = "resolve"
	StageFetch      Stage = "fetch"
	StageNormalize  Stage = "normalize"
	StageSynthesize Stage = "synthesize"
	StageEncode     Stage = "encode"
)

// ErrorType classifies a source error.
type ErrorType string

const (
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	ErrorTypeSchema       ErrorType = "schema"
	ErrorTypeRemote       ErrorType = "remote"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypePanic        ErrorType = "panic"
)

// SourceError is the failure of one source. It never aborts the batch.
type SourceError struct {
	Source  string    `json:"source"`
	Stage   Stage     `json:"stage"`
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *SourceError) Error() string {
	if e == nil {
		return "unknown source error"
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
}

// Unwrap returns the underlying error
func (e *SourceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// newSourceError wraps err with its stage and a type derived from it.
func newSourceError(source string, stage Stage, err error) *SourceError {
	return &SourceError{
		Source:  source,
		Stage:   stage,
		Type:    classify(stage, err),
		Message: err.Error(),
		Cause:   err,
	}
}

func classify(stage Stage, err error) ErrorType {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeCancellation
	case errors.Is(err, sheets.ErrInvalidLocator):
		return ErrorTypeInvalidInput
	case errors.Is(err, records.ErrSchemaMismatch), errors.Is(err, sheets.ErrTableNotFound):
		return ErrorTypeSchema
	case stage == StageResolve || stage == StageFetch:
		return ErrorTypeRemote
	default:
		return ErrorTypeExecution
	}
}

// GetErrorType returns the type of err, or ErrorTypeExecution for errors
// that are not source errors.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var sErr *SourceError
	if errors.As(err, &sErr) {
		return sErr.Type
	}
	return ErrorTypeExecution
}

// ErrorList collects the source errors of a batch.
type ErrorList struct {
	Errors []*SourceError `json:"errors"`
}

// Error implements the error interface
func (e *ErrorList) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("multiple errors: %d sources failed", len(e.Errors))
	}
}

// Add adds an error to the list
func (e *ErrorList) Add(err *SourceError) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ByStage returns errors raised at stage.
func (e *ErrorList) ByStage(stage Stage) []*SourceError {
	var out []*SourceError
	for _, err := range e.Errors {
		if err.Stage == stage {
			out = append(out, err)
		}
	}
	return out
}
