package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"clientreport/internal/records"
	"clientreport/internal/sheets"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		stage Stage
		err   error
		want  ErrorType
	}{
		{name: "cancelled", stage: StageFetch, err: context.Canceled, want: ErrorTypeCancellation},
		{name: "deadline", stage: StageResolve, err: fmt.Errorf("open: %w", context.DeadlineExceeded), want: ErrorTypeCancellation},
		{name: "bad locator", stage: StageResolve, err: fmt.Errorf("%w: x", sheets.ErrInvalidLocator), want: ErrorTypeInvalidInput},
		{name: "schema", stage: StageNormalize, err: &records.MissingColumnError{Table: "PRODUCTS", Column: "eBay Price"}, want: ErrorTypeSchema},
		{name: "remote", stage: StageResolve, err: errors.New("403"), want: ErrorTypeRemote},
		{name: "execution", stage: StageSynthesize, err: errors.New("boom"), want: ErrorTypeExecution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.stage, tt.err))
		})
	}
}

func TestSourceError(t *testing.T) {
	cause := errors.New("chart failed")
	err := newSourceError("acme", StageSynthesize, cause)

	assert.Equal(t, "[execution] synthesize: chart failed", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrorTypeExecution, GetErrorType(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(cause))
	assert.Equal(t, ErrorType(""), GetErrorType(nil))

	var nilErr *SourceError
	assert.Equal(t, "unknown source error", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())

	list := &ErrorList{}
	assert.Equal(t, "no errors", list.Error())
	list.Add(nil)
	assert.False(t, list.HasErrors())
	list.Add(err)
	assert.True(t, list.HasErrors())
	assert.Equal(t, err.Error(), list.Error())
}
