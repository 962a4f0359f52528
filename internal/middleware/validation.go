package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "clientreport/internal/errors"
	"clientreport/internal/pipeline"
)

// DefaultMaxBodySize bounds decoded request bodies.
const DefaultMaxBodySize int64 = 1 << 20

// RequestValidator decodes JSON request bodies and checks their struct tags.
type RequestValidator struct {
	validate    *validator.Validate
	maxBodySize int64
}

// NewRequestValidator registers the custom rules and reports fields by their
// json names.
func NewRequestValidator() *RequestValidator {
	v := validator.New()
	_ = v.RegisterValidation("locators", hasLocator)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v, maxBodySize: DefaultMaxBodySize}
}

// Decode reads a JSON body into dst and validates it. Failures come back as
// *apierrors.APIError values ready for the error handler.
func (rv *RequestValidator) Decode(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidRequest, "Request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, rv.maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidRequest, "Request body is required")
		}
		return apierrors.InvalidRequestWithError(err)
	}
	return rv.ValidateStruct(dst)
}

// ValidateStruct validates a struct and returns validation errors
func (rv *RequestValidator) ValidateStruct(v interface{}) error {
	err := rv.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}
	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(out)
}

// ContentTypeValidator rejects bodies whose Content-Type is not listed.
func ContentTypeValidator(handler *apierrors.ErrorHandler, contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}
			contentType := r.Header.Get("Content-Type")
			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}
			apiErr := apierrors.NewWithDetails(http.StatusUnsupportedMediaType, apierrors.CodeInvalidRequest,
				"Unsupported content type", map[string]interface{}{
					"content_type": contentType,
					"allowed":      contentTypes,
				})
			handler.HandleError(w, r, apiErr)
		})
	}
}

func formatValidationError(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "locators":
		return fmt.Sprintf("%s must contain at least one spreadsheet link", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// hasLocator accepts text with at least one non-blank line.
func hasLocator(fl validator.FieldLevel) bool {
	return len(pipeline.ParseLocators(fl.Field().String())) > 0
}
