package records

import (
	"errors"
	"fmt"
)

// ErrSchemaMismatch is matched by every structural header error.
var ErrSchemaMismatch = errors.New("schema mismatch")

// MissingColumnError reports a required source column absent from a header.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: required column %q not found in header", e.Table, e.Column)
}

// Unwrap lets errors.Is match ErrSchemaMismatch.
func (e *MissingColumnError) Unwrap() error {
	return ErrSchemaMismatch
}
