package services

import "errors"

var (
	// ErrReportNotFound is returned for unknown or expired download ids.
	ErrReportNotFound = errors.New("report not found or expired")

	// ErrTooManyLocators is returned when a batch exceeds the configured
	// number of links.
	ErrTooManyLocators = errors.New("too many links in one request")
)
