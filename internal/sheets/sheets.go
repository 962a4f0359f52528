// Package sheets reads client spreadsheets from a remote workbook service.
//
// Remote access goes through three small interfaces so the pipeline can be
// driven by the Google Sheets API in production and by in-memory tables in
// tests. Fetcher wraps a GridReader with bounded retries and exponential
// backoff.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// GridReader reads one named sub-table as rows of cell text.
type GridReader interface {
	Name() string
	ReadGrid(ctx context.Context) ([][]string, error)
}

// Source is an opened remote workbook. Table fails with ErrTableNotFound
// when the workbook has no sub-table of that name.
type Source interface {
	Title() string
	Table(name string) (GridReader, error)
}

// Resolver opens a workbook from a user supplied locator.
type Resolver interface {
	Open(ctx context.Context, locator string) (Source, error)
}

var (
	// ErrInvalidLocator is returned when a locator names no spreadsheet.
	ErrInvalidLocator = errors.New("invalid spreadsheet locator")
	// ErrTableNotFound is returned when a workbook lacks a sub-table.
	ErrTableNotFound = errors.New("sub-table not found")
)

var (
	urlIDPattern  = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	bareIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)
)

// SpreadsheetID extracts the workbook id from a sharing URL or accepts a
// bare id.
func SpreadsheetID(locator string) (string, error) {
	locator = strings.TrimSpace(locator)
	if m := urlIDPattern.FindStringSubmatch(locator); m != nil {
		return m[1], nil
	}
	if bareIDPattern.MatchString(locator) {
		return locator, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLocator, locator)
}
