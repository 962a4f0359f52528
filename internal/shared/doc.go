// Package shared holds code used by more than one package that belongs to
// no single layer.
//
// Currently that is testutil: a buffered slog handler for asserting on
// log output, and sample spreadsheet grids for the listings, orders and
// hours sub-tables.
package shared
