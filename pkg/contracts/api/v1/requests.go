// Package api contains the v1 HTTP contract of the report server.
package api

// GenerateReportsRequest asks for one report per spreadsheet link. Links
// holds one link or bare spreadsheet id per line; blank lines are ignored.
type GenerateReportsRequest struct {
	Links string `json:"links" validate:"required,locators"`
}
