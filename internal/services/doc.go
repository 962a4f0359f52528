// Package services sits between the HTTP handlers and the report pipeline.
//
// ReportService runs a batch, stores every produced document for later
// download and maps pipeline results onto the v1 API contract.
// HealthService reports liveness and the state of the long-lived parts of
// the server.
package services
