// Package app wires the report generator together.
//
// New builds every long-lived component from a config.Config: logger,
// OpenTelemetry providers, the spreadsheet resolver, the report pipeline,
// the download store, the progress hub and the HTTP router. Serve runs the
// HTTP server until its context ends and then shuts everything down.
//
// Initialization errors are returned to the caller; the package never
// exits the process itself.
package app
