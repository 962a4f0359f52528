// Package http exposes the report generator over HTTP.
//
// Handlers stay thin: they decode and validate requests, call the service
// layer and render either a JSON body or an RFC 7807 problem document.
//
//	POST /api/reports                 generate one report per link
//	GET  /api/reports/{id}/download   fetch a generated document
//	GET  /api/health                  liveness and component gauges
//	GET  /api/version                 build information
//	GET  /metrics                     Prometheus scrape endpoint
//	GET  /ws                          progress events over websocket
package http
