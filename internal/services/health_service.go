package services

import (
	"context"
	"strconv"
	"time"

	"clientreport/pkg/contracts"
	api "clientreport/pkg/contracts/api/v1"
)

// Counter reports the size of a long-lived component.
type Counter func() int

// HealthService provides health check functionality
type HealthService struct {
	startTime time.Time
	clients   Counter
	stored    Counter
}

// NewHealthService creates the service. Nil counters are left out of the
// response.
func NewHealthService(clients, stored Counter) *HealthService {
	return &HealthService{startTime: time.Now(), clients: clients, stored: stored}
}

// HealthCheck reports the server as healthy along with component gauges.
func (s *HealthService) HealthCheck(_ context.Context) api.HealthResponse {
	checks := map[string]string{
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	}
	if s.clients != nil {
		checks["websocket_clients"] = strconv.Itoa(s.clients())
	}
	if s.stored != nil {
		checks["stored_reports"] = strconv.Itoa(s.stored())
	}
	return api.HealthResponse{
		Status:    "healthy",
		Version:   contracts.Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
}

// Version returns build information.
func (s *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}
