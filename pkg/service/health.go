package service

import (
	"context"
	"fmt"
	"time"
)

// Version reported by the health endpoint
const Version = "1.0.0"

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Name      string       `json:"name"`
	Status    HealthStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Duration  string       `json:"duration,omitempty"`
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status     HealthStatus      `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Version    string            `json:"version"`
	Components []ComponentHealth `json:"components"`
	Uptime     string            `json:"uptime"`
}

// HealthChecker reports the health of one external collaborator
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckHealth reports the health of the schema registry and any configured
// collaborators. The registry is in-memory, so its check cannot fail once
// the process is serving; it is reported for visibility.
func (s *service) CheckHealth(ctx context.Context) (HealthResponse, error) {
	now := time.Now()
	components := []ComponentHealth{
		{
			Name:      "schema_registry",
			Status:    HealthStatusHealthy,
			Message:   fmt.Sprintf("%d functions loaded", s.engine.Load().Registry().Len()),
			Timestamp: now,
		},
	}

	if s.feed == nil {
		components = append(components, ComponentHealth{
			Name:      "data_feed",
			Status:    HealthStatusDegraded,
			Message:   "no feed configured",
			Timestamp: now,
		})
	} else {
		components = append(components, ComponentHealth{
			Name:      "data_feed",
			Status:    HealthStatusHealthy,
			Timestamp: now,
		})
	}

	if s.health != nil {
		start := time.Now()
		component := ComponentHealth{
			Name:      s.health.Name(),
			Status:    HealthStatusHealthy,
			Timestamp: now,
		}
		if err := s.health.Check(ctx); err != nil {
			component.Status = HealthStatusUnhealthy
			component.Message = err.Error()
		}
		component.Duration = time.Since(start).String()
		components = append(components, component)
	}

	return HealthResponse{
		Status:     overallStatus(components),
		Timestamp:  now,
		Version:    Version,
		Components: components,
		Uptime:     time.Since(s.startTime).String(),
	}, nil
}

func overallStatus(components []ComponentHealth) HealthStatus {
	status := HealthStatusHealthy
	for _, c := range components {
		switch c.Status {
		case HealthStatusUnhealthy:
			return HealthStatusUnhealthy
		case HealthStatusDegraded:
			status = HealthStatusDegraded
		}
	}
	return status
}

// DatabaseHealthChecker adapts a pingable database to HealthChecker
type DatabaseHealthChecker struct {
	Pinger interface {
		Health(ctx context.Context) error
	}
}

func (c DatabaseHealthChecker) Name() string { return "database" }

func (c DatabaseHealthChecker) Check(ctx context.Context) error {
	return c.Pinger.Health(ctx)
}
