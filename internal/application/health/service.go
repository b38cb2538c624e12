package health

import (
	"context"
	"time"

	corehealth "rechnungswerk/ms_einvoice_core/internal/core/health"
)

// Metadata contains immutable metadata about the running service.
type Metadata struct {
	Service     string
	Version     string
	Environment string
}

// Check probes one dependency, typically a store or gateway ping.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Service exposes health-check use cases to adapters.
type Service struct {
	meta      Metadata
	startedAt time.Time
	checks    []Check
}

func NewService(meta Metadata, checks ...Check) *Service {
	return &Service{
		meta:      meta,
		startedAt: time.Now().UTC(),
		checks:    checks,
	}
}

// Status returns the current availability snapshot. A failing dependency
// degrades the overall status but never turns it into an error response.
func (s *Service) Status(ctx context.Context) corehealth.Status {
	uptime := time.Since(s.startedAt)

	status := corehealth.Status{
		Service:     s.meta.Service,
		Version:     s.meta.Version,
		Environment: s.meta.Environment,
		Status:      "UP",
		StartedAt:   s.startedAt,
		Uptime:      uptime.String(),
		UptimeSecs:  int64(uptime.Seconds()),
	}

	if len(s.checks) == 0 {
		return status
	}

	status.Dependencies = make(map[string]string, len(s.checks))
	for _, check := range s.checks {
		if err := check.Probe(ctx); err != nil {
			status.Dependencies[check.Name] = "DOWN"
			status.Status = "DEGRADED"
			continue
		}
		status.Dependencies[check.Name] = "UP"
	}

	return status
}
