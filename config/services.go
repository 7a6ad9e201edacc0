package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server (admission, worker callbacks,
	// connection registry).
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeSweeper runs the periodic queue maintenance loop.
	ServiceModeSweeper ServiceMode = "sweeper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeSweeper}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	parts := strings.Split(servicesStr, ",")
	for _, part := range parts {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeSweeper:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, sweeper)", serviceName)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// SweeperConfig contains queue maintenance service configuration.
type SweeperConfig struct {
	// Interval is the sweeper tick interval.
	Interval time.Duration `env:"SWEEPER_INTERVAL" envDefault:"1m"`

	// BatchSize is the maximum number of rows to process per operation.
	// Batching prevents long locks and I/O spikes on large tables.
	BatchSize int `env:"SWEEPER_BATCH_SIZE" envDefault:"500"`
}

// Sanitize applies guardrails to sweeper configuration values.
func (s *SweeperConfig) Sanitize() {
	if s.Interval < 10*time.Second {
		s.Interval = 10 * time.Second
	}
	if s.BatchSize < 1 {
		s.BatchSize = 1
	}
	if s.BatchSize > 10000 {
		s.BatchSize = 10000
	}
}

// PipelineConfig groups admission and plan configuration for the generation
// pipeline.
type PipelineConfig struct {
	// PlanTable is the static tier table backing the default plan resolver.
	// Format: comma-delimited "tier:dailyCap:monthlyCap" entries, with the
	// literal "unlimited" in place of the caps for unmetered tiers,
	// e.g. "free:5:50,basic:50:500,pro:unlimited".
	PlanTable string `env:"PLAN_TABLE" envDefault:"free:5:50,basic:50:500,pro:unlimited"`

	// PlanDefaultTier is the tier assigned to authenticated users absent
	// from any upstream plan signal.
	PlanDefaultTier string `env:"PLAN_DEFAULT_TIER" envDefault:"free"`
}

// Sanitize applies guardrails to pipeline configuration values.
func (p *PipelineConfig) Sanitize() {
	p.PlanTable = strings.TrimSpace(p.PlanTable)
	p.PlanDefaultTier = strings.TrimSpace(p.PlanDefaultTier)
	if p.PlanDefaultTier == "" {
		p.PlanDefaultTier = "free"
	}
}
