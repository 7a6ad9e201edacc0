package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:  "single service - http",
			input: "http",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP: true,
			},
			expectError: false,
		},
		{
			name:  "single service - sweeper",
			input: "sweeper",
			expected: map[ServiceMode]bool{
				ServiceModeSweeper: true,
			},
			expectError: false,
		},
		{
			name:  "all services",
			input: "http,sweeper",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:    true,
				ServiceModeSweeper: true,
			},
			expectError: false,
		},
		{
			name:  "whitespace is tolerated",
			input: " http , sweeper ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:    true,
				ServiceModeSweeper: true,
			},
			expectError: false,
		},
		{
			name:        "invalid service name",
			input:       "http,reaper",
			expectError: true,
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "only commas",
			input:       ",,,",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServices(tt.input)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("ParseServices(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAppConfigDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config from empty env: %v", err)
	}
	cfg.Sanitize()

	if cfg.Services != "http" {
		t.Fatalf("expected default services to be http, got %q", cfg.Services)
	}
	if !cfg.IsHTTPServerEnabled() {
		t.Fatal("expected http service enabled by default")
	}
	if cfg.IsSweeperEnabled() {
		t.Fatal("expected sweeper disabled by default")
	}
	if cfg.Postgres.Host != "localhost" || cfg.Postgres.Port != 5432 {
		t.Fatalf("unexpected postgres defaults: %+v", cfg.Postgres)
	}
	if cfg.Redis.URI != "localhost:6379" {
		t.Fatalf("unexpected redis default: %q", cfg.Redis.URI)
	}
	if cfg.Pipeline.PlanDefaultTier != "free" {
		t.Fatalf("unexpected default tier: %q", cfg.Pipeline.PlanDefaultTier)
	}
}

func TestSweeperConfigSanitize(t *testing.T) {
	cfg := SweeperConfig{Interval: time.Second, BatchSize: 0}
	cfg.Sanitize()

	if cfg.Interval != 10*time.Second {
		t.Fatalf("expected interval floor of 10s, got %v", cfg.Interval)
	}
	if cfg.BatchSize != 1 {
		t.Fatalf("expected batch size floor of 1, got %d", cfg.BatchSize)
	}

	cfg = SweeperConfig{Interval: time.Minute, BatchSize: 50000}
	cfg.Sanitize()
	if cfg.BatchSize != 10000 {
		t.Fatalf("expected batch size cap of 10000, got %d", cfg.BatchSize)
	}
}

func TestObservabilitySanitizeDisablesOrphanSinks(t *testing.T) {
	cfg := ObservabilityConfig{
		Notifications: ObservabilityNotificationsConfig{
			Enabled: true,
			Slack:   SlackNotificationConfig{Enabled: true},
		},
	}
	cfg.Sanitize()

	if cfg.Notifications.Slack.Enabled {
		t.Fatal("slack sink without a webhook url must be disabled")
	}
	if cfg.Notifications.Slack.Username != "genstudio" {
		t.Fatalf("unexpected default username: %q", cfg.Notifications.Slack.Username)
	}
}
