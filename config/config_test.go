package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Listen != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.Listen)
	}
	if cfg.Cache.Capacity != 128 {
		t.Errorf("expected capacity 128, got %d", cfg.Cache.Capacity)
	}
	if cfg.RateLimit.MaxCalls != 10 || cfg.RateLimit.Period != time.Minute {
		t.Errorf("expected 10/min rate limit, got %d/%v", cfg.RateLimit.MaxCalls, cfg.RateLimit.Period)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "super-secret")
	t.Setenv("TEST_API_KEY", "sk-test-123")

	content := `
listen: ":9090"
db_path: "coach-test.db"
auth:
  secret: ${TEST_JWT_SECRET}
  issuer: coachkit
cache:
  capacity: 64
rate_limit:
  max_calls: 20
  period: 30s
upstream:
  api_key: ${TEST_API_KEY}
  model: gpt-4o-mini
  timeout: 5s
observe:
  tracing:
    enabled: true
    exporter: stdout
    sample_pct: 0.5
  log_level: debug
`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Listen != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.Listen)
	}
	if cfg.Auth.Secret != "super-secret" {
		t.Errorf("env var not expanded: got %s", cfg.Auth.Secret)
	}
	if cfg.Cache.Capacity != 64 {
		t.Errorf("expected capacity 64, got %d", cfg.Cache.Capacity)
	}
	if cfg.RateLimit.Period != 30*time.Second {
		t.Errorf("expected 30s period, got %v", cfg.RateLimit.Period)
	}
	if cfg.Upstream.APIKey != "sk-test-123" || cfg.Upstream.Model != "gpt-4o-mini" {
		t.Errorf("upstream = %+v", cfg.Upstream)
	}
	// Unset fields keep defaults.
	if cfg.Upstream.MaxFailures != 5 {
		t.Errorf("expected default max_failures 5, got %d", cfg.Upstream.MaxFailures)
	}
	if !cfg.Observe.Tracing.Enabled || cfg.Observe.Tracing.SamplePct != 0.5 {
		t.Errorf("observe = %+v", cfg.Observe)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen", func(c *Config) { c.Listen = "" }},
		{"zero capacity", func(c *Config) { c.Cache.Capacity = 0 }},
		{"zero rate limit", func(c *Config) { c.RateLimit.MaxCalls = 0 }},
		{"zero timeout", func(c *Config) { c.Upstream.Timeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestObserveSettings(t *testing.T) {
	cfg := Default()
	cfg.Observe.Metrics.Enabled = true
	cfg.Observe.Metrics.Exporter = "prometheus"

	oc := cfg.ObserveSettings("coachd", "1.0.0")
	if oc.ServiceName != "coachd" || oc.Version != "1.0.0" {
		t.Errorf("settings = %+v", oc)
	}
	if !oc.Metrics.Enabled || oc.Metrics.Exporter != "prometheus" {
		t.Errorf("metrics = %+v", oc.Metrics)
	}
	if !oc.Logging.Enabled || oc.Logging.Level != "info" {
		t.Errorf("logging = %+v", oc.Logging)
	}
	if err := oc.Validate(); err != nil {
		t.Errorf("settings should validate: %v", err)
	}
}
