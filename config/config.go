// Package config loads coachd configuration from YAML with
// environment-variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/coachkit/observe"
)

// Config holds all coachd configuration.
type Config struct {
	Listen    string          `yaml:"listen"`
	DBPath    string          `yaml:"db_path"`
	Auth      AuthConfig      `yaml:"auth"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Observe   ObserveConfig   `yaml:"observe"`
}

// AuthConfig configures bearer-token validation.
type AuthConfig struct {
	// Secret signs and verifies HS256 tokens. Usually set via
	// ${COACHKIT_JWT_SECRET} expansion.
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	Capacity int `yaml:"capacity"`
}

// RateLimitConfig controls per-actor request limiting.
type RateLimitConfig struct {
	MaxCalls int           `yaml:"max_calls"`
	Period   time.Duration `yaml:"period"`
}

// UpstreamConfig configures the generation service. An empty APIKey
// selects the built-in mock generator.
type UpstreamConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxFailures int           `yaml:"max_failures"`
	ResetAfter  time.Duration `yaml:"reset_after"`
}

// ObserveConfig configures telemetry.
type ObserveConfig struct {
	Tracing struct {
		Enabled   bool    `yaml:"enabled"`
		Exporter  string  `yaml:"exporter"`
		SamplePct float64 `yaml:"sample_pct"`
	} `yaml:"tracing"`
	Metrics struct {
		Enabled  bool   `yaml:"enabled"`
		Exporter string `yaml:"exporter"`
	} `yaml:"metrics"`
	LogLevel string `yaml:"log_level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	cfg := &Config{
		Listen: ":8080",
		DBPath: "coachkit.db",
		Cache: CacheConfig{
			Capacity: 128,
		},
		RateLimit: RateLimitConfig{
			MaxCalls: 10,
			Period:   time.Minute,
		},
		Upstream: UpstreamConfig{
			Model:       "gpt-3.5-turbo",
			Timeout:     10 * time.Second,
			MaxFailures: 5,
			ResetAfter:  30 * time.Second,
		},
	}
	cfg.Observe.LogLevel = "info"
	return cfg
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("config: listen address is required")
	}
	if c.Cache.Capacity <= 0 {
		return errors.New("config: cache capacity must be positive")
	}
	if c.RateLimit.MaxCalls <= 0 || c.RateLimit.Period <= 0 {
		return errors.New("config: rate limit needs positive max_calls and period")
	}
	if c.Upstream.Timeout <= 0 {
		return errors.New("config: upstream timeout must be positive")
	}
	return nil
}

// ObserveSettings maps the YAML telemetry block onto the observe
// package's configuration.
func (c *Config) ObserveSettings(serviceName, version string) observe.Config {
	return observe.Config{
		ServiceName: serviceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   c.Observe.Tracing.Enabled,
			Exporter:  c.Observe.Tracing.Exporter,
			SamplePct: c.Observe.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Observe.Metrics.Enabled,
			Exporter: c.Observe.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.Observe.LogLevel,
		},
	}
}
