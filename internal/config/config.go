// Package config provides configuration for the content fetcher.
//
// Values come from three layers, later ones winning: built-in defaults, an
// optional YAML file, then environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingEndpoint          = errors.New("cms.endpoint is required")
	ErrInvalidPageSize          = errors.New("fetch.page_size must be between 1 and 100")
	ErrInvalidMaxPages          = errors.New("fetch.max_pages must be at least 1")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
)

// Defaults.
const (
	DefaultEndpoint     = "articles"
	DefaultPageSize     = 100
	DefaultMaxPages     = 1000
	DefaultFallbackPath = "content/sampleArticles.json"
)

// Config represents the complete fetcher configuration.
type Config struct {
	CMS      CMSConfig      `yaml:"cms"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Retry    RetryPolicy    `yaml:"retry"`
	Fallback FallbackConfig `yaml:"fallback"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CMSConfig holds the remote CMS connection settings. Remote mode is enabled
// only when both ServiceDomain and APIKey are set.
type CMSConfig struct {
	ServiceDomain string `yaml:"service_domain"`
	APIKey        string `yaml:"api_key"`
	Endpoint      string `yaml:"endpoint"`
	// BaseURL overrides the API root derived from ServiceDomain.
	BaseURL string `yaml:"base_url"`
}

// FetchConfig controls full-collection pagination.
type FetchConfig struct {
	PageSize int `yaml:"page_size"`
	MaxPages int `yaml:"max_pages"`
}

// FallbackConfig points at local content used when the CMS is not configured.
// A path ending in .json is read as bundled JSON, anything else as a
// directory of Markdown files.
type FallbackConfig struct {
	Path string `yaml:"path"`
}

// RetryPolicy defines retry behavior for CMS requests.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CMS: CMSConfig{
			Endpoint: DefaultEndpoint,
		},
		Fetch: FetchConfig{
			PageSize: DefaultPageSize,
			MaxPages: DefaultMaxPages,
		},
		Retry: RetryPolicy{
			MaxAttempts:       3,
			InitialDelayMs:    500,
			MaxDelayMs:        10000,
			BackoffMultiplier: 2.0,
			TimeoutSec:        30,
		},
		Fallback: FallbackConfig{
			Path: DefaultFallbackPath,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFile reads a YAML file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CMS.Endpoint) == "" {
		return ErrMissingEndpoint
	}

	if c.Fetch.PageSize < 1 || c.Fetch.PageSize > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, c.Fetch.PageSize)
	}

	if c.Fetch.MaxPages < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxPages, c.Fetch.MaxPages)
	}

	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return ErrInvalidLogLevel
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return ErrInvalidLogFormat
	}

	return nil
}

// RemoteEnabled reports whether both CMS credentials are present.
// Their absence is not an error; it selects fallback mode.
func (c *Config) RemoteEnabled() bool {
	return strings.TrimSpace(c.CMS.ServiceDomain) != "" && strings.TrimSpace(c.CMS.APIKey) != ""
}

// APIBaseURL returns the root of the CMS content API.
func (c *CMSConfig) APIBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}

	return fmt.Sprintf("https://%s.microcms.io/api/v1", strings.TrimSpace(c.ServiceDomain))
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	if rp.MaxDelayMs > 0 && int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the per-request timeout.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a representation safe for logs; the API key is redacted.
func (c *Config) String() string {
	mode := "fallback"
	if c.RemoteEnabled() {
		mode = "remote"
	}

	return fmt.Sprintf(
		"Config{Mode: %s, Domain: %q, Endpoint: %q, PageSize: %d, MaxPages: %d, Fallback: %q}",
		mode,
		c.CMS.ServiceDomain,
		c.CMS.Endpoint,
		c.Fetch.PageSize,
		c.Fetch.MaxPages,
		c.Fallback.Path,
	)
}
