/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/friendsincode/bankscope/internal/filter"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment   string
	Workers       int    // 0 means one per CPU
	SidecarExt    string // descriptor extension next to each bank
	HTTPBind      string
	HTTPPort      int
	LogBufferSize int
	FiltersFile   string // optional JSON/YAML filter chain applied at startup

	// Scan requests accepted per second over HTTP; 0 disables the limit.
	ScanRateLimit float64
	ScanRateBurst int

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:   getEnvAny([]string{"BANKSCOPE_ENV"}, "development"),
		Workers:       getEnvIntAny([]string{"BANKSCOPE_WORKERS"}, 0),
		SidecarExt:    getEnvAny([]string{"BANKSCOPE_SIDECAR_EXT"}, ".json"),
		HTTPBind:      getEnvAny([]string{"BANKSCOPE_HTTP_BIND"}, "127.0.0.1"),
		HTTPPort:      getEnvIntAny([]string{"BANKSCOPE_HTTP_PORT"}, 8089),
		LogBufferSize: getEnvIntAny([]string{"BANKSCOPE_LOG_BUFFER_SIZE"}, 2000),
		FiltersFile:   getEnvAny([]string{"BANKSCOPE_FILTERS_FILE"}, ""),
		ScanRateLimit: getEnvFloatAny([]string{"BANKSCOPE_SCAN_RATE_LIMIT"}, 0.5),
		ScanRateBurst: getEnvIntAny([]string{"BANKSCOPE_SCAN_RATE_BURST"}, 2),

		TracingEnabled:    getEnvBoolAny([]string{"BANKSCOPE_TRACING_ENABLED", "OTEL_TRACING_ENABLED"}, false),
		OTLPEndpoint:      getEnvAny([]string{"BANKSCOPE_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"}, "localhost:4317"),
		TracingSampleRate: getEnvFloatAny([]string{"BANKSCOPE_TRACING_SAMPLE_RATE"}, 1.0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. Load calls it; callers that override fields
// from flags should call it again.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("BANKSCOPE_WORKERS must not be negative, got %d", c.Workers)
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("BANKSCOPE_HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if c.LogBufferSize < 1 {
		return fmt.Errorf("BANKSCOPE_LOG_BUFFER_SIZE must be positive, got %d", c.LogBufferSize)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("BANKSCOPE_TRACING_SAMPLE_RATE must be within [0, 1], got %g", c.TracingSampleRate)
	}
	if c.ScanRateLimit < 0 {
		return fmt.Errorf("BANKSCOPE_SCAN_RATE_LIMIT must not be negative, got %g", c.ScanRateLimit)
	}
	if c.ScanRateLimit > 0 && c.ScanRateBurst < 1 {
		return fmt.Errorf("BANKSCOPE_SCAN_RATE_BURST must be positive when a rate limit is set, got %d", c.ScanRateBurst)
	}
	if strings.TrimPrefix(c.SidecarExt, ".") == "" {
		return fmt.Errorf("BANKSCOPE_SIDECAR_EXT must not be empty")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPBind, c.HTTPPort)
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c == nil || strings.EqualFold(c.Environment, "development")
}

// LoadFilters reads the startup filter chain. It returns an empty chain when
// no file is configured.
func (c *Config) LoadFilters() (filter.Chain, error) {
	if c == nil || c.FiltersFile == "" {
		return filter.Chain{}, nil
	}
	chain, err := filter.LoadFile(c.FiltersFile)
	if err != nil {
		return nil, fmt.Errorf("BANKSCOPE_FILTERS_FILE: %w", err)
	}
	return chain, nil
}

// WriteFilters saves chain to path as a YAML filter document.
func WriteFilters(path string, chain filter.Chain) error {
	data, err := yaml.Marshal(chain)
	if err != nil {
		return fmt.Errorf("encode filters: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write filters: %w", err)
	}
	return nil
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "1", "yes":
				return true
			case "false", "0", "no":
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return parsed
			}
		}
	}
	return def
}
