// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// setupTestEnv sets up test environment variables and returns cleanup function
func setupTestEnv(t *testing.T, envVars map[string]string) func() {
	t.Helper()
	os.Clearenv()
	for k, v := range envVars {
		if err := os.Setenv(k, v); err != nil {
			t.Fatalf("failed to set env var %s: %v", k, err)
		}
	}
	return func() {
		os.Clearenv()
	}
}

// assertNoError checks that error is nil
func assertNoError(t *testing.T, err error, testName string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", testName, err)
	}
}

// assertError checks that error occurred and optionally matches message
func assertError(t *testing.T, err error, expectedMsg, testName string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error containing %q, got nil", testName, expectedMsg)
	}
	if expectedMsg != "" && err.Error() != expectedMsg {
		t.Errorf("%s: error = %v, want error containing %q", testName, err, expectedMsg)
	}
}

// assertConfigNotNil checks that config is not nil
func assertConfigNotNil(t *testing.T, cfg *Config, testName string) {
	t.Helper()
	if cfg == nil {
		t.Fatalf("%s: config is nil", testName)
	}
}

// assertIntEqual checks integer equality
func assertIntEqual(t *testing.T, got, want int, field, testName string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: %s = %v, want %v", testName, field, got, want)
	}
}

// assertStringEqual checks string equality
func assertStringEqual(t *testing.T, got, want, field string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

// assertBoolEqual checks boolean equality
func assertBoolEqual(t *testing.T, got, want bool, field string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"empty duckdb path", func(c *Config) { c.Database.Path = " " }, "DUCKDB_PATH is required"},
		{"negative threads", func(c *Config) { c.Database.Threads = -1 }, "DUCKDB_THREADS"},
		{"rate limit too high", func(c *Config) { c.Security.RateLimitReqs = 200000 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit disabled skips bounds", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
		{"wildcard cors in production", func(c *Config) { c.Server.Environment = "production" }, "CORS_ORIGINS"},
		{"unknown environment", func(c *Config) { c.Server.Environment = "qa" }, "ENVIRONMENT"},
		{"cache ttl zero", func(c *Config) { c.Cache.TTL = 0 }, "CACHE_TTL"},
		{"cache disabled ignores ttl", func(c *Config) {
			c.Cache.Enabled = false
			c.Cache.TTL = 0
		}, ""},
		{"negative scope ttl", func(c *Config) {
			c.Cache.ScopeTTLs = map[string]time.Duration{"engagement": -time.Second}
		}, "CACHE_SCOPE_TTLS for engagement"},
		{"scope with separator", func(c *Config) {
			c.Cache.ScopeTTLs = map[string]time.Duration{"funnel:x": time.Minute}
		}, "invalid scope"},
		{"zero scope ttl disables scope", func(c *Config) {
			c.Cache.ScopeTTLs = map[string]time.Duration{"engagement": 0}
		}, ""},
		{"heatmap periods too large", func(c *Config) { c.Analytics.HeatmapPeriods = 500 }, "HEATMAP_PERIODS"},
		{"breaker ratio above one", func(c *Config) { c.Breaker.FailureRatio = 1.5 }, "BREAKER_FAILURE_RATIO"},
		{"nats bad scheme", func(c *Config) {
			c.Invalidation.Enabled = true
			c.Invalidation.URL = "http://localhost:4222"
		}, "NATS_URL is invalid"},
		{"embedded nats ignores url", func(c *Config) {
			c.Invalidation.Enabled = true
			c.Invalidation.EmbeddedServer = true
			c.Invalidation.URL = ""
		}, ""},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"server timeout too small", func(c *Config) { c.Server.Timeout = 10 * time.Millisecond }, "HTTP_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	cfg := defaultConfig()
	if cfg.IsProduction() {
		t.Error("default environment should not be production")
	}
	cfg.Server.Environment = "production"
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false for production environment")
	}
}
