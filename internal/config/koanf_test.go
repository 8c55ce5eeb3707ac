// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 3857 {
		t.Errorf("Server.Port = %d, want 3857", cfg.Server.Port)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
	if cfg.Analytics.MinCohortSample != 5 {
		t.Errorf("Analytics.MinCohortSample = %d, want 5", cfg.Analytics.MinCohortSample)
	}
	if cfg.Analytics.HeatmapPeriods != 20 {
		t.Errorf("Analytics.HeatmapPeriods = %d, want 20", cfg.Analytics.HeatmapPeriods)
	}
	if cfg.Analytics.CurveCohorts != 8 {
		t.Errorf("Analytics.CurveCohorts = %d, want 8", cfg.Analytics.CurveCohorts)
	}
	if cfg.Invalidation.Enabled {
		t.Error("Invalidation.Enabled should default to false")
	}
	if cfg.Invalidation.Subject != "warehouse.refreshed" {
		t.Errorf("Invalidation.Subject = %q, want warehouse.refreshed", cfg.Invalidation.Subject)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() = %v, want nil", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"LOG_LEVEL", "logging.level"},
		{"CACHE_TTL", "cache.ttl"},
		{"CACHE_SCOPE_TTLS", "cache.scope_ttls"},
		{"MIN_COHORT_SAMPLE", "analytics.min_cohort_sample"},
		{"BREAKER_FAILURE_RATIO", "breaker.failure_ratio"},
		{"NATS_REFRESH_SUBJECT", "invalidation.subject"},
		{"nats_enabled", "invalidation.enabled"},
		{"PATH", ""},
		{"UNKNOWN_VARIABLE", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	defer func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	}()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Run("no config file exists", func(t *testing.T) {
		os.Unsetenv(ConfigPathEnvVar)
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("test: true"), 0o644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		os.Unsetenv(ConfigPathEnvVar)
		if result := findConfigFile(); result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom_config.yaml")
		if err := os.WriteFile(customPath, []byte("test: true"), 0o644); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		defer os.Remove(customPath)

		t.Setenv(ConfigPathEnvVar, customPath)
		if result := findConfigFile(); result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	cleanup := setupTestEnv(t, map[string]string{
		"HTTP_PORT":         "8080",
		"DUCKDB_PATH":       "/tmp/test.duckdb",
		"LOG_LEVEL":         "debug",
		"CACHE_TTL":         "90s",
		"MIN_COHORT_SAMPLE": "3",
		"CORS_ORIGINS":      "https://a.example, https://b.example",
	})
	defer cleanup()

	cfg, err := LoadWithKoanf()
	assertNoError(t, err, "LoadWithKoanf")
	assertConfigNotNil(t, cfg, "LoadWithKoanf")

	assertIntEqual(t, cfg.Server.Port, 8080, "Server.Port", "env")
	assertStringEqual(t, cfg.Database.Path, "/tmp/test.duckdb", "Database.Path")
	assertStringEqual(t, cfg.Logging.Level, "debug", "Logging.Level")
	assertIntEqual(t, cfg.Analytics.MinCohortSample, 3, "Analytics.MinCohortSample", "env")
	if cfg.Cache.TTL != 90*time.Second {
		t.Errorf("Cache.TTL = %v, want 90s", cfg.Cache.TTL)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v, want two trimmed origins", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanfScopeTTLs(t *testing.T) {
	t.Run("env", func(t *testing.T) {
		cleanup := setupTestEnv(t, map[string]string{
			"CACHE_SCOPE_TTLS": "engagement=1m, funnel=10m,health=0s",
		})
		defer cleanup()

		cfg, err := LoadWithKoanf()
		assertNoError(t, err, "LoadWithKoanf")
		want := map[string]time.Duration{
			"engagement": time.Minute,
			"funnel":     10 * time.Minute,
			"health":     0,
		}
		if len(cfg.Cache.ScopeTTLs) != len(want) {
			t.Fatalf("Cache.ScopeTTLs = %v, want %v", cfg.Cache.ScopeTTLs, want)
		}
		for scope, ttl := range want {
			if got, ok := cfg.Cache.ScopeTTLs[scope]; !ok || got != ttl {
				t.Errorf("Cache.ScopeTTLs[%s] = %v, want %v", scope, got, ttl)
			}
		}
	})

	t.Run("malformed env", func(t *testing.T) {
		cleanup := setupTestEnv(t, map[string]string{"CACHE_SCOPE_TTLS": "engagement"})
		defer cleanup()

		if _, err := LoadWithKoanf(); err == nil || !strings.Contains(err.Error(), "key=value") {
			t.Errorf("LoadWithKoanf() = %v, want malformed entry error", err)
		}
	})

	t.Run("file", func(t *testing.T) {
		cleanup := setupTestEnv(t, nil)
		defer cleanup()

		path := filepath.Join(t.TempDir(), "northstar.yaml")
		content := "cache:\n  scope_ttls:\n    retention: 30m\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		t.Setenv(ConfigPathEnvVar, path)

		cfg, err := LoadWithKoanf()
		assertNoError(t, err, "LoadWithKoanf")
		if got := cfg.Cache.ScopeTTLs["retention"]; got != 30*time.Minute {
			t.Errorf("Cache.ScopeTTLs[retention] = %v, want 30m", got)
		}
	})
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	cleanup := setupTestEnv(t, nil)
	defer cleanup()

	path := filepath.Join(t.TempDir(), "northstar.yaml")
	content := `
server:
  port: 9090
analytics:
  min_cohort_sample: 10
  heatmap_periods: 12
invalidation:
  enabled: true
  url: nats://broker.internal:4222
  subject: warehouse.gold.refreshed
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	assertNoError(t, err, "LoadWithKoanf")

	assertIntEqual(t, cfg.Server.Port, 9090, "Server.Port", "file")
	assertIntEqual(t, cfg.Analytics.MinCohortSample, 10, "Analytics.MinCohortSample", "file")
	assertIntEqual(t, cfg.Analytics.HeatmapPeriods, 12, "Analytics.HeatmapPeriods", "file")
	assertBoolEqual(t, cfg.Invalidation.Enabled, true, "Invalidation.Enabled")
	assertStringEqual(t, cfg.Invalidation.Subject, "warehouse.gold.refreshed", "Invalidation.Subject")
	// Untouched sections keep their defaults.
	assertIntEqual(t, cfg.Analytics.CurveCohorts, 8, "Analytics.CurveCohorts", "file")
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	cleanup := setupTestEnv(t, map[string]string{"HTTP_PORT": "7000"})
	defer cleanup()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	assertNoError(t, err, "LoadWithKoanf")
	assertIntEqual(t, cfg.Server.Port, 7000, "Server.Port", "override")
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "invalid port",
			env:  map[string]string{"HTTP_PORT": "70000"},
			want: "configuration validation failed: HTTP_PORT must be between 1 and 65535",
		},
		{
			name: "invalid log level",
			env:  map[string]string{"LOG_LEVEL": "verbose"},
			want: "configuration validation failed: LOG_LEVEL must be one of: trace, debug, info, warn, error",
		},
		{
			name: "zero min cohort sample",
			env:  map[string]string{"MIN_COHORT_SAMPLE": "0"},
			want: "configuration validation failed: MIN_COHORT_SAMPLE must be at least 1",
		},
		{
			name: "nats enabled without subject",
			env:  map[string]string{"NATS_ENABLED": "true", "NATS_REFRESH_SUBJECT": " "},
			want: "configuration validation failed: NATS_REFRESH_SUBJECT is required when NATS_ENABLED=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestEnv(t, tt.env)
			defer cleanup()

			_, err := LoadWithKoanf()
			assertError(t, err, tt.want, tt.name)
		})
	}
}
