// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/northstar/config.yaml",
	"/etc/northstar/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        3857,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:                   "/data/northstar.duckdb",
			MaxMemory:              "2GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
			QueryTimeout:           30 * time.Second,
			SeedMockData:           false,
			SeedUsers:              500,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			TrustedProxies:    []string{},
			RefreshPerMinute:  6,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             5 * time.Minute,
			CleanupInterval: 1 * time.Minute,
			ScopeTTLs:       map[string]time.Duration{},
		},
		Analytics: AnalyticsConfig{
			MinCohortSample:     5,
			HeatmapPeriods:      20,
			CurveCohorts:        8,
			DefaultLookbackDays: 90,
			RankingLimit:        10,
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         1 * time.Minute,
			Timeout:          30 * time.Second,
			MinRequests:      10,
			FailureRatio:     0.6,
			ConsecutiveFails: 5,
		},
		Invalidation: InvalidationConfig{
			Enabled:        false,
			URL:            "nats://127.0.0.1:4222",
			Subject:        "warehouse.refreshed",
			QueueGroup:     "",
			EmbeddedServer: false,
			EmbeddedHost:   "127.0.0.1",
			EmbeddedPort:   4222,
			MaxReconnects:  -1,
			ReconnectWait:  2 * time.Second,
			CloseTimeout:   10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}
	if err := processMapFields(k); err != nil {
		return nil, fmt.Errorf("failed to process map fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// mapConfigPaths defines which config paths should be parsed as
// comma-separated key=value pairs, e.g. CACHE_SCOPE_TTLS=funnel=10m,engagement=1m.
var mapConfigPaths = []string{
	"cache.scope_ttls",
}

// processMapFields converts key=value lists from env vars into maps. Values
// stay strings; Unmarshal decodes them into the field type.
func processMapFields(k *koanf.Koanf) error {
	for _, path := range mapConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strings.TrimSpace(strVal) == "" {
			continue
		}

		out := map[string]interface{}{}
		for _, pair := range strings.Split(strVal, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			key, value, found := strings.Cut(pair, "=")
			key = strings.TrimSpace(key)
			if !found || key == "" {
				return fmt.Errorf("%s: malformed entry %q, want key=value", path, pair)
			}
			out[key] = strings.TrimSpace(value)
		}
		k.Delete(path)
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps flat environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Database
	"duckdb_path":                     "database.path",
	"duckdb_max_memory":               "database.max_memory",
	"duckdb_threads":                  "database.threads",
	"duckdb_preserve_insertion_order": "database.preserve_insertion_order",
	"duckdb_query_timeout":            "database.query_timeout",
	"seed_mock_data":                  "database.seed_mock_data",
	"seed_users":                      "database.seed_users",

	// Security
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"trusted_proxies":     "security.trusted_proxies",
	"refresh_per_minute":  "security.refresh_per_minute",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Cache
	"cache_enabled":          "cache.enabled",
	"cache_ttl":              "cache.ttl",
	"cache_cleanup_interval": "cache.cleanup_interval",
	"cache_scope_ttls":       "cache.scope_ttls",

	// Analytics
	"min_cohort_sample":     "analytics.min_cohort_sample",
	"heatmap_periods":       "analytics.heatmap_periods",
	"curve_cohorts":         "analytics.curve_cohorts",
	"default_lookback_days": "analytics.default_lookback_days",
	"ranking_limit":         "analytics.ranking_limit",

	// Circuit breaker
	"breaker_enabled":              "breaker.enabled",
	"breaker_max_requests":         "breaker.max_requests",
	"breaker_interval":             "breaker.interval",
	"breaker_timeout":              "breaker.timeout",
	"breaker_min_requests":         "breaker.min_requests",
	"breaker_failure_ratio":        "breaker.failure_ratio",
	"breaker_consecutive_failures": "breaker.consecutive_failures",

	// Refresh events
	"nats_enabled":         "invalidation.enabled",
	"nats_url":             "invalidation.url",
	"nats_refresh_subject": "invalidation.subject",
	"nats_queue_group":     "invalidation.queue_group",
	"nats_embedded":        "invalidation.embedded_server",
	"nats_embedded_host":   "invalidation.embedded_host",
	"nats_embedded_port":   "invalidation.embedded_port",
	"nats_max_reconnects":  "invalidation.max_reconnects",
	"nats_reconnect_wait":  "invalidation.reconnect_wait",
	"nats_close_timeout":   "invalidation.close_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
//   - MIN_COHORT_SAMPLE -> analytics.min_cohort_sample
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so unrelated variables never reach the config.
	return ""
}
