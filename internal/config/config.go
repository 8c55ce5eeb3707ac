// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package config

import (
	"time"
)

// Config holds all application configuration.
// Struct tags map each field to its koanf path.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Database     DatabaseConfig     `koanf:"database"`
	Security     SecurityConfig     `koanf:"security"`
	Logging      LoggingConfig      `koanf:"logging"`
	Cache        CacheConfig        `koanf:"cache"`
	Analytics    AnalyticsConfig    `koanf:"analytics"`
	Breaker      BreakerConfig      `koanf:"breaker"`
	Invalidation InvalidationConfig `koanf:"invalidation"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds warehouse (DuckDB) configuration
type DatabaseConfig struct {
	Path                   string        `koanf:"path"`
	MaxMemory              string        `koanf:"max_memory"`
	Threads                int           `koanf:"threads"`
	PreserveInsertionOrder bool          `koanf:"preserve_insertion_order"`
	QueryTimeout           time.Duration `koanf:"query_timeout"`
	SeedMockData           bool          `koanf:"seed_mock_data"`
	SeedUsers              int           `koanf:"seed_users"`
}

// SecurityConfig holds request-level protection settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
	// RefreshPerMinute bounds manual cache refreshes across all clients.
	RefreshPerMinute int `koanf:"refresh_per_minute"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// CacheConfig holds the query result cache configuration.
type CacheConfig struct {
	Enabled         bool          `koanf:"enabled"`
	TTL             time.Duration `koanf:"ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	// ScopeTTLs overrides TTL for individual query scopes (funnel,
	// retention, engagement, ...). A zero duration disables caching for
	// that scope.
	ScopeTTLs map[string]time.Duration `koanf:"scope_ttls"`
}

// AnalyticsConfig holds presentation policies for comparative views.
type AnalyticsConfig struct {
	// MinCohortSample is the smallest mature population a retention cell
	// needs before its rate is reported or ranked.
	MinCohortSample     int `koanf:"min_cohort_sample"`
	HeatmapPeriods      int `koanf:"heatmap_periods"`
	CurveCohorts        int `koanf:"curve_cohorts"`
	DefaultLookbackDays int `koanf:"default_lookback_days"`
	RankingLimit        int `koanf:"ranking_limit"`
}

// BreakerConfig holds the warehouse circuit breaker settings.
type BreakerConfig struct {
	Enabled          bool          `koanf:"enabled"`
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	MinRequests      uint32        `koanf:"min_requests"`
	FailureRatio     float64       `koanf:"failure_ratio"`
	ConsecutiveFails uint32        `koanf:"consecutive_failures"`
}

// InvalidationConfig holds the warehouse refresh event settings.
type InvalidationConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	Subject        string        `koanf:"subject"`
	QueueGroup     string        `koanf:"queue_group"`
	EmbeddedServer bool          `koanf:"embedded_server"`
	EmbeddedHost   string        `koanf:"embedded_host"`
	EmbeddedPort   int           `koanf:"embedded_port"`
	MaxReconnects  int           `koanf:"max_reconnects"`
	ReconnectWait  time.Duration `koanf:"reconnect_wait"`
	CloseTimeout   time.Duration `koanf:"close_timeout"`
}

// Load reads configuration from defaults, an optional YAML file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
