// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateAnalytics(); err != nil {
		return err
	}

	if err := c.validateBreaker(); err != nil {
		return err
	}

	if err := c.validateInvalidation(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout < time.Second {
		return fmt.Errorf("HTTP_TIMEOUT must be at least 1s")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
}

// validateDatabase validates DuckDB configuration
func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("DUCKDB_QUERY_TIMEOUT must be positive")
	}
	if c.Database.SeedMockData && c.Database.SeedUsers < 1 {
		return fmt.Errorf("SEED_USERS must be at least 1 when SEED_MOCK_DATA=true")
	}
	return nil
}

// Rate limit bounds
const (
	rateLimitMinReqs = 1
	rateLimitMaxReqs = 100000
)

// validateSecurity validates rate limiting and CORS settings
func (c *Config) validateSecurity() error {
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < rateLimitMinReqs || c.Security.RateLimitReqs > rateLimitMaxReqs {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", rateLimitMinReqs, rateLimitMaxReqs)
		}
		if c.Security.RateLimitWindow < time.Second {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
		}
	}
	if c.Security.RefreshPerMinute < 1 {
		return fmt.Errorf("REFRESH_PER_MINUTE must be at least 1")
	}
	if c.IsProduction() {
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * in production")
			}
		}
	}
	return nil
}

// validateCache validates result cache configuration
func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.Cache.CleanupInterval <= 0 {
		return fmt.Errorf("CACHE_CLEANUP_INTERVAL must be positive")
	}
	for scope, ttl := range c.Cache.ScopeTTLs {
		if scope == "" || strings.ContainsRune(scope, ':') {
			return fmt.Errorf("CACHE_SCOPE_TTLS has invalid scope %q", scope)
		}
		if ttl < 0 {
			return fmt.Errorf("CACHE_SCOPE_TTLS for %s must not be negative", scope)
		}
	}
	return nil
}

// validateAnalytics validates cohort view policies
func (c *Config) validateAnalytics() error {
	a := c.Analytics
	if a.MinCohortSample < 1 {
		return fmt.Errorf("MIN_COHORT_SAMPLE must be at least 1")
	}
	if a.HeatmapPeriods < 1 || a.HeatmapPeriods > 104 {
		return fmt.Errorf("HEATMAP_PERIODS must be between 1 and 104")
	}
	if a.CurveCohorts < 1 || a.CurveCohorts > 52 {
		return fmt.Errorf("CURVE_COHORTS must be between 1 and 52")
	}
	if a.DefaultLookbackDays < 1 || a.DefaultLookbackDays > 3650 {
		return fmt.Errorf("DEFAULT_LOOKBACK_DAYS must be between 1 and 3650")
	}
	if a.RankingLimit < 1 {
		return fmt.Errorf("RANKING_LIMIT must be at least 1")
	}
	return nil
}

// validateBreaker validates circuit breaker settings (only if enabled)
func (c *Config) validateBreaker() error {
	if !c.Breaker.Enabled {
		return nil
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	if c.Breaker.MaxRequests == 0 {
		return fmt.Errorf("BREAKER_MAX_REQUESTS must be at least 1")
	}
	return nil
}

// validateInvalidation validates refresh event settings (only if enabled)
func (c *Config) validateInvalidation() error {
	inv := c.Invalidation
	if !inv.Enabled {
		return nil
	}
	if !inv.EmbeddedServer {
		if err := validateNATSURL(inv.URL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
	} else if inv.EmbeddedPort < -1 || inv.EmbeddedPort > 65535 {
		return fmt.Errorf("NATS_EMBEDDED_PORT must be between -1 and 65535")
	}
	if strings.TrimSpace(inv.Subject) == "" {
		return fmt.Errorf("NATS_REFRESH_SUBJECT is required when NATS_ENABLED=true")
	}
	if strings.ContainsAny(inv.Subject, " \t") {
		return fmt.Errorf("NATS_REFRESH_SUBJECT must not contain whitespace")
	}
	return nil
}

// validateNATSURL checks the scheme and host of a NATS server URL.
func validateNATSURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "nats" && u.Scheme != "tls" {
		return fmt.Errorf("scheme must be nats or tls, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
