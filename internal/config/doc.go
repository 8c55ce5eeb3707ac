// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

/*
Package config provides centralized configuration management for Northstar.

Configuration is layered with Koanf v2:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file (CONFIG_PATH, ./config.yaml or /etc/northstar/config.yaml)
 3. Environment variables, mapped explicitly by envTransformFunc

# Sections

  - ServerConfig: HTTP bind address, port and timeouts
  - DatabaseConfig: DuckDB warehouse path and tuning
  - SecurityConfig: rate limiting, CORS and manual refresh throttling
  - LoggingConfig: zerolog level and format
  - CacheConfig: query result cache TTL (default 5m) and per-scope overrides
  - AnalyticsConfig: minimum cohort sample and view sizes
  - BreakerConfig: warehouse circuit breaker
  - InvalidationConfig: NATS refresh events

# Example

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(cfg.Analytics.MinCohortSample)
*/
package config
