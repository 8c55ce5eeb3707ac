// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

/*
Package main is the entry point for the Northstar server.

Northstar serves the analytics behind a planning dashboard: metric rates
and series, week-over-week and month-over-month deltas, conversion funnels,
cohort retention and user activation, all computed from the gold schema of
a DuckDB warehouse and cached for five minutes.

# Application Architecture

	RootSupervisor ("northstar")
	├── data-layer
	│   ├── cache janitor
	│   └── embedded NATS server (NATS_EMBEDDED=true)
	├── messaging-layer
	│   └── refresh subscriber (NATS_ENABLED=true)
	└── api-layer
	    └── HTTP server (chi router)

Startup order:

 1. Configuration: Koanf v2 with defaults, an optional YAML file and environment variables
 2. Logging: zerolog with JSON or console output
 3. Warehouse: DuckDB behind a circuit breaker, optionally seeded with mock data
 4. Result cache: TTL cache, swept by a supervised janitor
 5. Invalidation: NATS publisher and subscriber for warehouse refresh events
 6. Supervisor tree and HTTP server

# Configuration

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	HTTP_PORT=3857              # HTTP server port
	DUCKDB_PATH=/data/northstar.duckdb
	DUCKDB_QUERY_TIMEOUT=30s
	SEED_MOCK_DATA=false        # write a synthetic warehouse at startup
	LOG_LEVEL=info              # trace, debug, info, warn, error
	LOG_FORMAT=json             # json or console

	CACHE_ENABLED=true
	CACHE_TTL=5m
	CACHE_SCOPE_TTLS=engagement=1m,funnel=10m   # per-scope TTL overrides, 0 disables
	MIN_COHORT_SAMPLE=5         # retention cells below this are not reported

	NATS_ENABLED=false          # consume warehouse refresh events
	NATS_URL=nats://127.0.0.1:4222
	NATS_REFRESH_SUBJECT=warehouse.refreshed
	NATS_EMBEDDED=false         # run a broker in process

# Signal Handling

On SIGINT or SIGTERM the tree cancels every service. The HTTP server stops
accepting connections and waits up to HTTP_TIMEOUT for in-flight requests,
the subscriber drains, and services that fail to stop in time are logged
before the warehouse is closed.

# Usage

Local demo with mock data:

	SEED_MOCK_DATA=true DUCKDB_PATH=:memory: LOG_FORMAT=console go run ./cmd/server

Two replicas sharing refresh events:

	NATS_ENABLED=true NATS_URL=nats://nats:4222 ./northstar

API documentation is served at /swagger/index.html.
*/
package main
