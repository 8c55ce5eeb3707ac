// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

/*
Package metrics defines the Prometheus instrumentation for Northstar.

All collectors are registered with the default registry through promauto and
exposed by the API at GET /metrics.

# Metric Families

Every name carries the northstar_ prefix.

Warehouse:
  - warehouse_query_duration_seconds{operation, table}
  - warehouse_query_errors_total{operation, table, error_type}
  - analytics_diagnostics_total{kind, subject}

API:
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests
  - api_rate_limited_total{endpoint}

Cache:
  - cache_hits_total, cache_misses_total, cache_entries, cache_expired_total
  - cache_invalidated_total{cache_type, reason}

Refresh events and resilience:
  - invalidation_refresh_events_total{direction, result}
  - breaker_state, breaker_requests_total, breaker_consecutive_failures,
    breaker_transitions_total
  - build_info{version, go_version}

error_type is taken from the error's Kind() method when it has one, so typed
warehouse errors are counted as connection, query or empty.
*/
package metrics
