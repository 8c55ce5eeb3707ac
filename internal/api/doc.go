// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

/*
Package api provides the HTTP surface of the dashboard: request parsing and
validation, the cache-first query executor and the Chi router.

# Endpoints

	GET  /api/v1/health                       health, breaker and refresh state
	GET  /api/v1/health/live                  liveness probe
	GET  /api/v1/health/ready                 readiness probe (503 without warehouse)
	GET  /api/v1/analytics/catalog            metrics, funnels, horizons, dimensions
	GET  /api/v1/analytics/rate               one metric, or a series with bucket=
	GET  /api/v1/analytics/north-star         WoW/MoM North Star summary
	GET  /api/v1/analytics/funnels/{name}     funnel, optionally compare=previous
	GET  /api/v1/analytics/retention/heatmap  cohort x horizon grid
	GET  /api/v1/analytics/retention/curves   retention curves of recent cohorts
	GET  /api/v1/analytics/retention/ranking  best or worst cohorts at a horizon
	GET  /api/v1/analytics/activation         activation rate and breakdowns
	GET  /api/v1/analytics/engagement         DAU/WAU/MAU, WAP/MAP, daily series
	POST /api/v1/cache/refresh                clear cached results everywhere
	GET  /api/v1/cache/stats                  result cache statistics
	GET  /metrics                             Prometheus
	GET  /swagger/*                           API documentation

# Responses

Every response is a models.APIResponse. A query that matched nothing is a
200 with status "empty" and code EMPTY_RESULT; it is never rendered as
zeros. Rates whose denominator is zero are JSON null. Invalid parameters
and filters on a dimension the queried table lacks are 400
VALIDATION_ERROR or QUERY_ERROR. An unreachable warehouse is 503
STORE_UNAVAILABLE with Retry-After. Nothing is retried server side.

# Filters

Filters are data_source, session_type and app_version (comma separated or
repeated) plus start and end dates. An omitted dimension matches every
value. The value "all" is an ordinary value.
*/
package api
