// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

// Package main provides the Northstar HTTP server
//
// @title Northstar API
// @version 1.0
// @description Planning analytics for the dashboard: metric rates, period deltas, funnels, cohort retention and activation.
// @description
// @description ## Responses
// @description
// @description Every response uses the same envelope. A query that matched no rows returns
// @description `status: "empty"` with `data: null`; it is never reported as zero.
// @description
// @description ## Filters
// @description
// @description `data_source`, `session_type` and `app_version` filter on warehouse dimensions.
// @description Omit a dimension to include every value. `all` is matched literally.
// @description
// @description ## Caching
// @description
// @description Results are cached for 5 minutes. `POST /cache/refresh` clears the cache.
// @description
// @description ## Error Responses
// @description
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "QUERY_ERROR",
// @description     "message": "Human-readable error message",
// @description     "details": {}
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-03-12T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/northstar/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:3857
// @BasePath /api/v1
// @schemes http https
//
// @tag.name Health
// @tag.description Liveness, readiness and component status
//
// @tag.name Analytics
// @tag.description Rates, North Star, funnels, retention, activation and engagement
//
// @tag.name Cache
// @tag.description Manual refresh and cache statistics
package main
