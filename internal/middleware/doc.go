// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

/*
Package middleware provides the HTTP middleware shared by every route.

  - RequestID: assigns or propagates X-Request-ID and seeds the logging
    context with request and correlation IDs
  - AccessLog: one structured zerolog line per request
  - PrometheusMetrics: request count, latency histogram and in-flight gauge,
    labelled by chi route pattern to keep cardinality bounded

All three use the standard func(http.Handler) http.Handler shape and are
mounted with chi's r.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)

Compression, CORS and rate limiting come from chi's own middleware,
go-chi/cors and go-chi/httprate and are wired in the api package.
*/
package middleware
