// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Every series is exported as northstar_<subsystem>_<name>.
const namespace = "northstar"

var (
	// Warehouse
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "warehouse",
		Name:    "query_duration_seconds",
		Help:    "DuckDB query latency by operation and gold table.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"operation", "table"})

	// error_type is the typed error's Kind: connection, query, empty or other.
	DBQueryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "warehouse",
		Name: "query_errors_total",
		Help: "Failed warehouse queries by error kind.",
	}, []string{"operation", "table", "error_type"})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "analytics",
		Name: "diagnostics_total",
		Help: "Data-quality diagnostics raised while building funnels and retention.",
	}, []string{"kind", "subject"})

	// HTTP API. endpoint is the chi route pattern, never the raw path.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "api",
		Name: "requests_total",
		Help: "API requests by method, route and status.",
	}, []string{"method", "endpoint", "status_code"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "api",
		Name:    "request_duration_seconds",
		Help:    "API latency including cache lookups.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "endpoint"})

	APIActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "api",
		Name: "active_requests",
		Help: "Requests currently being served.",
	})

	APIRateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "api",
		Name: "rate_limited_total",
		Help: "Requests rejected by a rate limiter.",
	}, []string{"endpoint"})

	// Result cache, labelled by cache name.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cache",
		Name: "hits_total",
		Help: "Result cache hits.",
	}, []string{"cache_type"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cache",
		Name: "misses_total",
		Help: "Result cache misses, expired entries included.",
	}, []string{"cache_type"})

	CacheSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "cache",
		Name: "entries",
		Help: "Entries currently held.",
	}, []string{"cache_type"})

	CacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cache",
		Name: "expired_total",
		Help: "Entries dropped because their TTL passed.",
	}, []string{"cache_type"})

	// reason is manual, scope or event.
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cache",
		Name: "invalidated_total",
		Help: "Entries dropped by an explicit invalidation.",
	}, []string{"cache_type", "reason"})

	// direction is published or consumed.
	RefreshEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "invalidation",
		Name: "refresh_events_total",
		Help: "Warehouse refresh events by direction and outcome.",
	}, []string{"direction", "result"})

	// Warehouse circuit breaker. State is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "breaker",
		Name: "state",
		Help: "Circuit breaker state.",
	}, []string{"name"})

	// result is success, failure or rejected.
	CircuitBreakerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "breaker",
		Name: "requests_total",
		Help: "Calls passed through the breaker by outcome.",
	}, []string{"name", "result"})

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "breaker",
		Name: "consecutive_failures",
		Help: "Connection failures since the last success.",
	}, []string{"name"})

	CircuitBreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "breaker",
		Name: "transitions_total",
		Help: "Breaker state changes.",
	}, []string{"name", "from_state", "to_state"})

	AppInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Always 1; labels carry the build version.",
	}, []string{"version", "go_version"})
)

// SetBuildInfo publishes the running version on AppInfo.
func SetBuildInfo(version, goVersion string) {
	AppInfo.Reset()
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// kinded is implemented by errors that know their own category.
type kinded interface {
	Kind() string
}

// ErrorKind returns the category label for err: the error's own Kind() when
// it has one, "other" otherwise, and "" for nil.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return "other"
}

// RecordDBQuery records a warehouse query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, ErrorKind(err)).Inc()
	}
}

// RecordDiagnostic counts a data-quality diagnostic such as a funnel
// monotonicity violation.
func RecordDiagnostic(kind, subject string) {
	DiagnosticsTotal.WithLabelValues(kind, subject).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRefreshEvent counts a published or consumed warehouse refresh event.
func RecordRefreshEvent(direction string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	RefreshEvents.WithLabelValues(direction, result).Inc()
}
