// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

// Package database is the read layer over the DuckDB gold warehouse.
//
// # Overview
//
// Every dashboard number is computed here from two fact tables:
//
//   - gold.session_outcomes: one row per planning session with funnel flags
//   - gold.user_activations: one row per user with signup and activation
//
// The package never writes to these tables outside of SeedMockData, which
// fills a local warehouse with deterministic synthetic data.
//
// # Architecture
//
// Core:
//   - database.go: lifecycle, clock, ping and close
//   - database_schema.go: gold schema and indexes
//   - database_connection.go: pool settings and connection error detection
//   - database_utils.go: profiling, query timeouts, checkpoint, row counts
//   - query_helpers.go: the read path shared by every query
//   - breaker.go: circuit breaker around warehouse reads
//   - errors.go: ConnectionError, QueryError and EmptyResultError
//   - filter.go: dimension filters, composition and WHERE rendering
//
// Analytics:
//   - aggregator.go: metric registry, rates, series and North Star deltas
//   - funnel.go: funnel definitions, stage counts and period comparison
//   - cohort.go: cohort retention with maturity gating
//   - activation.go: activation rate, types and time to activation
//   - engagement.go: DAU/WAU/MAU and active planners
//
// # Rates
//
// Rates are returned as analytics.Rate. A zero denominator produces an
// undefined rate, which renders as "N/A"; it is never reported as 0%.
//
// # Filters
//
// A Filter constrains data_source, session_type and app_version plus a date
// range. The zero Match is the wildcard; Eq("all") matches the literal
// value "all". Constraining a dimension the queried table does not carry is
// a *QueryError rather than a silently ignored filter.
//
// # Errors
//
// Reads fail with exactly one of three typed errors:
//
//	var ce *database.ConnectionError // unreachable, timed out or breaker open
//	var qe *database.QueryError      // bad SQL or bad parameters
//	var ee *database.EmptyResultError // the filtered population is empty
//
// Nothing is retried and no failure is coerced into zeros.
//
// # Thread Safety
//
// DB is safe for concurrent use. DuckDB serves concurrent reads from the
// connection pool; the clock is guarded by a RWMutex.
//
// # Example
//
//	db, err := database.New(&cfg.Database, cfg.Breaker)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	m, _ := database.LookupMetric("ssr")
//	f := database.Filter{}.With(database.DimDataSource, database.Eq("native"))
//	res, err := db.AggregateRate(ctx, m, f)
//	fmt.Println(res.Rate.Percent()) // "42.0%" or "N/A"
package database
