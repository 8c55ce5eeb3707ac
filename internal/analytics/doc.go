// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

/*
Package analytics holds the pure computations behind the dashboard: rates,
funnels and cohort retention. It performs no I/O; the database package feeds
it counts and the API serialises its results.

# Rates

A Rate may be undefined. Division by a zero denominator yields an undefined
rate, and deltas between periods are undefined unless both sides are defined.
Undefined rates encode as JSON null so a client renders "N/A" instead of 0%.

# Funnels

BuildFunnel takes stage counts that were evaluated independently and derives
pct_of_initial, pct_of_previous and drop_off. A stage larger than its
predecessor is kept as measured and reported as a FunnelMonotonicityViolation.

# Retention

A member is mature at horizon H once H has elapsed since its defining event.
ComputeRetention reports retained/mature only when at least the configured
minimum number of members is mature:

	cell, diag := analytics.ComputeRetention(analytics.CohortCounts{
		Cohort: "2026-03-02", Size: 100, Mature: 40, Retained: 18,
	}, analytics.D7, 5)
	// cell.Rate = 0.45, cell.State = ok, diag = nil

Cells with no mature member carry StateNotMature together with a
RetentionDenominatorZero diagnostic; cells with too few carry
StateInsufficientSample.
*/
package analytics
