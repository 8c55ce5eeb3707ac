// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

// Package query provides SQL query building utilities for the database package.
//
// The WhereBuilder renders parameterized WHERE clauses for the gold-layer fact
// tables:
//
//	wb := query.NewWhereBuilder()
//	wb.AddDateRange("session_date", &start, &end)
//	wb.AddIn("data_source", []string{"native", "inferred"})
//	whereClause, args := wb.Build()
//	// Result: "session_date >= CAST(? AS DATE) AND session_date <= CAST(? AS DATE)
//	//          AND data_source IN (?, ?)"
//
// Column names are never taken from user input; callers pass identifiers from
// a fixed table schema and values only ever travel as bound arguments.
package query
