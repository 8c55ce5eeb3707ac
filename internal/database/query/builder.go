// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package query

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
// It ensures consistent parameter handling and reduces SQL injection risks.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddDateRange("session_date", &start, &end)
//	wb.AddIn("data_source", []string{"native"})
//	whereClause, args := wb.Build()
//	// session_date >= ? AND session_date <= ? AND data_source IN (?)
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddDateRange adds inclusive start and/or end bounds on column.
// Nil dates are skipped, allowing open-ended ranges. Dates are passed
// as YYYY-MM-DD and cast to DATE so time-of-day never leaks into the bound.
func (wb *WhereBuilder) AddDateRange(column string, startDate, endDate *time.Time) *WhereBuilder {
	if startDate != nil {
		wb.clauses = append(wb.clauses, column+" >= CAST(? AS DATE)")
		wb.args = append(wb.args, startDate.Format(time.DateOnly))
	}
	if endDate != nil {
		wb.clauses = append(wb.clauses, column+" <= CAST(? AS DATE)")
		wb.args = append(wb.args, endDate.Format(time.DateOnly))
	}
	return wb
}

// AddIn adds "column IN (?, ?, ...)". An empty value list matches no rows,
// since an empty set of allowed values cannot be satisfied.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		wb.clauses = append(wb.clauses, "FALSE")
		return wb
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		wb.args = append(wb.args, v)
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}
