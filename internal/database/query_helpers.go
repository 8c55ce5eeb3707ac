// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/northstar/internal/logging"
	"github.com/tomtom215/northstar/internal/metrics"
)

// read runs a read-only query through the circuit breaker with the query
// timeout, calling scan once per row. Errors come back classified as
// *ConnectionError or *QueryError and are recorded in metrics.
func (db *DB) read(ctx context.Context, op, table, query string, args []interface{}, scan func(*sql.Rows) error) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	err := db.breaker.execute(func() error {
		rows, err := db.conn.QueryContext(ctx, query, args...)
		if err != nil {
			return classifyError(op, query, err)
		}
		defer closeQuietly(rows)

		for rows.Next() {
			if err := scan(rows); err != nil {
				return classifyError(op, query, err)
			}
		}
		return classifyError(op, query, rows.Err())
	})
	err = classifyError(op, query, err)
	duration := time.Since(start)

	metrics.RecordDBQuery(op, table, duration, err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("op", op).Str("table", table).Dur("duration", duration).Msg("Warehouse query failed")
		return err
	}
	logging.Ctx(ctx).Debug().Str("op", op).Str("table", table).Dur("duration", duration).Msg("Warehouse query")
	return nil
}

// readOne runs a query expected to return exactly one row.
func (db *DB) readOne(ctx context.Context, op, table, query string, args []interface{}, dest ...interface{}) error {
	found := false
	err := db.read(ctx, op, table, query, args, func(rows *sql.Rows) error {
		found = true
		return rows.Scan(dest...)
	})
	if err != nil {
		return err
	}
	if !found {
		return &QueryError{Op: op, Query: compactQuery(query), Detail: "query returned no row"}
	}
	return nil
}

// scanFunc is a function that scans a single row into a result type
type scanFunc[T any] func(*sql.Rows) (T, error)

// queryAndScan executes a query and scans all rows using the provided scan function
func queryAndScan[T any](ctx context.Context, db *DB, op, table, query string, args []interface{}, scan scanFunc[T]) ([]T, error) {
	results := []T{}
	err := db.read(ctx, op, table, query, args, func(rows *sql.Rows) error {
		item, err := scan(rows)
		if err != nil {
			return err
		}
		results = append(results, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// countFilters renders "COUNT(*) FILTER (WHERE p) AS alias" for each predicate.
func countFilters(predicates []string, aliasPrefix string) string {
	parts := make([]string, len(predicates))
	for i, p := range predicates {
		parts[i] = fmt.Sprintf("COUNT(*) FILTER (WHERE %s) AS %s%d", p, aliasPrefix, i)
	}
	return strings.Join(parts, ",\n\t\t\t")
}

// sqlInterval renders a whole-number interval literal. n and unit come from
// validated enums, never from user text.
func sqlInterval(n int, unit string) string {
	return fmt.Sprintf("INTERVAL '%d %s'", n, unit)
}
