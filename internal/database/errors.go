// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gobreaker "github.com/sony/gobreaker/v2"
)

// Error kinds reported through Kind() and used as metric labels.
const (
	KindConnection  = "connection"
	KindQuery       = "query"
	KindEmptyResult = "empty_result"
)

// ConnectionError means the warehouse could not be reached: the connection
// was lost, the query deadline passed, or the circuit breaker is open.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: warehouse unavailable: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Kind implements the metrics error-kind contract.
func (e *ConnectionError) Kind() string { return KindConnection }

// QueryError means the warehouse answered but the query could not run:
// a malformed filter, an unknown metric, or a missing table or column.
type QueryError struct {
	Op     string
	Query  string
	Detail string
	// Invalid is set when the request itself is malformed, as opposed to a
	// failure inside the warehouse.
	Invalid bool
	Err     error
}

func (e *QueryError) Error() string {
	msg := e.Op + ": query failed"
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *QueryError) Unwrap() error { return e.Err }

// Kind implements the metrics error-kind contract.
func (e *QueryError) Kind() string { return KindQuery }

// EmptyResultError means the query succeeded but the filtered population
// has no rows. Callers render an explicit "no data" state.
type EmptyResultError struct {
	Op string
}

func (e *EmptyResultError) Error() string {
	return e.Op + ": no rows match the filter"
}

// Kind implements the metrics error-kind contract.
func (e *EmptyResultError) Kind() string { return KindEmptyResult }

// invalidRequest builds a QueryError for a malformed request.
func invalidRequest(op, format string, args ...interface{}) *QueryError {
	return &QueryError{Op: op, Detail: fmt.Sprintf(format, args...), Invalid: true}
}

// classifyError maps a driver or breaker error to ConnectionError or
// QueryError. Typed errors pass through unchanged.
func classifyError(op, query string, err error) error {
	if err == nil {
		return nil
	}

	var ce *ConnectionError
	var qe *QueryError
	var ee *EmptyResultError
	if errors.As(err, &ce) || errors.As(err, &qe) || errors.As(err, &ee) {
		return err
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) ||
		errors.Is(err, context.DeadlineExceeded) || isConnectionError(err) {
		return &ConnectionError{Op: op, Err: err}
	}

	return &QueryError{Op: op, Query: compactQuery(query), Err: err}
}

// compactQuery collapses whitespace so queries read well in logs.
func compactQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
