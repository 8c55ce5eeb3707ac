// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"runtime"
	"strings"
	"time"
)

// configureConnectionPool sets connection pool parameters.
// max_open follows the CPU count because every request is a read-only
// aggregation that can run in parallel.
func (db *DB) configureConnectionPool() error {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
	return nil
}

// connectionErrorMarkers are driver messages that mean the warehouse itself
// is unreachable rather than the query being wrong.
var connectionErrorMarkers = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"bad connection",
	"database is closed",
	"Connection Error",
	"IO Error: Could not set lock",
}

// isConnectionError checks if an error indicates database connection loss
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, marker := range connectionErrorMarkers {
		if strings.Contains(errMsg, marker) {
			return true
		}
	}
	return false
}
