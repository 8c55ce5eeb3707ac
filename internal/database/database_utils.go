// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

/*
database_utils.go - Database Utility Functions

Profiling:
  - enableProfiling(): Enables DuckDB query profiling when ENABLE_QUERY_PROFILING=true

Context Management:
  - ensureContext(): Applies the configured query timeout when the caller set
    no deadline. The timeout is the only failure-time bound; nothing retries.

Maintenance:
  - Checkpoint(): Forces a WAL checkpoint
  - GetRecordCounts(): Returns row counts of the gold tables
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tomtom215/northstar/internal/logging"
)

const defaultQueryTimeout = 30 * time.Second

// enableProfiling enables DuckDB query profiling for performance debugging
func (db *DB) enableProfiling() error {
	if os.Getenv("ENABLE_QUERY_PROFILING") != "true" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "PRAGMA enable_profiling"); err != nil {
		return fmt.Errorf("failed to enable profiling: %w", err)
	}

	if _, err := db.conn.ExecContext(ctx, "PRAGMA profiling_mode = 'detailed'"); err != nil {
		return fmt.Errorf("failed to set profiling mode: %w", err)
	}

	logging.Info().Msg("Query profiling enabled (detailed mode)")
	return nil
}

// ensureContext applies the query timeout if the caller set no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := defaultQueryTimeout
	if db.cfg != nil && db.cfg.QueryTimeout > 0 {
		timeout = db.cfg.QueryTimeout
	}

	if ctx == nil {
		return context.WithTimeout(context.Background(), timeout)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	return ctx, func() {}
}

// Checkpoint forces a WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, "CHECKPOINT")
	if err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// GetRecordCounts returns the row counts of the gold tables.
func (db *DB) GetRecordCounts(ctx context.Context) (sessions int64, users int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM gold.session_outcomes").Scan(&sessions)
	if err != nil {
		return 0, 0, classifyError("record_counts", "SELECT COUNT(*) FROM gold.session_outcomes", err)
	}

	err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM gold.user_activations").Scan(&users)
	if err != nil {
		return sessions, 0, classifyError("record_counts", "SELECT COUNT(*) FROM gold.user_activations", err)
	}

	return sessions, users, nil
}
