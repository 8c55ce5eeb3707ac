// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/northstar/internal/config"
	"github.com/tomtom215/northstar/internal/logging"
)

// DB wraps the DuckDB warehouse connection and provides the analytics queries.
// All reads are side-effect free; the only writes are schema creation and
// the optional mock seed.
type DB struct {
	conn    *sql.DB
	cfg     *config.DatabaseConfig
	breaker *queryBreaker

	clockMu sync.RWMutex
	clock   func() time.Time
}

// New opens the warehouse and creates the gold schema if it is missing.
func New(cfg *config.DatabaseConfig, breakerCfg config.BreakerConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	preserveOrder := "true"
	if !cfg.PreserveInsertionOrder {
		preserveOrder = "false"
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	// Extensions are never fetched at runtime; the queries use core SQL only.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, maxMemory, preserveOrder)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:    conn,
		cfg:     cfg,
		breaker: newQueryBreaker(breakerCfg),
		clock:   time.Now,
	}

	if err := db.configureConnectionPool(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.enableProfiling(); err != nil {
		logging.Warn().Err(err).Msg("Query profiling not enabled")
	}

	return db, nil
}

// SetClock replaces the source of "now" used for maturity and lookback
// windows. Tests pin it so cohort ages are reproducible.
func (db *DB) SetClock(now func() time.Time) {
	db.clockMu.Lock()
	defer db.clockMu.Unlock()
	if now == nil {
		now = time.Now
	}
	db.clock = now
}

// now returns the current time in UTC.
func (db *DB) now() time.Time {
	db.clockMu.RLock()
	defer db.clockMu.RUnlock()
	return db.clock().UTC()
}

// today returns the current UTC day at midnight.
func (db *DB) today() time.Time {
	return truncateDay(db.now())
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// BreakerState reports the circuit breaker state for health checks.
func (db *DB) BreakerState() string {
	return db.breaker.State()
}

// Close checkpoints and closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}
	cancel()

	return db.conn.Close()
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return &ConnectionError{Op: "ping", Err: fmt.Errorf("database connection is nil")}
	}
	if err := db.conn.PingContext(ctx); err != nil {
		return &ConnectionError{Op: "ping", Err: err}
	}
	return nil
}

// initialize creates the gold schema and its indexes.
func (db *DB) initialize() error {
	if err := db.createTables(); err != nil {
		return err
	}

	if err := db.createIndexes(); err != nil {
		return err
	}

	checkpointCtx, checkpointCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer checkpointCancel()
	if err := db.Checkpoint(checkpointCtx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint after schema initialization")
	}

	return nil
}
