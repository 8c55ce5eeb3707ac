// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

/*
database_schema.go - Gold Layer Schema

The warehouse is populated by an external transformation pipeline. This file
creates the gold-layer tables the dashboard reads so a fresh database (local
runs, tests, the mock seed) has the same shape as production.

Tables:
  - gold.session_outcomes: one row per planning session with boolean outcome
    flags, the filter dimensions and derived counts
  - gold.user_activations: one row per user with signup and activation facts

Invariants the pipeline guarantees (and the seed honours):
  - meets_psr_strict implies meets_psr_broad implies (has_save OR has_share)
  - is_activated is true iff activation_date is not null
  - activation_date >= signup_date and days_to_activation is their difference
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the gold schema and tables idempotently.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", compactQuery(query), err)
		}
	}

	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func getTableCreationQueries() []string {
	return []string{
		`CREATE SCHEMA IF NOT EXISTS gold`,

		`CREATE TABLE IF NOT EXISTS gold.session_outcomes (
			session_id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			session_date DATE NOT NULL,
			session_started_at TIMESTAMP NOT NULL,

			-- Filter dimensions
			data_source VARCHAR NOT NULL,
			session_type VARCHAR NOT NULL,
			app_version VARCHAR NOT NULL,

			-- Funnel facts
			has_browse BOOLEAN NOT NULL DEFAULT FALSE,
			has_engagement BOOLEAN NOT NULL DEFAULT FALSE,
			has_save BOOLEAN NOT NULL DEFAULT FALSE,
			has_share BOOLEAN NOT NULL DEFAULT FALSE,
			has_post_share_interaction BOOLEAN NOT NULL DEFAULT FALSE,
			has_conversion BOOLEAN NOT NULL DEFAULT FALSE,

			-- Outcome flags
			meets_psr_broad BOOLEAN NOT NULL DEFAULT FALSE,
			meets_psr_strict BOOLEAN NOT NULL DEFAULT FALSE,
			is_no_value_session BOOLEAN NOT NULL DEFAULT FALSE,
			is_prompt_session BOOLEAN NOT NULL DEFAULT FALSE,
			is_genuine_planning_attempt BOOLEAN NOT NULL DEFAULT FALSE,

			-- Derived counts
			save_count INTEGER NOT NULL DEFAULT 0,
			share_count INTEGER NOT NULL DEFAULT 0,
			seconds_to_first_save INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS gold.user_activations (
			user_id VARCHAR PRIMARY KEY,
			signup_date DATE NOT NULL,

			-- Filter dimensions
			data_source VARCHAR NOT NULL,
			app_version VARCHAR NOT NULL,

			-- Activation funnel facts
			had_first_session BOOLEAN NOT NULL DEFAULT FALSE,
			completed_onboarding BOOLEAN NOT NULL DEFAULT FALSE,
			is_activated BOOLEAN NOT NULL DEFAULT FALSE,
			activation_date DATE,
			activation_type VARCHAR,
			days_to_activation INTEGER
		)`,
	}
}

// createIndexes creates indexes for the common filter and join columns.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getIndexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", compactQuery(query), err)
		}
	}
	return nil
}

func getIndexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_session_outcomes_date ON gold.session_outcomes(session_date)`,
		`CREATE INDEX IF NOT EXISTS idx_session_outcomes_user ON gold.session_outcomes(user_id, session_date)`,
		`CREATE INDEX IF NOT EXISTS idx_user_activations_signup ON gold.user_activations(signup_date)`,
	}
}
