// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/tomtom215/northstar/internal/logging"
)

// SeedOptions controls the synthetic warehouse.
type SeedOptions struct {
	Users int
	// Days is how far back signups are spread.
	Days int
	// Seed makes the data reproducible: the same options yield the same rows.
	Seed uint64
	// Now anchors the data; zero means the DB clock.
	Now time.Time
}

// DefaultSeedOptions returns options for a local demo warehouse.
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{Users: 500, Days: 180, Seed: 42}
}

// sessionRow is one gold.session_outcomes row.
type sessionRow struct {
	SessionID          string
	UserID             string
	Date               time.Time
	DataSource         string
	SessionType        string
	AppVersion         string
	Browse             bool
	Engagement         bool
	Save               bool
	Share              bool
	PostShare          bool
	Conversion         bool
	PSRBroad           bool
	PSRStrict          bool
	NoValue            bool
	GenuinePlanning    bool
	SaveCount          int
	ShareCount         int
	SecondsToFirstSave *int
}

// userRow is one gold.user_activations row.
type userRow struct {
	UserID              string
	SignupDate          time.Time
	DataSource          string
	AppVersion          string
	HadFirstSession     bool
	CompletedOnboarding bool
	ActivationDate      *time.Time
	ActivationType      string
}

var (
	seedDataSources = []string{"native", "native", "native", "inferred"}
	seedAppVersions = []string{"2.3.0", "2.4.0", "2.4.0", "2.5.1"}
)

// SeedMockData writes a deterministic synthetic warehouse that honours the
// gold-layer invariants: nested funnel flags, PSR ladder, activation dates
// on or after signup and sessions never before signup.
func (db *DB) SeedMockData(ctx context.Context, opts SeedOptions) error {
	if opts.Users < 1 {
		return fmt.Errorf("seed requires at least one user")
	}
	if opts.Days < 1 {
		opts.Days = 180
	}
	now := opts.Now
	if now.IsZero() {
		now = db.now()
	}
	today := truncateDay(now)

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	logging.Info().Int("users", opts.Users).Int("days", opts.Days).Uint64("seed", opts.Seed).Msg("Seeding warehouse with mock data...")

	users := make([]userRow, 0, opts.Users)
	sessions := make([]sessionRow, 0, opts.Users*6)

	for i := 0; i < opts.Users; i++ {
		u := userRow{
			UserID:     fmt.Sprintf("u%05d", i),
			SignupDate: today.AddDate(0, 0, -rng.IntN(opts.Days)),
			DataSource: seedDataSources[rng.IntN(len(seedDataSources))],
			AppVersion: seedAppVersions[rng.IntN(len(seedAppVersions))],
		}

		var userSessions []sessionRow
		if rng.Float64() < 0.85 {
			n := 1 + rng.IntN(8)
			age := int(today.Sub(u.SignupDate).Hours() / 24)
			for j := 0; j < n; j++ {
				offset := 0
				if j > 0 && age > 0 {
					offset = rng.IntN(age + 1)
				}
				s := seedSession(rng, u, u.SignupDate.AddDate(0, 0, offset))
				s.SessionID = fmt.Sprintf("%s-s%02d", u.UserID, j)
				userSessions = append(userSessions, s)
			}
		}

		u.HadFirstSession = len(userSessions) > 0
		var first *sessionRow
		for j := range userSessions {
			s := &userSessions[j]
			if (s.Save || s.Share) && (first == nil || s.Date.Before(first.Date)) {
				first = s
			}
		}
		if first != nil {
			d := first.Date
			u.ActivationDate = &d
			u.ActivationType = activationType(*first)
		}
		u.CompletedOnboarding = u.ActivationDate != nil || (u.HadFirstSession && rng.Float64() < 0.6)

		users = append(users, u)
		sessions = append(sessions, userSessions...)
	}

	if err := db.insertRows(ctx, users, sessions); err != nil {
		return err
	}

	logging.Info().Int("users", len(users)).Int("sessions", len(sessions)).Msg("Mock data seeded successfully")
	return nil
}

// seedSession draws one session whose flags follow the funnel ladder.
func seedSession(rng *rand.Rand, u userRow, date time.Time) sessionRow {
	s := sessionRow{
		UserID:      u.UserID,
		Date:        date,
		DataSource:  u.DataSource,
		AppVersion:  u.AppVersion,
		SessionType: "non_prompt",
	}
	if rng.Float64() < 0.35 {
		s.SessionType = "prompt"
	}

	s.Browse = rng.Float64() < 0.85
	s.Engagement = s.Browse && rng.Float64() < 0.7
	if s.Engagement && rng.Float64() < 0.6 {
		s.SaveCount = 1 + rng.IntN(6)
		s.Save = true
		secs := 20 + rng.IntN(600)
		s.SecondsToFirstSave = &secs
	}
	// Shortlisted sessions share most often, but any engaged session may
	// share without saving.
	shareP := 0.15
	if s.SaveCount >= 3 {
		shareP = 0.5
	}
	if s.Engagement && rng.Float64() < shareP {
		s.Share = true
		s.ShareCount = 1 + rng.IntN(3)
		s.PostShare = rng.Float64() < 0.6
		s.Conversion = rng.Float64() < 0.4
	}

	s.GenuinePlanning = s.Engagement
	s.NoValue = !s.Engagement
	s.PSRBroad = s.Share && (s.Save || s.PostShare)
	s.PSRStrict = s.Save && s.Share && s.PostShare
	return s
}

func activationType(s sessionRow) string {
	switch {
	case s.Save && s.Share:
		return "multiple"
	case s.Save && s.SessionType == "prompt":
		return "save_prompted"
	case s.Save:
		return "saved"
	default:
		return "shared"
	}
}

const insertSessionSQL = `
	INSERT INTO gold.session_outcomes (
		session_id, user_id, session_date, session_started_at,
		data_source, session_type, app_version,
		has_browse, has_engagement, has_save, has_share, has_post_share_interaction, has_conversion,
		meets_psr_broad, meets_psr_strict, is_no_value_session, is_prompt_session, is_genuine_planning_attempt,
		save_count, share_count, seconds_to_first_save
	) VALUES (?, ?, CAST(? AS DATE), CAST(? AS TIMESTAMP), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertUserSQL = `
	INSERT INTO gold.user_activations (
		user_id, signup_date, data_source, app_version,
		had_first_session, completed_onboarding, is_activated,
		activation_date, activation_type, days_to_activation
	) VALUES (?, CAST(? AS DATE), ?, ?, ?, ?, ?, CAST(? AS DATE), ?, ?)`

// insertRows writes users and sessions in one transaction.
func (db *DB) insertRows(ctx context.Context, users []userRow, sessions []sessionRow) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := insertUsers(ctx, tx, users); err != nil {
		return err
	}
	if err := insertSessions(ctx, tx, sessions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	committed = true
	return nil
}

func insertUsers(ctx context.Context, tx *sql.Tx, users []userRow) error {
	if len(users) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, insertUserSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare user insert: %w", err)
	}
	defer closeQuietly(stmt)

	for _, u := range users {
		var activation, activationType, days interface{}
		if u.ActivationDate != nil {
			activation = u.ActivationDate.Format(time.DateOnly)
			activationType = u.ActivationType
			days = int(u.ActivationDate.Sub(u.SignupDate).Hours() / 24)
		}
		if _, err := stmt.ExecContext(ctx,
			u.UserID, u.SignupDate.Format(time.DateOnly), u.DataSource, u.AppVersion,
			u.HadFirstSession, u.CompletedOnboarding, u.ActivationDate != nil,
			activation, activationType, days,
		); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.UserID, err)
		}
	}
	return nil
}

func insertSessions(ctx context.Context, tx *sql.Tx, sessions []sessionRow) error {
	if len(sessions) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, insertSessionSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare session insert: %w", err)
	}
	defer closeQuietly(stmt)

	for _, s := range sessions {
		var firstSave interface{}
		if s.SecondsToFirstSave != nil {
			firstSave = *s.SecondsToFirstSave
		}
		started := s.Date.Add(9 * time.Hour)
		if _, err := stmt.ExecContext(ctx,
			s.SessionID, s.UserID, s.Date.Format(time.DateOnly), started.Format(time.DateTime),
			s.DataSource, s.SessionType, s.AppVersion,
			s.Browse, s.Engagement, s.Save, s.Share, s.PostShare, s.Conversion,
			s.PSRBroad, s.PSRStrict, s.NoValue, s.SessionType == "prompt", s.GenuinePlanning,
			s.SaveCount, s.ShareCount, firstSave,
		); err != nil {
			return fmt.Errorf("failed to seed session %s: %w", s.SessionID, err)
		}
	}
	return nil
}
