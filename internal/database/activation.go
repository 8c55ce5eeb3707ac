// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/northstar/internal/analytics"
)

// ActivationSummary is the headline activation view over filtered signups.
type ActivationSummary struct {
	Signups      int64          `json:"signups"`
	Activated    int64          `json:"activated"`
	Rate         analytics.Rate `json:"activation_rate"`
	Within7d     int64          `json:"activated_within_7d"`
	Within7dRate analytics.Rate `json:"activated_within_7d_rate"`
	// MedianDays is nil when nobody activated.
	MedianDays *float64 `json:"median_days_to_activation"`
}

// ActivationSummary counts signups and activations.
func (db *DB) ActivationSummary(ctx context.Context, f Filter) (ActivationSummary, error) {
	where, args, err := f.Where(UserActivations, "")
	if err != nil {
		return ActivationSummary{}, err
	}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS signups,
			COUNT(*) FILTER (WHERE is_activated) AS activated,
			COUNT(*) FILTER (WHERE is_activated AND days_to_activation <= 7) AS within_7d,
			median(days_to_activation) FILTER (WHERE is_activated) AS median_days
		FROM %s
		WHERE %s`, UserActivations.Name, where)

	var s ActivationSummary
	var median sql.NullFloat64
	if err := db.readOne(ctx, "activation_summary", UserActivations.Name, query, args, &s.Signups, &s.Activated, &s.Within7d, &median); err != nil {
		return ActivationSummary{}, err
	}
	if s.Signups == 0 {
		return ActivationSummary{}, &EmptyResultError{Op: "activation_summary"}
	}
	if median.Valid {
		v := median.Float64
		s.MedianDays = &v
	}
	s.Rate = analytics.NewRate(s.Activated, s.Signups)
	s.Within7dRate = analytics.NewRate(s.Within7d, s.Signups)
	return s, nil
}

// ActivationTypeShare is the share of activated users per activation type.
type ActivationTypeShare struct {
	Type  string         `json:"activation_type"`
	Users int64          `json:"users"`
	Share analytics.Rate `json:"share"`
}

// ActivationTypes returns the activation type distribution, largest first.
func (db *DB) ActivationTypes(ctx context.Context, f Filter) ([]ActivationTypeShare, error) {
	where, args, err := f.Where(UserActivations, "")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT COALESCE(activation_type, 'unknown') AS activation_type, COUNT(*) AS users
		FROM %s
		WHERE is_activated AND %s
		GROUP BY 1
		ORDER BY users DESC, activation_type`, UserActivations.Name, where)

	shares, err := queryAndScan(ctx, db, "activation_types", UserActivations.Name, query, args, func(rows *sql.Rows) (ActivationTypeShare, error) {
		var s ActivationTypeShare
		return s, rows.Scan(&s.Type, &s.Users)
	})
	if err != nil {
		return nil, err
	}
	if len(shares) == 0 {
		return nil, &EmptyResultError{Op: "activation_types"}
	}

	var total int64
	for _, s := range shares {
		total += s.Users
	}
	for i := range shares {
		shares[i].Share = analytics.NewRate(shares[i].Users, total)
	}
	return shares, nil
}

// TimeBucket is one bucket of the time-to-activation distribution.
type TimeBucket struct {
	Label string         `json:"label"`
	Users int64          `json:"users"`
	Share analytics.Rate `json:"share"`
}

// timeToActivationBuckets are ordered; upper bounds are inclusive days.
var timeToActivationBuckets = []struct {
	label    string
	min, max int
}{
	{"same day", 0, 0},
	{"1-3 days", 1, 3},
	{"4-7 days", 4, 7},
	{"8-14 days", 8, 14},
	{"15-30 days", 15, 30},
	{"31+ days", 31, -1},
}

// TimeToActivation buckets activated users by days from signup to
// activation. Every bucket is returned, including empty ones.
func (db *DB) TimeToActivation(ctx context.Context, f Filter) ([]TimeBucket, error) {
	where, args, err := f.Where(UserActivations, "")
	if err != nil {
		return nil, err
	}

	predicates := make([]string, len(timeToActivationBuckets))
	for i, b := range timeToActivationBuckets {
		if b.max < 0 {
			predicates[i] = fmt.Sprintf("days_to_activation >= %d", b.min)
		} else {
			predicates[i] = fmt.Sprintf("days_to_activation BETWEEN %d AND %d", b.min, b.max)
		}
	}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS activated,
			%s
		FROM %s
		WHERE is_activated AND %s`, countFilters(predicates, "bucket"), UserActivations.Name, where)

	counts := make([]int64, len(timeToActivationBuckets))
	var activated int64
	dest := []interface{}{&activated}
	for i := range counts {
		dest = append(dest, &counts[i])
	}
	if err := db.readOne(ctx, "time_to_activation", UserActivations.Name, query, args, dest...); err != nil {
		return nil, err
	}
	if activated == 0 {
		return nil, &EmptyResultError{Op: "time_to_activation"}
	}

	out := make([]TimeBucket, len(timeToActivationBuckets))
	for i, b := range timeToActivationBuckets {
		out[i] = TimeBucket{Label: b.label, Users: counts[i], Share: analytics.NewRate(counts[i], activated)}
	}
	return out, nil
}
