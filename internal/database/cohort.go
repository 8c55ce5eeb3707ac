// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/northstar/internal/analytics"
	"github.com/tomtom215/northstar/internal/logging"
	"github.com/tomtom215/northstar/internal/metrics"
)

// Anchor is the event that defines cohort membership.
type Anchor string

const (
	AnchorSignup     Anchor = "signup"
	AnchorActivation Anchor = "activation"
)

// ParseAnchor accepts signup or activation.
func ParseAnchor(s string) (Anchor, error) {
	switch a := Anchor(strings.ToLower(strings.TrimSpace(s))); a {
	case AnchorSignup, AnchorActivation:
		return a, nil
	default:
		return "", invalidRequest("anchor", "invalid anchor %q: use signup or activation", s)
	}
}

func (a Anchor) column() string {
	if a == AnchorActivation {
		return "activation_date"
	}
	return "signup_date"
}

// QualifyingEvent is the session predicate that counts as re-engagement.
// It is always named explicitly per retention computation.
type QualifyingEvent string

const (
	EventAnySession      QualifyingEvent = "any_session"
	EventSaveOrShare     QualifyingEvent = "save_or_share"
	EventGenuinePlanning QualifyingEvent = "genuine_planning"
)

// ParseQualifyingEvent accepts any_session, save_or_share or genuine_planning.
func ParseQualifyingEvent(s string) (QualifyingEvent, error) {
	switch e := QualifyingEvent(strings.ToLower(strings.TrimSpace(s))); e {
	case EventAnySession, EventSaveOrShare, EventGenuinePlanning:
		return e, nil
	default:
		return "", invalidRequest("event", "invalid qualifying event %q: use any_session, save_or_share or genuine_planning", s)
	}
}

func (e QualifyingEvent) predicate() string {
	switch e {
	case EventSaveOrShare:
		return "(s.has_save OR s.has_share)"
	case EventGenuinePlanning:
		return "s.is_genuine_planning_attempt"
	default:
		return "TRUE"
	}
}

// CohortQuery describes a retention computation.
type CohortQuery struct {
	Anchor      Anchor
	Granularity analytics.Granularity
	Event       QualifyingEvent
	Horizons    []analytics.Horizon
	// Periods is how many of the most recent cohort periods to return.
	Periods int
	// MinSample is the smallest mature population that yields a rate.
	MinSample int
	Filter    Filter
}

func (q CohortQuery) validate() error {
	if _, err := ParseAnchor(string(q.Anchor)); err != nil {
		return err
	}
	if _, err := analytics.ParseGranularity(string(q.Granularity)); err != nil {
		return invalidRequest("granularity", "%v", err)
	}
	if _, err := ParseQualifyingEvent(string(q.Event)); err != nil {
		return err
	}
	if len(q.Horizons) == 0 {
		return invalidRequest("horizons", "at least one horizon is required")
	}
	for _, h := range q.Horizons {
		if !h.Valid() {
			return invalidRequest("horizons", "unsupported horizon %s", h)
		}
	}
	if q.Periods < 1 {
		return invalidRequest("periods", "periods must be at least 1")
	}
	if q.MinSample < 1 {
		return invalidRequest("min_sample", "minimum sample must be at least 1")
	}
	return nil
}

// CohortRetention computes one row per cohort period, newest first, with a
// cell per horizon.
//
// Members are users whose anchor date falls in the period. A member is
// mature at H when anchor_date + H <= now, and retained when some
// qualifying session falls in (anchor_date, anchor_date + H]. Immature
// members are left out of both counts. FullyMature marks cells whose whole
// cohort period has aged past H.
//
// The filter's date range applies to the anchor date. Bound violations are
// returned as diagnostics next to the rows, which stay usable.
func (db *DB) CohortRetention(ctx context.Context, q CohortQuery) ([]analytics.CohortRow, []analytics.Diagnostic, error) {
	if err := q.validate(); err != nil {
		return nil, nil, err
	}

	members := UserActivations
	members.DateColumn = q.Anchor.column()
	where, args, err := q.Filter.Where(members, "u")
	if err != nil {
		return nil, nil, err
	}

	now := db.now()
	anchorCol := "u." + q.Anchor.column()

	var cols []string
	var colArgs []interface{}
	for i, h := range q.Horizons {
		interval := horizonInterval(h)
		cols = append(cols,
			fmt.Sprintf("COUNT(*) FILTER (WHERE m.anchor_date + %s <= CAST(? AS TIMESTAMP)) AS mature_%d", interval, i),
			fmt.Sprintf("COUNT(*) FILTER (WHERE m.anchor_date + %s <= CAST(? AS TIMESTAMP) AND r.first_return <= m.anchor_date + %s) AS retained_%d", interval, interval, i),
		)
		colArgs = append(colArgs, now, now)
	}

	query := fmt.Sprintf(`
		WITH members AS (
			SELECT u.user_id, %[1]s AS anchor_date
			FROM %[2]s u
			WHERE %[1]s IS NOT NULL AND %[3]s
		),
		returns AS (
			SELECT m.user_id, MIN(s.session_date) AS first_return
			FROM members m
			JOIN %[4]s s ON s.user_id = m.user_id AND s.session_date > m.anchor_date
			WHERE %[5]s
			GROUP BY m.user_id
		)
		SELECT
			CAST(date_trunc('%[6]s', m.anchor_date) AS DATE) AS period_start,
			COUNT(*) AS cohort_size,
			%[7]s
		FROM members m
		LEFT JOIN returns r ON r.user_id = m.user_id
		GROUP BY 1
		ORDER BY 1 DESC
		LIMIT ?`,
		anchorCol, UserActivations.Name, where, SessionOutcomes.Name, q.Event.predicate(),
		q.Granularity, strings.Join(cols, ",\n\t\t\t"))

	allArgs := make([]interface{}, 0, len(args)+len(colArgs)+1)
	allArgs = append(allArgs, args...)
	allArgs = append(allArgs, colArgs...)
	allArgs = append(allArgs, q.Periods)

	// Placeholders bind in textual order: CTE filter, SELECT list, LIMIT.
	type rawRow struct {
		start    time.Time
		size     int64
		mature   []int64
		retained []int64
	}
	raws, err := queryAndScan(ctx, db, "cohort_retention", UserActivations.Name, query, allArgs, func(rows *sql.Rows) (rawRow, error) {
		r := rawRow{mature: make([]int64, len(q.Horizons)), retained: make([]int64, len(q.Horizons))}
		dest := []interface{}{&r.start, &r.size}
		for i := range q.Horizons {
			dest = append(dest, &r.mature[i], &r.retained[i])
		}
		return r, rows.Scan(dest...)
	})
	if err != nil {
		return nil, nil, err
	}
	if len(raws) == 0 {
		return nil, nil, &EmptyResultError{Op: "cohort_retention"}
	}

	var diagnostics []analytics.Diagnostic
	out := make([]analytics.CohortRow, len(raws))
	for i, raw := range raws {
		start := q.Granularity.Truncate(raw.start)
		row := analytics.CohortRow{
			Cohort:      q.Granularity.Label(start),
			PeriodStart: start,
			PeriodEnd:   q.Granularity.End(start),
			Size:        raw.size,
			Cells:       make([]analytics.Retention, len(q.Horizons)),
		}
		for j, h := range q.Horizons {
			cell, diag := analytics.ComputeRetention(analytics.CohortCounts{
				Cohort:   row.Cohort,
				Size:     raw.size,
				Mature:   raw.mature[j],
				Retained: raw.retained[j],
			}, h, q.MinSample)
			cell.FullyMature = analytics.IsMature(now, row.PeriodEnd, h)
			row.Cells[j] = cell

			var bv *analytics.RetentionBoundViolation
			if errors.As(diag, &bv) {
				metrics.RecordDiagnostic(bv.Kind(), "cohort_retention")
				logging.Ctx(ctx).Warn().Err(bv).Msg("Retention counts violate bounds")
				diagnostics = append(diagnostics, bv)
			}
		}
		out[i] = row
	}

	return out, diagnostics, nil
}

func horizonInterval(h analytics.Horizon) string {
	if h.Unit == analytics.UnitMonth {
		return sqlInterval(h.N, "months")
	}
	return sqlInterval(h.N, "days")
}
