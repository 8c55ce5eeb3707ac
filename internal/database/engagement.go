// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/northstar/internal/analytics"
)

// ActiveUsers is DAU/WAU/MAU as of a day. Windows are trailing and include
// the day itself: 1, 7 and 30 days.
type ActiveUsers struct {
	AsOf time.Time `json:"as_of"`
	DAU  int64     `json:"dau"`
	WAU  int64     `json:"wau"`
	MAU  int64     `json:"mau"`
}

// ActivePlanners is WAP/MAP: distinct users with a genuine planning session.
type ActivePlanners struct {
	AsOf time.Time `json:"as_of"`
	WAP  int64     `json:"wap"`
	MAP  int64     `json:"map"`
}

// EngagementSummary combines the active user and planner counts.
type EngagementSummary struct {
	Users    ActiveUsers    `json:"users"`
	Planners ActivePlanners `json:"planners"`
	// Stickiness is DAU/MAU, undefined when MAU is 0.
	Stickiness analytics.Rate `json:"stickiness"`
	// PlannerShare is MAP/MAU.
	PlannerShare analytics.Rate `json:"planner_share"`
}

// Engagement computes active users and planners as of today in one scan.
func (db *DB) Engagement(ctx context.Context, f Filter) (EngagementSummary, error) {
	today := db.today()
	window := Days(today.AddDate(0, 0, -29), today)

	where, args, err := f.WithRange(window).Where(SessionOutcomes, "")
	if err != nil {
		return EngagementSummary{}, err
	}

	day := today.Format(time.DateOnly)
	week := today.AddDate(0, 0, -6).Format(time.DateOnly)

	query := fmt.Sprintf(`
		SELECT
			COUNT(DISTINCT user_id) FILTER (WHERE session_date = CAST(? AS DATE)) AS dau,
			COUNT(DISTINCT user_id) FILTER (WHERE session_date >= CAST(? AS DATE)) AS wau,
			COUNT(DISTINCT user_id) AS mau,
			COUNT(DISTINCT user_id) FILTER (WHERE is_genuine_planning_attempt AND session_date >= CAST(? AS DATE)) AS wap_count,
			COUNT(DISTINCT user_id) FILTER (WHERE is_genuine_planning_attempt) AS map_count
		FROM %s
		WHERE %s`, SessionOutcomes.Name, where)

	allArgs := append([]interface{}{day, week, week}, args...)

	s := EngagementSummary{
		Users:    ActiveUsers{AsOf: today},
		Planners: ActivePlanners{AsOf: today},
	}
	if err := db.readOne(ctx, "engagement", SessionOutcomes.Name, query, allArgs,
		&s.Users.DAU, &s.Users.WAU, &s.Users.MAU, &s.Planners.WAP, &s.Planners.MAP); err != nil {
		return EngagementSummary{}, err
	}
	if s.Users.MAU == 0 {
		return EngagementSummary{}, &EmptyResultError{Op: "engagement"}
	}

	s.Stickiness = analytics.NewRate(s.Users.DAU, s.Users.MAU)
	s.PlannerShare = analytics.NewRate(s.Planners.MAP, s.Users.MAU)
	return s, nil
}

// ActiveUsers returns DAU/WAU/MAU as of today.
func (db *DB) ActiveUsers(ctx context.Context, f Filter) (ActiveUsers, error) {
	s, err := db.Engagement(ctx, f)
	return s.Users, err
}

// ActivePlanners returns WAP/MAP as of today.
func (db *DB) ActivePlanners(ctx context.Context, f Filter) (ActivePlanners, error) {
	s, err := db.Engagement(ctx, f)
	return s.Planners, err
}

// DailyActive is one day of the active-user series.
type DailyActive struct {
	Day      time.Time      `json:"day"`
	Users    int64          `json:"users"`
	Planners int64          `json:"planners"`
	Sessions int64          `json:"sessions"`
	SaveRate analytics.Rate `json:"save_rate"`
}

// DailyActiveSeries returns one point per day with activity over the last
// days days (ending today), oldest first.
func (db *DB) DailyActiveSeries(ctx context.Context, f Filter, days int) ([]DailyActive, error) {
	if days < 1 {
		return nil, invalidRequest("daily_active", "days must be at least 1")
	}
	today := db.today()
	where, args, err := f.WithRange(Days(today.AddDate(0, 0, -(days-1)), today)).Where(SessionOutcomes, "")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			session_date,
			COUNT(DISTINCT user_id) AS users,
			COUNT(DISTINCT user_id) FILTER (WHERE is_genuine_planning_attempt) AS planners,
			COUNT(*) AS sessions,
			COUNT(*) FILTER (WHERE has_save) AS saves
		FROM %s
		WHERE %s
		GROUP BY session_date
		ORDER BY session_date`, SessionOutcomes.Name, where)

	points, err := queryAndScan(ctx, db, "daily_active", SessionOutcomes.Name, query, args, func(rows *sql.Rows) (DailyActive, error) {
		var p DailyActive
		var saves int64
		if err := rows.Scan(&p.Day, &p.Users, &p.Planners, &p.Sessions, &saves); err != nil {
			return p, err
		}
		p.SaveRate = analytics.NewRate(saves, p.Sessions)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, &EmptyResultError{Op: "daily_active"}
	}
	return points, nil
}
