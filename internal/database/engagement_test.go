// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"context"
	"errors"
	"testing"
)

func engagementFixture(t *testing.T, db *DB) {
	t.Helper()
	mustInsert(t, db, nil, []sessionRow{
		session("s1", "u1", "2026-03-12", saves(1)),
		session("s2", "u1", "2026-03-11", browsed),
		session("s3", "u2", "2026-03-10", browsed),
		session("s4", "u3", "2026-03-01", saves(1)),
		session("s5", "u4", "2026-02-20", browsed, sessionType("prompt")),
		session("s6", "u5", "2026-01-01", saves(2)),
	})
}

func TestEngagement(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	engagementFixture(t, db)

	s, err := db.Engagement(ctx, Filter{})
	checkNoError(t, err)

	if s.Users.DAU != 1 || s.Users.WAU != 2 || s.Users.MAU != 4 {
		t.Errorf("users = %+v, want 1/2/4", s.Users)
	}
	if s.Planners.WAP != 1 || s.Planners.MAP != 2 {
		t.Errorf("planners = %+v, want 1/2", s.Planners)
	}
	if !s.Users.AsOf.Equal(day("2026-03-12")) {
		t.Errorf("AsOf = %v", s.Users.AsOf)
	}
	checkRate(t, "stickiness", s.Stickiness, 0.25)
	checkRate(t, "planner share", s.PlannerShare, 0.5)

	t.Run("filtered", func(t *testing.T) {
		au, err := db.ActiveUsers(ctx, Filter{}.With(DimSessionType, Eq("prompt")))
		checkNoError(t, err)
		if au.MAU != 1 || au.DAU != 0 {
			t.Errorf("prompt users = %+v", au)
		}
	})

	t.Run("nobody active", func(t *testing.T) {
		_, err := db.ActivePlanners(ctx, Filter{}.With(DimAppVersion, Eq("1.0.0")))
		var ee *EmptyResultError
		if !errors.As(err, &ee) {
			t.Errorf("ActivePlanners = %v, want *EmptyResultError", err)
		}
	})
}

func TestDailyActiveSeries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	engagementFixture(t, db)

	points, err := db.DailyActiveSeries(ctx, Filter{}, 3)
	checkNoError(t, err)
	if len(points) != 3 {
		t.Fatalf("len(points) = %d, want 3", len(points))
	}
	if !points[0].Day.Equal(day("2026-03-10")) || !points[2].Day.Equal(day("2026-03-12")) {
		t.Errorf("days = %v..%v", points[0].Day, points[2].Day)
	}
	checkRate(t, "03-10 save rate", points[0].SaveRate, 0)
	checkRate(t, "03-12 save rate", points[2].SaveRate, 1)
	if points[2].Planners != 1 {
		t.Errorf("03-12 planners = %d", points[2].Planners)
	}

	_, err = db.DailyActiveSeries(ctx, Filter{}, 0)
	var qe *QueryError
	checkErrorAs(t, err, &qe)
}
