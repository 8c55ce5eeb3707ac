// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/northstar/internal/analytics"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func checkRate(t *testing.T, name string, got analytics.Rate, want float64) {
	t.Helper()
	v, ok := got.Float()
	if !ok {
		t.Errorf("%s = N/A, want %v", name, want)
		return
	}
	if !approx(v, want) {
		t.Errorf("%s = %v, want %v", name, v, want)
	}
}

func checkUndefined(t *testing.T, name string, got analytics.Rate) {
	t.Helper()
	if got.Defined {
		t.Errorf("%s = %v, want N/A", name, got.Value)
	}
}

// northStarFixture puts four sessions in the current week (2026-03-06..12)
// and two in the previous one (2026-02-27..03-05).
func northStarFixture(t *testing.T, db *DB) {
	t.Helper()
	mustInsert(t, db, nil, []sessionRow{
		session("c1", "u1", "2026-03-12", saves(3), shared),
		session("c2", "u2", "2026-03-10", saves(1)),
		session("c3", "u3", "2026-03-08", browsed),
		session("c4", "u4", "2026-03-06"),
		session("p1", "u1", "2026-03-05", browsed),
		session("p2", "u5", "2026-02-27", source("inferred")),
		session("old", "u6", "2026-01-15", saves(1)),
	})
}

func TestLookupMetric(t *testing.T) {
	t.Parallel()

	m, err := LookupMetric(" SSR ")
	checkNoError(t, err)
	if m.Name != "ssr" {
		t.Errorf("LookupMetric = %q", m.Name)
	}

	_, err = LookupMetric("nope")
	var qe *QueryError
	checkErrorAs(t, err, &qe)
	if !qe.Invalid {
		t.Error("unknown metric must be an invalid request")
	}

	for _, name := range NorthStarMetrics {
		if _, err := LookupMetric(name); err != nil {
			t.Errorf("North Star metric %q is not registered", name)
		}
	}
}

func TestAggregateRate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	northStarFixture(t, db)

	t.Run("ssr over everything", func(t *testing.T) {
		res, err := db.AggregateRate(ctx, metricRegistry["ssr"], Filter{})
		checkNoError(t, err)
		if res.Numerator != 3 || res.Denominator != 7 {
			t.Errorf("ssr = %d/%d, want 3/7", res.Numerator, res.Denominator)
		}
		checkRate(t, "ssr", res.Rate, 3.0/7.0)
	})

	t.Run("idempotent", func(t *testing.T) {
		first, err := db.AggregateRate(ctx, metricRegistry["scr3"], Filter{})
		checkNoError(t, err)
		second, err := db.AggregateRate(ctx, metricRegistry["scr3"], Filter{})
		checkNoError(t, err)
		if first != second {
			t.Errorf("repeat aggregate differs: %+v vs %+v", first, second)
		}
	})

	t.Run("zero denominator is undefined", func(t *testing.T) {
		f := Filter{}.With(DimDataSource, Eq("inferred"))
		res, err := db.AggregateRate(ctx, metricRegistry["planning_save_rate"], f)
		checkNoError(t, err)
		if res.Denominator != 0 {
			t.Fatalf("denominator = %d, want 0", res.Denominator)
		}
		checkUndefined(t, "planning_save_rate", res.Rate)
	})

	t.Run("empty population", func(t *testing.T) {
		f := Filter{}.With(DimSessionType, Eq("all"))
		_, err := db.AggregateRate(ctx, metricRegistry["ssr"], f)
		var ee *EmptyResultError
		if !errors.As(err, &ee) {
			t.Errorf("AggregateRate = %v, want *EmptyResultError", err)
		}
	})

	t.Run("unknown dimension value", func(t *testing.T) {
		for _, f := range []Filter{
			Filter{}.With(DimSessionType, Eq("no_such_type")),
			Filter{}.With(DimDataSource, Eq("native", "web")),
		} {
			_, err := db.AggregateRate(ctx, metricRegistry["ssr"], f)
			var qe *QueryError
			checkErrorAs(t, err, &qe)
			if !qe.Invalid {
				t.Errorf("%s: want invalid request, got %v", f, err)
			}
			var ee *EmptyResultError
			if errors.As(err, &ee) {
				t.Errorf("%s: reported as empty result", f)
			}
		}
	})

	t.Run("numerator within denominator", func(t *testing.T) {
		for _, name := range MetricNames() {
			res, err := db.AggregateRate(ctx, metricRegistry[name], Filter{})
			checkNoError(t, err)
			if res.Numerator < 0 || res.Numerator > res.Denominator {
				t.Errorf("%s = %d/%d", name, res.Numerator, res.Denominator)
			}
		}
	})
}

func TestRateSeries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	northStarFixture(t, db)

	series, err := db.RateSeries(ctx, metricRegistry["ssr"], Filter{}, BucketMonth)
	checkNoError(t, err)
	if len(series.Points) != 3 {
		t.Fatalf("len(points) = %d, want 3 (Jan, Feb, Mar)", len(series.Points))
	}
	if !series.Points[0].Period.Equal(day("2026-01-01")) {
		t.Errorf("first period = %v, want 2026-01-01", series.Points[0].Period)
	}
	checkRate(t, "jan", series.Points[0].Rate, 1)
	checkRate(t, "feb", series.Points[1].Rate, 0)
	checkRate(t, "mar", series.Points[2].Rate, 2.0/5.0)

	_, err = db.RateSeries(ctx, metricRegistry["ssr"], Filter{}, Bucket("hour"))
	var qe *QueryError
	checkErrorAs(t, err, &qe)
}

func TestPeriodWindows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		period             Period
		curStart, curEnd   string
		prevStart, prevEnd string
	}{
		{PeriodWeek, "2026-03-06", "2026-03-12", "2026-02-27", "2026-03-05"},
		{PeriodMonth, "2026-02-13", "2026-03-12", "2026-01-13", "2026-02-12"},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			cur, prev := tt.period.Windows(testNow)
			if !cur.Start.Equal(day(tt.curStart)) || !cur.End.Equal(day(tt.curEnd)) {
				t.Errorf("current = %v..%v", cur.Start, cur.End)
			}
			if !prev.Start.Equal(day(tt.prevStart)) || !prev.End.Equal(day(tt.prevEnd)) {
				t.Errorf("previous = %v..%v", prev.Start, prev.End)
			}
		})
	}
}

func TestNorthStarSummary(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	northStarFixture(t, db)

	t.Run("week over week", func(t *testing.T) {
		s, err := db.NorthStarSummary(ctx, Filter{}, PeriodWeek)
		checkNoError(t, err)
		if s.CurrentSessions != 4 || s.PriorSessions != 2 {
			t.Fatalf("sessions = %d/%d, want 4/2", s.CurrentSessions, s.PriorSessions)
		}
		if len(s.Metrics) != len(NorthStarMetrics) {
			t.Fatalf("len(metrics) = %d", len(s.Metrics))
		}
		ssr := s.Metrics[0]
		if ssr.Metric != "ssr" {
			t.Fatalf("first metric = %q", ssr.Metric)
		}
		checkRate(t, "current ssr", ssr.Current.Rate, 0.5)
		checkRate(t, "previous ssr", ssr.Previous.Rate, 0)
		checkRate(t, "ssr delta", ssr.Delta, 0.5)
	})

	t.Run("one empty window gives undefined deltas", func(t *testing.T) {
		s, err := db.NorthStarSummary(ctx, Filter{}.With(DimDataSource, Eq("inferred")), PeriodWeek)
		checkNoError(t, err)
		if s.CurrentSessions != 0 || s.PriorSessions != 1 {
			t.Fatalf("sessions = %d/%d, want 0/1", s.CurrentSessions, s.PriorSessions)
		}
		for _, m := range s.Metrics {
			checkUndefined(t, m.Metric+" current", m.Current.Rate)
			checkUndefined(t, m.Metric+" delta", m.Delta)
		}
	})

	t.Run("both windows empty", func(t *testing.T) {
		_, err := db.NorthStarSummary(ctx, Filter{}.With(DimAppVersion, Eq("9.9.9")), PeriodMonth)
		var ee *EmptyResultError
		if !errors.As(err, &ee) {
			t.Errorf("NorthStarSummary = %v, want *EmptyResultError", err)
		}
	})

	t.Run("invalid period", func(t *testing.T) {
		_, err := db.NorthStarSummary(ctx, Filter{}, Period("year"))
		var qe *QueryError
		checkErrorAs(t, err, &qe)
	})
}
