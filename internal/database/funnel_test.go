// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/northstar/internal/analytics"
	"github.com/tomtom215/northstar/internal/metrics"
)

func TestLookupFunnel(t *testing.T) {
	t.Parallel()

	for _, name := range FunnelNames() {
		def, err := LookupFunnel(name)
		checkNoError(t, err)
		if len(def.Stages) < 2 {
			t.Errorf("funnel %q has %d stages", name, len(def.Stages))
		}
		if def.Stages[0].Predicate != "TRUE" {
			t.Errorf("funnel %q must start from the whole population", name)
		}
	}

	_, err := LookupFunnel("checkout")
	var qe *QueryError
	checkErrorAs(t, err, &qe)
}

func TestSessionFunnel(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	northStarFixture(t, db)

	def, err := LookupFunnel("session")
	checkNoError(t, err)

	funnel, err := db.Funnel(ctx, def, Filter{})
	checkNoError(t, err)

	want := []int64{7, 5, 3, 3, 1, 1, 0}
	if len(funnel.Stages) != len(want) {
		t.Fatalf("len(stages) = %d, want %d", len(funnel.Stages), len(want))
	}
	for i, w := range want {
		if funnel.Stages[i].Count != w {
			t.Errorf("stage %q = %d, want %d", funnel.Stages[i].Name, funnel.Stages[i].Count, w)
		}
	}
	if !funnel.Monotonic() {
		t.Errorf("unexpected violations: %v", funnel.Err())
	}

	checkRate(t, "initial pct_of_previous", funnel.Stages[0].PctOfPrevious, 1)
	checkUndefined(t, "initial drop_off", funnel.Stages[0].DropOff)
	checkRate(t, "browsed drop_off", funnel.Stages[1].DropOff, 2.0/7.0)
	checkRate(t, "saved pct_of_initial", funnel.Stages[3].PctOfInitial, 3.0/7.0)
	checkRate(t, "converted pct_of_previous", funnel.Stages[6].PctOfPrevious, 0)
}

func TestFunnelReportsMonotonicityViolation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Strict PSR without broad PSR is an upstream data defect.
	mustInsert(t, db, nil, []sessionRow{
		session("v1", "u1", "2026-03-10", saves(1), shared, func(s *sessionRow) {
			s.PostShare, s.PSRBroad, s.PSRStrict = true, false, true
		}),
		session("v2", "u2", "2026-03-10", browsed),
	})

	def, err := LookupFunnel("plan_survival")
	checkNoError(t, err)

	counter := metrics.DiagnosticsTotal.WithLabelValues(analytics.KindFunnelMonotonicity, "plan_survival")
	before := testutil.ToFloat64(counter)

	funnel, err := db.Funnel(ctx, def, Filter{})
	checkNoError(t, err)

	if len(funnel.Violations) != 1 {
		t.Fatalf("violations = %v, want exactly one", funnel.Violations)
	}
	v := funnel.Violations[0]
	if v.Stage != "Save+Share Strict" || v.PreviousStage != "Save+Share Broad" || v.Count != 1 || v.PreviousCount != 0 {
		t.Errorf("violation = %+v", v)
	}

	// Counts are reported as measured.
	if funnel.Stages[4].Count != 1 {
		t.Errorf("Strict count = %d, want 1 (unclamped)", funnel.Stages[4].Count)
	}
	checkUndefined(t, "strict pct_of_previous", funnel.Stages[4].PctOfPrevious)

	var fmv *analytics.FunnelMonotonicityViolation
	if !errors.As(funnel.Err(), &fmv) {
		t.Errorf("Err() = %v, want *FunnelMonotonicityViolation", funnel.Err())
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("diagnostic counter increased by %v, want 1", got)
	}
}

func TestFunnelStagesNested(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Shares outside the shortlist and broad PSR without a save are valid
	// sessions and must not push a later stage above an earlier one.
	mustInsert(t, db, nil, []sessionRow{
		session("n1", "u1", "2026-03-10", saves(0), shared, func(s *sessionRow) {
			s.PostShare, s.PSRBroad = true, true
		}),
		session("n2", "u2", "2026-03-10", saves(1), shared),
		session("n3", "u3", "2026-03-10", saves(3), shared),
	})

	tests := []struct {
		funnel string
		want   []int64
	}{
		{"session", []int64{3, 3, 3, 2, 1, 1, 0}},
		{"plan_survival", []int64{3, 3, 2, 2, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.funnel, func(t *testing.T) {
			def, err := LookupFunnel(tt.funnel)
			checkNoError(t, err)
			funnel, err := db.Funnel(ctx, def, Filter{})
			checkNoError(t, err)
			if len(funnel.Violations) != 0 {
				t.Errorf("violations = %v, want none", funnel.Violations)
			}
			for i, w := range tt.want {
				if funnel.Stages[i].Count != w {
					t.Errorf("stage %q = %d, want %d", funnel.Stages[i].Name, funnel.Stages[i].Count, w)
				}
			}
		})
	}

	t.Run("each stage implies the previous", func(t *testing.T) {
		for _, name := range FunnelNames() {
			def, err := LookupFunnel(name)
			checkNoError(t, err)
			for i := 2; i < len(def.Stages); i++ {
				prev := def.Stages[i-1].Predicate
				if name == "plan_survival" && def.Stages[i].Name == "Save+Share Strict" {
					prev = def.Stages[i-2].Predicate
				}
				if !strings.HasPrefix(def.Stages[i].Predicate, prev+" AND ") {
					t.Errorf("%s stage %q = %q does not extend %q", name, def.Stages[i].Name, def.Stages[i].Predicate, prev)
				}
			}
		}
	})
}

func TestActivationFunnel(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	never := user("u3", "2026-03-01", "")
	never.HadFirstSession = false
	mustInsert(t, db, []userRow{
		user("u1", "2026-03-01", "2026-03-02"),
		user("u2", "2026-02-01", "2026-02-20"),
		never,
	}, nil)

	def, err := LookupFunnel("activation")
	checkNoError(t, err)

	funnel, err := db.Funnel(ctx, def, Filter{})
	checkNoError(t, err)

	want := []int64{3, 2, 2, 2, 1}
	for i, w := range want {
		if funnel.Stages[i].Count != w {
			t.Errorf("stage %q = %d, want %d", funnel.Stages[i].Name, funnel.Stages[i].Count, w)
		}
	}

	t.Run("session_type is not a user dimension", func(t *testing.T) {
		_, err := db.Funnel(ctx, def, Filter{}.With(DimSessionType, Eq("prompt")))
		var qe *QueryError
		checkErrorAs(t, err, &qe)
		if !qe.Invalid {
			t.Error("want invalid request")
		}
	})

	t.Run("empty population", func(t *testing.T) {
		_, err := db.Funnel(ctx, def, Filter{}.With(DimAppVersion, Eq("0.0.1")))
		var ee *EmptyResultError
		if !errors.As(err, &ee) {
			t.Errorf("Funnel = %v, want *EmptyResultError", err)
		}
	})
}

func TestCompareFunnelPeriods(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	northStarFixture(t, db)

	def, err := LookupFunnel("session")
	checkNoError(t, err)

	cmp, err := db.CompareFunnelPeriods(ctx, def, Filter{}, PeriodWeek)
	checkNoError(t, err)

	if len(cmp.Changes) != len(def.Stages) {
		t.Fatalf("len(changes) = %d", len(cmp.Changes))
	}
	initiated := cmp.Changes[0]
	if initiated.Current != 4 || initiated.Prior != 2 || initiated.AbsoluteChange != 2 {
		t.Errorf("initiated = %+v", initiated)
	}
	checkRate(t, "initiated change", initiated.PercentChange, 1)

	saved := cmp.Changes[3]
	if saved.Current != 2 || saved.Prior != 0 {
		t.Errorf("saved = %+v", saved)
	}
	checkUndefined(t, "saved change from zero", saved.PercentChange)
	checkRate(t, "saved conversion delta", saved.ConversionDelta, 0.5)

	_, err = db.CompareFunnelPeriods(ctx, def, Filter{}.With(DimDataSource, Eq("all")), PeriodWeek)
	var ee *EmptyResultError
	if !errors.As(err, &ee) {
		t.Errorf("CompareFunnelPeriods = %v, want *EmptyResultError", err)
	}
}
