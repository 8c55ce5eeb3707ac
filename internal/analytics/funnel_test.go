// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package analytics

import (
	"errors"
	"testing"
)

func stages(counts ...int64) []StageCount {
	names := []string{"Initiated", "Browsed", "Engaged", "Saved", "Shortlisted", "Social", "Converted"}
	out := make([]StageCount, len(counts))
	for i, c := range counts {
		out[i] = StageCount{Name: names[i], Count: c}
	}
	return out
}

func TestBuildFunnel(t *testing.T) {
	t.Parallel()

	f := BuildFunnel("session", stages(1000, 800, 400, 100))

	if !f.Monotonic() {
		t.Fatalf("unexpected violations: %v", f.Violations)
	}
	want := []struct {
		initial, previous, drop Rate
	}{
		{RateOf(1), RateOf(1), Undefined()},
		{RateOf(0.8), RateOf(0.8), RateOf(0.2)},
		{RateOf(0.4), RateOf(0.5), RateOf(0.5)},
		{RateOf(0.1), RateOf(0.25), RateOf(0.75)},
	}
	for i, w := range want {
		s := f.Stages[i]
		if !s.PctOfInitial.Equal(w.initial) {
			t.Errorf("stage %d pct_of_initial = %v, want %v", i, s.PctOfInitial, w.initial)
		}
		if !s.PctOfPrevious.Equal(w.previous) {
			t.Errorf("stage %d pct_of_previous = %v, want %v", i, s.PctOfPrevious, w.previous)
		}
		if !s.DropOff.Equal(w.drop) {
			t.Errorf("stage %d drop_off = %v, want %v", i, s.DropOff, w.drop)
		}
	}
	if f.Err() != nil {
		t.Errorf("Err() = %v, want nil", f.Err())
	}
}

func TestBuildFunnelEmptyInitial(t *testing.T) {
	t.Parallel()

	f := BuildFunnel("session", stages(0, 0, 0))
	for i, s := range f.Stages {
		if s.PctOfInitial.Defined {
			t.Errorf("stage %d pct_of_initial defined with empty initial stage", i)
		}
		if i > 0 && (s.PctOfPrevious.Defined || s.DropOff.Defined) {
			t.Errorf("stage %d conversion defined with empty previous stage", i)
		}
	}
	if !f.Stages[0].PctOfPrevious.Equal(RateOf(1)) {
		t.Errorf("stage 0 pct_of_previous = %v, want 1", f.Stages[0].PctOfPrevious)
	}
	if !f.Monotonic() {
		t.Error("equal zero counts must not be a violation")
	}
}

func TestBuildFunnelMonotonicityViolation(t *testing.T) {
	t.Parallel()

	f := BuildFunnel("session", stages(1000, 1000, 1000, 1200))

	if f.Monotonic() {
		t.Fatal("increasing funnel reported as monotonic")
	}
	if len(f.Violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(f.Violations))
	}
	v := f.Violations[0]
	if v.Stage != "Saved" || v.PreviousStage != "Engaged" || v.Count != 1200 || v.PreviousCount != 1000 {
		t.Errorf("unexpected violation %+v", v)
	}
	// Counts are reported as measured.
	if f.Stages[3].Count != 1200 {
		t.Errorf("violating stage count = %d, want 1200", f.Stages[3].Count)
	}

	var target *FunnelMonotonicityViolation
	if !errors.As(f.Err(), &target) {
		t.Errorf("Err() = %v, want a *FunnelMonotonicityViolation", f.Err())
	}
	reports := Reports(f.Err())
	if len(reports) != 1 || reports[0].Kind != KindFunnelMonotonicity {
		t.Errorf("Reports() = %+v", reports)
	}
}

func TestBuildFunnelNoStages(t *testing.T) {
	t.Parallel()

	f := BuildFunnel("empty", nil)
	if len(f.Stages) != 0 || !f.Monotonic() {
		t.Errorf("BuildFunnel(nil) = %+v", f)
	}
}

func TestCompareFunnels(t *testing.T) {
	t.Parallel()

	current := BuildFunnel("session", stages(1200, 600, 0))
	prior := BuildFunnel("session", stages(1000, 600, 0))

	changes, err := CompareFunnels(current, prior)
	if err != nil {
		t.Fatalf("CompareFunnels: %v", err)
	}
	if changes[0].AbsoluteChange != 200 || !changes[0].PercentChange.Equal(RateOf(0.2)) {
		t.Errorf("stage 0 change = %+v", changes[0])
	}
	if changes[1].AbsoluteChange != 0 || !changes[1].PercentChange.Equal(RateOf(0)) {
		t.Errorf("stage 1 change = %+v", changes[1])
	}
	// 600/1200 - 600/1000 = -0.1
	if !changes[1].ConversionDelta.Equal(RateOf(-0.1)) {
		t.Errorf("stage 1 conversion delta = %v, want -0.1", changes[1].ConversionDelta)
	}
	if changes[2].PercentChange.Defined {
		t.Errorf("percent change with prior 0 = %v, want undefined", changes[2].PercentChange)
	}
}

func TestCompareFunnelsShapeMismatch(t *testing.T) {
	t.Parallel()

	a := BuildFunnel("session", stages(10, 5))
	b := BuildFunnel("session", stages(10, 5, 1))
	if _, err := CompareFunnels(a, b); !errors.Is(err, ErrFunnelShapeMismatch) {
		t.Errorf("CompareFunnels() error = %v, want ErrFunnelShapeMismatch", err)
	}

	c := BuildFunnel("other", []StageCount{{Name: "A", Count: 1}, {Name: "B", Count: 1}})
	if _, err := CompareFunnels(a, c); !errors.Is(err, ErrFunnelShapeMismatch) {
		t.Errorf("CompareFunnels() with renamed stages error = %v, want ErrFunnelShapeMismatch", err)
	}
}
