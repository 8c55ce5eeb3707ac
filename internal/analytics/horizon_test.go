// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package analytics

import (
	"testing"
	"time"
)

func TestParseHorizon(t *testing.T) {
	t.Parallel()

	valid := map[string]Horizon{
		"D7": D7, "d30": D30, " D60 ": D60, "D90": D90,
		"M1": {Unit: UnitMonth, N: 1}, "m12": {Unit: UnitMonth, N: 12},
	}
	for in, want := range valid {
		got, err := ParseHorizon(in)
		if err != nil || got != want {
			t.Errorf("ParseHorizon(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	for _, in := range []string{"", "D", "D14", "M0", "M13", "W1", "Dx"} {
		if _, err := ParseHorizon(in); err == nil {
			t.Errorf("ParseHorizon(%q) succeeded, want error", in)
		}
	}
}

func TestIsMature(t *testing.T) {
	t.Parallel()

	end := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		now  time.Time
		h    Horizon
		want bool
	}{
		{"exactly seven days", end.AddDate(0, 0, 7), D7, true},
		{"one second short", end.AddDate(0, 0, 7).Add(-time.Second), D7, false},
		{"three days", end.AddDate(0, 0, 3), D7, false},
		{"one month", end.AddDate(0, 1, 0), Horizon{Unit: UnitMonth, N: 1}, true},
		{"thirty days is not two months", end.AddDate(0, 0, 30), Horizon{Unit: UnitMonth, N: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMature(tt.now, end, tt.h); got != tt.want {
				t.Errorf("IsMature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddToClampsMonthEnd(t *testing.T) {
	t.Parallel()

	m1 := Horizon{Unit: UnitMonth, N: 1}
	tests := []struct {
		from time.Time
		h    Horizon
		want time.Time
	}{
		{time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), m1, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2028, 1, 31, 0, 0, 0, 0, time.UTC), m1, time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), m1, time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), Horizon{Unit: UnitMonth, N: 6}, time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC), m1, time.Date(2026, 2, 15, 9, 30, 0, 0, time.UTC)},
		{time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), D7, time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := tt.h.AddTo(tt.from); !got.Equal(tt.want) {
			t.Errorf("%s.AddTo(%s) = %s, want %s", tt.h, tt.from.Format(time.DateOnly), got.Format(time.DateOnly), tt.want.Format(time.DateOnly))
		}
	}

	// A January monthly cohort is fully mature at M1 on Feb 28, when its
	// last member is.
	if !IsMature(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), m1) {
		t.Error("January cohort not mature at M1 on 2026-02-28")
	}
}

func TestSameUnit(t *testing.T) {
	t.Parallel()

	if !SameUnit(DayHorizons) || !SameUnit(MonthHorizons) || !SameUnit(nil) {
		t.Error("single-unit lists reported as mixed")
	}
	if SameUnit([]Horizon{D7, {Unit: UnitMonth, N: 1}}) {
		t.Error("D7 and M1 reported as one unit")
	}
}

func TestGranularity(t *testing.T) {
	t.Parallel()

	// Wednesday 2026-03-04
	ts := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

	start := Week.Truncate(ts)
	if want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("Week.Truncate = %v, want %v", start, want)
	}
	if end := Week.End(start); !end.Equal(time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Week.End = %v", end)
	}
	if Week.Label(start) != "2026-03-02" {
		t.Errorf("Week.Label = %s", Week.Label(start))
	}

	mstart := Month.Truncate(ts)
	if mend := Month.End(mstart); !mend.Equal(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Month.End = %v", mend)
	}
	if Month.Label(mstart) != "2026-03" {
		t.Errorf("Month.Label = %s", Month.Label(mstart))
	}

	// Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC)
	if got := Week.Truncate(sunday); !got.Equal(start) {
		t.Errorf("Week.Truncate(Sunday) = %v, want %v", got, start)
	}

	if _, err := ParseGranularity("day"); err == nil {
		t.Error("ParseGranularity(day) succeeded, want error")
	}
}
