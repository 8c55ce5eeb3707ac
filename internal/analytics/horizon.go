// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unit is the time unit of a retention horizon.
type Unit int

const (
	UnitDay Unit = iota
	UnitMonth
)

// Horizon is an elapsed-time bucket such as D7 or M3.
type Horizon struct {
	Unit Unit
	N    int
}

// Supported day horizons.
var (
	D7  = Horizon{Unit: UnitDay, N: 7}
	D30 = Horizon{Unit: UnitDay, N: 30}
	D60 = Horizon{Unit: UnitDay, N: 60}
	D90 = Horizon{Unit: UnitDay, N: 90}
)

// DayHorizons lists the supported day horizons in order.
var DayHorizons = []Horizon{D7, D30, D60, D90}

// MonthHorizons lists M1..M12 in order.
var MonthHorizons = func() []Horizon {
	hs := make([]Horizon, 12)
	for i := range hs {
		hs[i] = Horizon{Unit: UnitMonth, N: i + 1}
	}
	return hs
}()

// ParseHorizon parses D7, D30, D60, D90 or M1..M12 (case-insensitive).
func ParseHorizon(s string) (Horizon, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Horizon{}, fmt.Errorf("invalid horizon %q", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return Horizon{}, fmt.Errorf("invalid horizon %q", s)
	}
	var h Horizon
	switch s[0] {
	case 'D':
		h = Horizon{Unit: UnitDay, N: n}
	case 'M':
		h = Horizon{Unit: UnitMonth, N: n}
	default:
		return Horizon{}, fmt.Errorf("invalid horizon %q", s)
	}
	if !h.Valid() {
		return Horizon{}, fmt.Errorf("unsupported horizon %q: use D7, D30, D60, D90 or M1..M12", s)
	}
	return h, nil
}

// ParseHorizons parses a list of horizons, preserving order.
func ParseHorizons(values []string) ([]Horizon, error) {
	out := make([]Horizon, 0, len(values))
	for _, v := range values {
		h, err := ParseHorizon(v)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// Valid reports whether h is one of the supported horizons.
func (h Horizon) Valid() bool {
	switch h.Unit {
	case UnitDay:
		return h.N == 7 || h.N == 30 || h.N == 60 || h.N == 90
	case UnitMonth:
		return h.N >= 1 && h.N <= 12
	default:
		return false
	}
}

// SameUnit reports whether every horizon in hs has the same unit.
func SameUnit(hs []Horizon) bool {
	for _, h := range hs {
		if h.Unit != hs[0].Unit {
			return false
		}
	}
	return true
}

func (h Horizon) String() string {
	if h.Unit == UnitMonth {
		return "M" + strconv.Itoa(h.N)
	}
	return "D" + strconv.Itoa(h.N)
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	if u == UnitMonth {
		return []byte("month"), nil
	}
	return []byte("day"), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(b []byte) error {
	switch string(b) {
	case "day":
		*u = UnitDay
	case "month":
		*u = UnitMonth
	default:
		return fmt.Errorf("invalid horizon unit %q", b)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (h Horizon) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Horizon) UnmarshalText(b []byte) error {
	parsed, err := ParseHorizon(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// AddTo returns t moved forward by the horizon. Month steps clamp to the
// last day of the target month (Jan 31 + M1 = Feb 28), which is how the
// warehouse adds a month interval to a date.
func (h Horizon) AddTo(t time.Time) time.Time {
	if h.Unit == UnitMonth {
		return addMonths(t, h.N)
	}
	return t.AddDate(0, 0, h.N)
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// IsMature reports whether now - periodEnd >= h.
func IsMature(now, periodEnd time.Time, h Horizon) bool {
	return !h.AddTo(periodEnd).After(now)
}

// Granularity is the width of a cohort period.
type Granularity string

const (
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity accepts week or month.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Week, Month:
		return g, nil
	default:
		return "", fmt.Errorf("invalid granularity %q: use week or month", s)
	}
}

// Truncate returns the start of the period containing t (UTC midnight;
// weeks start on Monday).
func (g Granularity) Truncate(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if g == Month {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Next returns the start of the period after the one starting at start.
func (g Granularity) Next(start time.Time) time.Time {
	if g == Month {
		return start.AddDate(0, 1, 0)
	}
	return start.AddDate(0, 0, 7)
}

// End returns the last day of the period starting at start.
func (g Granularity) End(start time.Time) time.Time {
	return g.Next(start).AddDate(0, 0, -1)
}

// Label formats a period start for display: 2026-03-02 for weeks, 2026-03 for months.
func (g Granularity) Label(start time.Time) string {
	if g == Month {
		return start.Format("2006-01")
	}
	return start.Format("2006-01-02")
}
