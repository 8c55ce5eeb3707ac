// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/northstar/internal/database/query"
)

// Dimension is a categorical column that filters can constrain.
type Dimension string

const (
	DimDataSource  Dimension = "data_source"
	DimSessionType Dimension = "session_type"
	DimAppVersion  Dimension = "app_version"
)

// Dimensions lists every filterable dimension in rendering order.
var Dimensions = []Dimension{DimDataSource, DimSessionType, DimAppVersion}

// dimensionDomains holds the closed value sets. app_version is open: new
// releases appear in the warehouse without a deploy here.
var dimensionDomains = map[Dimension][]string{
	DimDataSource:  {"all", "inferred", "native"},
	DimSessionType: {"all", "non_prompt", "prompt"},
}

// Domain returns the allowed values of d, or nil when d is open.
func (d Dimension) Domain() []string {
	return dimensionDomains[d]
}

// Allows reports whether v is in the domain of d.
func (d Dimension) Allows(v string) bool {
	domain, closed := dimensionDomains[d]
	if !closed {
		return true
	}
	for _, have := range domain {
		if have == v {
			return true
		}
	}
	return false
}

// Match constrains one dimension. The zero value is the wildcard: it matches
// every row and is a distinct state, so Eq("all") only ever matches the
// literal string "all".
type Match struct {
	constrained bool
	values      []string // sorted, unique
}

// Any returns the wildcard match.
func Any() Match { return Match{} }

// Eq matches rows whose dimension equals one of values. Eq() with no values
// matches nothing.
func Eq(values ...string) Match {
	return Match{constrained: true, values: normalizeValues(values)}
}

// IsAny reports whether m is the wildcard.
func (m Match) IsAny() bool { return !m.constrained }

// Values returns the allowed values of a constrained match (nil for Any).
func (m Match) Values() []string {
	if !m.constrained {
		return nil
	}
	out := make([]string, len(m.values))
	copy(out, m.values)
	return out
}

// Intersect returns the match satisfied by rows that satisfy both m and o.
func (m Match) Intersect(o Match) Match {
	switch {
	case !m.constrained:
		return o
	case !o.constrained:
		return m
	}
	allowed := make(map[string]struct{}, len(o.values))
	for _, v := range o.values {
		allowed[v] = struct{}{}
	}
	common := []string{}
	for _, v := range m.values {
		if _, ok := allowed[v]; ok {
			common = append(common, v)
		}
	}
	return Match{constrained: true, values: common}
}

// Equal reports whether two matches select the same rows.
func (m Match) Equal(o Match) bool {
	if m.constrained != o.constrained || len(m.values) != len(o.values) {
		return false
	}
	for i := range m.values {
		if m.values[i] != o.values[i] {
			return false
		}
	}
	return true
}

// MarshalJSON renders the wildcard as null and a constraint as a sorted array.
func (m Match) MarshalJSON() ([]byte, error) {
	if !m.constrained {
		return []byte("null"), nil
	}
	return json.Marshal(m.values)
}

func normalizeValues(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// DateRange is an inclusive range of calendar days. A zero bound is open.
type DateRange struct {
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
}

// Days returns the range [start, end] truncated to whole UTC days.
func Days(start, end time.Time) DateRange {
	return DateRange{Start: truncateDay(start), End: truncateDay(end)}
}

// Intersect narrows r to the days also in o.
func (r DateRange) Intersect(o DateRange) DateRange {
	out := r
	if !o.Start.IsZero() && (out.Start.IsZero() || o.Start.After(out.Start)) {
		out.Start = o.Start
	}
	if !o.End.IsZero() && (out.End.IsZero() || o.End.Before(out.End)) {
		out.End = o.End
	}
	return out
}

// IsOpen reports whether neither bound is set.
func (r DateRange) IsOpen() bool { return r.Start.IsZero() && r.End.IsZero() }

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Filter is a conjunction of per-dimension matches and a date range. The
// zero value matches everything.
type Filter struct {
	DataSource  Match     `json:"data_source"`
	SessionType Match     `json:"session_type"`
	AppVersion  Match     `json:"app_version"`
	Range       DateRange `json:"range"`
}

// Match returns the constraint on d.
func (f Filter) Match(d Dimension) Match {
	switch d {
	case DimDataSource:
		return f.DataSource
	case DimSessionType:
		return f.SessionType
	case DimAppVersion:
		return f.AppVersion
	default:
		return Any()
	}
}

// With returns a copy of f with d constrained by m.
func (f Filter) With(d Dimension, m Match) Filter {
	switch d {
	case DimDataSource:
		f.DataSource = m
	case DimSessionType:
		f.SessionType = m
	case DimAppVersion:
		f.AppVersion = m
	}
	return f
}

// WithRange returns a copy of f narrowed to r.
func (f Filter) WithRange(r DateRange) Filter {
	f.Range = f.Range.Intersect(r)
	return f
}

// Compose intersects filters. It is associative and commutative, and an
// empty intersection matches no rows rather than being dropped.
func Compose(filters ...Filter) Filter {
	var out Filter
	for _, f := range filters {
		out = Filter{
			DataSource:  out.DataSource.Intersect(f.DataSource),
			SessionType: out.SessionType.Intersect(f.SessionType),
			AppVersion:  out.AppVersion.Intersect(f.AppVersion),
			Range:       out.Range.Intersect(f.Range),
		}
	}
	return out
}

// Equal reports whether two filters select the same rows.
func (f Filter) Equal(o Filter) bool {
	return f.DataSource.Equal(o.DataSource) &&
		f.SessionType.Equal(o.SessionType) &&
		f.AppVersion.Equal(o.AppVersion) &&
		f.Range.Start.Equal(o.Range.Start) &&
		f.Range.End.Equal(o.Range.End)
}

// TableSchema declares what a fact table can be filtered on.
type TableSchema struct {
	Name       string
	DateColumn string
	Dimensions []Dimension
}

// Has reports whether the table carries dimension d.
func (t TableSchema) Has(d Dimension) bool {
	for _, have := range t.Dimensions {
		if have == d {
			return true
		}
	}
	return false
}

// Gold-layer tables.
var (
	SessionOutcomes = TableSchema{
		Name:       "gold.session_outcomes",
		DateColumn: "session_date",
		Dimensions: []Dimension{DimDataSource, DimSessionType, DimAppVersion},
	}
	UserActivations = TableSchema{
		Name:       "gold.user_activations",
		DateColumn: "signup_date",
		Dimensions: []Dimension{DimDataSource, DimAppVersion},
	}
)

// Where renders f against table t, with column names qualified by alias when
// it is non-empty. Constraining a dimension the table lacks, or naming a value
// outside a closed dimension domain, is a *QueryError: either would otherwise
// report numbers (or an empty result) for a population the caller did not
// ask for.
func (f Filter) Where(t TableSchema, alias string) (string, []interface{}, error) {
	wb := query.NewWhereBuilder()
	col := func(name string) string {
		if alias == "" {
			return name
		}
		return alias + "." + name
	}

	for _, d := range Dimensions {
		m := f.Match(d)
		if m.IsAny() {
			continue
		}
		if !t.Has(d) {
			return "", nil, invalidRequest("filter", "table %s has no dimension %s", t.Name, d)
		}
		for _, v := range m.values {
			if !d.Allows(v) {
				return "", nil, invalidRequest("filter", "unknown %s %q (known: %v)", d, v, d.Domain())
			}
		}
		wb.AddIn(col(string(d)), m.values)
	}

	if !f.Range.IsOpen() {
		if t.DateColumn == "" {
			return "", nil, invalidRequest("filter", "table %s has no date column", t.Name)
		}
		var start, end *time.Time
		if !f.Range.Start.IsZero() {
			start = &f.Range.Start
		}
		if !f.Range.End.IsZero() {
			end = &f.Range.End
		}
		wb.AddDateRange(col(t.DateColumn), start, end)
	}

	clause, args := wb.Build()
	return clause, args, nil
}

// String renders a compact human-readable form for logs.
func (f Filter) String() string {
	parts := []string{}
	for _, d := range Dimensions {
		if m := f.Match(d); !m.IsAny() {
			parts = append(parts, string(d)+"="+strings.Join(m.values, "|"))
		}
	}
	if !f.Range.Start.IsZero() {
		parts = append(parts, "start="+f.Range.Start.Format(time.DateOnly))
	}
	if !f.Range.End.IsZero() {
		parts = append(parts, "end="+f.Range.End.Format(time.DateOnly))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ",")
}
