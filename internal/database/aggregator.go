// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/northstar/internal/analytics"
)

// Metric is a named rate over gold.session_outcomes. Every row selected by
// Numerator is also selected by Denominator.
type Metric struct {
	Name        string
	Label       string
	Numerator   string
	Denominator string
}

var metricRegistry = map[string]Metric{
	"ssr":                   {Name: "ssr", Label: "Session Save Rate", Numerator: "has_save", Denominator: "TRUE"},
	"scr3":                  {Name: "scr3", Label: "Shortlist Rate (3+ saves)", Numerator: "save_count >= 3", Denominator: "TRUE"},
	"share_rate":            {Name: "share_rate", Label: "Share Rate", Numerator: "has_share", Denominator: "TRUE"},
	"psr_broad":             {Name: "psr_broad", Label: "Plan Survival Rate (broad)", Numerator: "meets_psr_broad", Denominator: "TRUE"},
	"psr_strict":            {Name: "psr_strict", Label: "Plan Survival Rate (strict)", Numerator: "meets_psr_strict", Denominator: "TRUE"},
	"no_value_rate":         {Name: "no_value_rate", Label: "No-Value Session Rate", Numerator: "is_no_value_session", Denominator: "TRUE"},
	"genuine_planning_rate": {Name: "genuine_planning_rate", Label: "Genuine Planning Rate", Numerator: "is_genuine_planning_attempt", Denominator: "TRUE"},
	"planning_save_rate":    {Name: "planning_save_rate", Label: "Save Rate of Planning Sessions", Numerator: "has_save AND is_genuine_planning_attempt", Denominator: "is_genuine_planning_attempt"},
}

// NorthStarMetrics are the metrics reported by NorthStarSummary, in display order.
var NorthStarMetrics = []string{"ssr", "scr3", "psr_broad", "psr_strict", "share_rate", "no_value_rate"}

// LookupMetric returns the named metric.
func LookupMetric(name string) (Metric, error) {
	m, ok := metricRegistry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Metric{}, invalidRequest("metric", "unknown metric %q (known: %s)", name, strings.Join(MetricNames(), ", "))
	}
	return m, nil
}

// MetricNames lists the registered metric names in sorted order.
func MetricNames() []string {
	names := make([]string, 0, len(metricRegistry))
	for name := range metricRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RateResult is one aggregated rate.
type RateResult struct {
	Metric      string         `json:"metric"`
	Label       string         `json:"label"`
	Numerator   int64          `json:"numerator"`
	Denominator int64          `json:"denominator"`
	Rate        analytics.Rate `json:"rate"`
}

// AggregateRate computes numerator/denominator for m over the filtered
// sessions. The rate is undefined, never zero, when the denominator is 0.
// An empty filtered population is an *EmptyResultError.
func (db *DB) AggregateRate(ctx context.Context, m Metric, f Filter) (RateResult, error) {
	results, population, err := db.aggregateRates(ctx, "aggregate_rate", []Metric{m}, f)
	if err != nil {
		return RateResult{}, err
	}
	if population == 0 {
		return RateResult{}, &EmptyResultError{Op: "aggregate_rate"}
	}
	return results[0], nil
}

// aggregateRates evaluates several metrics in one scan and also returns the
// filtered population size. It does not treat an empty population as an
// error so callers comparing periods can decide.
func (db *DB) aggregateRates(ctx context.Context, op string, ms []Metric, f Filter) ([]RateResult, int64, error) {
	where, args, err := f.Where(SessionOutcomes, "")
	if err != nil {
		return nil, 0, err
	}

	predicates := make([]string, 0, 2*len(ms))
	for _, m := range ms {
		predicates = append(predicates, m.Numerator, m.Denominator)
	}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS population,
			%s
		FROM %s
		WHERE %s`, countFilters(predicates, "c"), SessionOutcomes.Name, where)

	counts := make([]int64, len(predicates))
	dest := make([]interface{}, 0, len(predicates)+1)
	var population int64
	dest = append(dest, &population)
	for i := range counts {
		dest = append(dest, &counts[i])
	}

	if err := db.readOne(ctx, op, SessionOutcomes.Name, query, args, dest...); err != nil {
		return nil, 0, err
	}

	results := make([]RateResult, len(ms))
	for i, m := range ms {
		num, den := counts[2*i], counts[2*i+1]
		results[i] = RateResult{
			Metric:      m.Name,
			Label:       m.Label,
			Numerator:   num,
			Denominator: den,
			Rate:        analytics.NewRate(num, den),
		}
	}
	return results, population, nil
}

// Bucket is the width of a time-series bucket.
type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketWeek  Bucket = "week"
	BucketMonth Bucket = "month"
)

// ParseBucket accepts day, week or month.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(strings.ToLower(strings.TrimSpace(s))); b {
	case BucketDay, BucketWeek, BucketMonth:
		return b, nil
	default:
		return "", invalidRequest("bucket", "invalid bucket %q: use day, week or month", s)
	}
}

// RatePoint is one bucket of a rate series.
type RatePoint struct {
	Period      time.Time      `json:"period"`
	Numerator   int64          `json:"numerator"`
	Denominator int64          `json:"denominator"`
	Rate        analytics.Rate `json:"rate"`
}

// RateSeries is a metric bucketed over time.
type RateSeries struct {
	Metric string      `json:"metric"`
	Label  string      `json:"label"`
	Bucket Bucket      `json:"bucket"`
	Points []RatePoint `json:"points"`
}

// RateSeries computes m per time bucket, oldest first.
func (db *DB) RateSeries(ctx context.Context, m Metric, f Filter, b Bucket) (RateSeries, error) {
	if _, err := ParseBucket(string(b)); err != nil {
		return RateSeries{}, err
	}
	where, args, err := f.Where(SessionOutcomes, "")
	if err != nil {
		return RateSeries{}, err
	}

	query := fmt.Sprintf(`
		SELECT
			CAST(date_trunc('%s', session_date) AS DATE) AS period,
			COUNT(*) FILTER (WHERE %s) AS numerator,
			COUNT(*) FILTER (WHERE %s) AS denominator
		FROM %s
		WHERE %s
		GROUP BY 1
		ORDER BY 1`, b, m.Numerator, m.Denominator, SessionOutcomes.Name, where)

	points, err := queryAndScan(ctx, db, "rate_series", SessionOutcomes.Name, query, args, func(rows *sql.Rows) (RatePoint, error) {
		var p RatePoint
		if err := rows.Scan(&p.Period, &p.Numerator, &p.Denominator); err != nil {
			return p, err
		}
		p.Rate = analytics.NewRate(p.Numerator, p.Denominator)
		return p, nil
	})
	if err != nil {
		return RateSeries{}, err
	}
	if len(points) == 0 {
		return RateSeries{}, &EmptyResultError{Op: "rate_series"}
	}
	return RateSeries{Metric: m.Name, Label: m.Label, Bucket: b, Points: points}, nil
}

// Period selects the comparison window of period-over-period views.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod accepts week or month.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodWeek, PeriodMonth:
		return p, nil
	default:
		return "", invalidRequest("period", "invalid period %q: use week or month", s)
	}
}

// Windows returns the trailing window ending today and the window of equal
// length right before it: 7 days for week, one calendar month for month.
func (p Period) Windows(today time.Time) (current, previous DateRange) {
	today = truncateDay(today)
	var curStart time.Time
	if p == PeriodMonth {
		curStart = today.AddDate(0, -1, 1)
	} else {
		curStart = today.AddDate(0, 0, -6)
	}
	prevEnd := curStart.AddDate(0, 0, -1)
	var prevStart time.Time
	if p == PeriodMonth {
		prevStart = curStart.AddDate(0, -1, 0)
	} else {
		prevStart = curStart.AddDate(0, 0, -7)
	}
	return DateRange{Start: curStart, End: today}, DateRange{Start: prevStart, End: prevEnd}
}

// MetricDelta compares one metric across two periods. Delta is in rate
// units (percentage points when rendered) and undefined unless both
// periods have a defined rate.
type MetricDelta struct {
	Metric   string         `json:"metric"`
	Label    string         `json:"label"`
	Current  RateResult     `json:"current"`
	Previous RateResult     `json:"previous"`
	Delta    analytics.Rate `json:"delta"`
}

// NorthStarSummary is the headline view: each North Star metric for the
// current window against the previous one.
type NorthStarSummary struct {
	Period          Period        `json:"period"`
	Current         DateRange     `json:"current"`
	Previous        DateRange     `json:"previous"`
	CurrentSessions int64         `json:"current_sessions"`
	PriorSessions   int64         `json:"previous_sessions"`
	Metrics         []MetricDelta `json:"metrics"`
}

// NorthStarSummary reports WoW or MoM deltas for the North Star metrics.
// It is an *EmptyResultError only when both windows are empty; a single
// empty window yields undefined rates and deltas.
func (db *DB) NorthStarSummary(ctx context.Context, f Filter, p Period) (NorthStarSummary, error) {
	if _, err := ParsePeriod(string(p)); err != nil {
		return NorthStarSummary{}, err
	}

	ms := make([]Metric, len(NorthStarMetrics))
	for i, name := range NorthStarMetrics {
		ms[i] = metricRegistry[name]
	}

	curWin, prevWin := p.Windows(db.today())
	cur, curPop, err := db.aggregateRates(ctx, "north_star", ms, f.WithRange(curWin))
	if err != nil {
		return NorthStarSummary{}, err
	}
	prev, prevPop, err := db.aggregateRates(ctx, "north_star", ms, f.WithRange(prevWin))
	if err != nil {
		return NorthStarSummary{}, err
	}
	if curPop == 0 && prevPop == 0 {
		return NorthStarSummary{}, &EmptyResultError{Op: "north_star"}
	}

	summary := NorthStarSummary{
		Period:          p,
		Current:         curWin,
		Previous:        prevWin,
		CurrentSessions: curPop,
		PriorSessions:   prevPop,
		Metrics:         make([]MetricDelta, len(ms)),
	}
	for i, m := range ms {
		summary.Metrics[i] = MetricDelta{
			Metric:   m.Name,
			Label:    m.Label,
			Current:  cur[i],
			Previous: prev[i],
			Delta:    analytics.Delta(cur[i].Rate, prev[i].Rate),
		}
	}
	return summary, nil
}
