// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/northstar/internal/analytics"
	"github.com/tomtom215/northstar/internal/metrics"
)

// FunnelStageDef is one named stage of a funnel definition.
type FunnelStageDef struct {
	Name      string
	Predicate string
}

// FunnelDefinition is an ordered list of increasingly strict predicates over
// one table. Every stage predicate implies the one before it, so a count
// that rises between stages can only come from a warehouse row that breaks a
// flag invariant (meets_psr_strict without meets_psr_broad). Definitions are
// static; they are never mutated.
type FunnelDefinition struct {
	Name   string
	Table  TableSchema
	Stages []FunnelStageDef
}

// ladder builds stages whose predicates are the running conjunction of conds,
// so each stage implies the one before it by construction.
func ladder(names []string, conds []string) []FunnelStageDef {
	stages := make([]FunnelStageDef, len(names))
	prev := ""
	for i, name := range names {
		pred := conds[i]
		if prev != "" && prev != "TRUE" {
			pred = prev + " AND " + conds[i]
		}
		stages[i] = FunnelStageDef{Name: name, Predicate: pred}
		prev = pred
	}
	return stages
}

var funnelDefinitions = map[string]FunnelDefinition{
	"session": {
		Name:  "session",
		Table: SessionOutcomes,
		Stages: ladder(
			[]string{"Initiated", "Browsed", "Engaged", "Saved", "Shortlisted (SCR3)", "Social", "Converted"},
			[]string{"TRUE", "has_browse", "has_engagement", "has_save", "save_count >= 3", "has_share", "has_conversion"},
		),
	},
	// Strict is not conjoined with Broad: strict implies broad is a warehouse
	// invariant, and a row breaking it must surface as a violation.
	"plan_survival": {
		Name:  "plan_survival",
		Table: SessionOutcomes,
		Stages: []FunnelStageDef{
			{Name: "All Sessions", Predicate: "TRUE"},
			{Name: "Genuine Planning", Predicate: "is_genuine_planning_attempt"},
			{Name: "Had Save", Predicate: "is_genuine_planning_attempt AND has_save"},
			{Name: "Save+Share Broad", Predicate: "is_genuine_planning_attempt AND has_save AND meets_psr_broad"},
			{Name: "Save+Share Strict", Predicate: "is_genuine_planning_attempt AND has_save AND meets_psr_strict"},
		},
	},
	"activation": {
		Name:  "activation",
		Table: UserActivations,
		Stages: ladder(
			[]string{"Signed Up", "First Session", "Completed Onboarding", "Activated", "Activated Within 7d"},
			[]string{"TRUE", "had_first_session", "completed_onboarding", "is_activated", "days_to_activation <= 7"},
		),
	},
}

// LookupFunnel returns the named funnel definition.
func LookupFunnel(name string) (FunnelDefinition, error) {
	def, ok := funnelDefinitions[name]
	if !ok {
		return FunnelDefinition{}, invalidRequest("funnel", "unknown funnel %q (known: %v)", name, FunnelNames())
	}
	return def, nil
}

// FunnelNames lists the defined funnels in sorted order.
func FunnelNames() []string {
	names := make([]string, 0, len(funnelDefinitions))
	for name := range funnelDefinitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FunnelCounts evaluates every stage predicate independently against the
// filtered population in a single scan.
func (db *DB) FunnelCounts(ctx context.Context, def FunnelDefinition, f Filter) ([]analytics.StageCount, int64, error) {
	where, args, err := f.Where(def.Table, "")
	if err != nil {
		return nil, 0, err
	}

	predicates := make([]string, len(def.Stages))
	for i, s := range def.Stages {
		predicates[i] = s.Predicate
	}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS population,
			%s
		FROM %s
		WHERE %s`, countFilters(predicates, "stage"), def.Table.Name, where)

	counts := make([]int64, len(def.Stages))
	var population int64
	dest := []interface{}{&population}
	for i := range counts {
		dest = append(dest, &counts[i])
	}
	if err := db.readOne(ctx, "funnel_"+def.Name, def.Table.Name, query, args, dest...); err != nil {
		return nil, 0, err
	}

	out := make([]analytics.StageCount, len(def.Stages))
	for i, s := range def.Stages {
		out[i] = analytics.StageCount{Name: s.Name, Count: counts[i]}
	}
	return out, population, nil
}

// Funnel computes the funnel for def. A stage count above its predecessor
// is reported in Funnel.Violations and counted in metrics; counts are never
// clamped.
func (db *DB) Funnel(ctx context.Context, def FunnelDefinition, f Filter) (analytics.Funnel, error) {
	counts, population, err := db.FunnelCounts(ctx, def, f)
	if err != nil {
		return analytics.Funnel{}, err
	}
	if population == 0 {
		return analytics.Funnel{}, &EmptyResultError{Op: "funnel_" + def.Name}
	}
	funnel := analytics.BuildFunnel(def.Name, counts)
	recordFunnelViolations(funnel)
	return funnel, nil
}

func recordFunnelViolations(funnel analytics.Funnel) {
	for _, v := range funnel.Violations {
		metrics.RecordDiagnostic(v.Kind(), funnel.Name)
	}
}

// FunnelComparison is a funnel over the current window against the
// previous window of the same length.
type FunnelComparison struct {
	Period   Period                  `json:"period"`
	Current  DateRange               `json:"current_range"`
	Previous DateRange               `json:"previous_range"`
	This     analytics.Funnel        `json:"current"`
	Prior    analytics.Funnel        `json:"previous"`
	Changes  []analytics.StageChange `json:"changes"`
}

// CompareFunnelPeriods builds the funnel for the current and previous
// adjacent windows and compares them stage by stage. An empty prior window
// is allowed: its percent changes are undefined.
func (db *DB) CompareFunnelPeriods(ctx context.Context, def FunnelDefinition, f Filter, p Period) (FunnelComparison, error) {
	if _, err := ParsePeriod(string(p)); err != nil {
		return FunnelComparison{}, err
	}
	curWin, prevWin := p.Windows(db.today())

	curCounts, curPop, err := db.FunnelCounts(ctx, def, f.WithRange(curWin))
	if err != nil {
		return FunnelComparison{}, err
	}
	prevCounts, prevPop, err := db.FunnelCounts(ctx, def, f.WithRange(prevWin))
	if err != nil {
		return FunnelComparison{}, err
	}
	if curPop == 0 && prevPop == 0 {
		return FunnelComparison{}, &EmptyResultError{Op: "funnel_compare_" + def.Name}
	}

	current := analytics.BuildFunnel(def.Name, curCounts)
	prior := analytics.BuildFunnel(def.Name, prevCounts)
	recordFunnelViolations(current)

	changes, err := analytics.CompareFunnels(current, prior)
	if err != nil {
		return FunnelComparison{}, &QueryError{Op: "funnel_compare_" + def.Name, Err: err}
	}

	return FunnelComparison{
		Period:   p,
		Current:  curWin,
		Previous: prevWin,
		This:     current,
		Prior:    prior,
		Changes:  changes,
	}, nil
}
