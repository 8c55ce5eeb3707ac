// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package analytics

import (
	"errors"
	"fmt"
)

// StageCount is the population of one funnel stage, counted independently
// against the filtered population.
type StageCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// FunnelStage is one analysed funnel row.
type FunnelStage struct {
	Name          string `json:"name"`
	Count         int64  `json:"count"`
	PctOfInitial  Rate   `json:"pct_of_initial"`
	PctOfPrevious Rate   `json:"pct_of_previous"`
	DropOff       Rate   `json:"drop_off"`
}

// Funnel is an analysed funnel. Violations lists every stage whose count
// exceeds its predecessor; counts are reported as measured, never clamped.
type Funnel struct {
	Name       string                         `json:"name"`
	Stages     []FunnelStage                  `json:"stages"`
	Violations []*FunnelMonotonicityViolation `json:"violations,omitempty"`
}

// BuildFunnel computes conversion and drop-off for counts in stage order.
//
//	pct_of_initial[i]  = count[i] / count[0]
//	pct_of_previous[0] = 1, pct_of_previous[i] = count[i] / count[i-1]
//	drop_off[i]        = 1 - pct_of_previous[i] (undefined for stage 0)
func BuildFunnel(name string, counts []StageCount) Funnel {
	f := Funnel{Name: name, Stages: make([]FunnelStage, 0, len(counts))}
	if len(counts) == 0 {
		return f
	}

	initial := counts[0].Count
	for i, sc := range counts {
		stage := FunnelStage{
			Name:         sc.Name,
			Count:        sc.Count,
			PctOfInitial: NewRate(sc.Count, initial),
		}
		if i == 0 {
			stage.PctOfPrevious = RateOf(1)
			stage.DropOff = Undefined()
		} else {
			prev := counts[i-1]
			stage.PctOfPrevious = NewRate(sc.Count, prev.Count)
			stage.DropOff = Complement(stage.PctOfPrevious)
			if sc.Count > prev.Count {
				f.Violations = append(f.Violations, &FunnelMonotonicityViolation{
					Funnel:        name,
					Stage:         sc.Name,
					PreviousStage: prev.Name,
					Count:         sc.Count,
					PreviousCount: prev.Count,
				})
			}
		}
		f.Stages = append(f.Stages, stage)
	}
	return f
}

// Monotonic reports whether no stage exceeds its predecessor.
func (f Funnel) Monotonic() bool {
	return len(f.Violations) == 0
}

// Err joins the funnel's violations, or returns nil.
func (f Funnel) Err() error {
	if len(f.Violations) == 0 {
		return nil
	}
	errs := make([]error, len(f.Violations))
	for i, v := range f.Violations {
		errs[i] = v
	}
	return errors.Join(errs...)
}

// StageChange compares one stage across two periods.
type StageChange struct {
	Name           string `json:"name"`
	Current        int64  `json:"current"`
	Prior          int64  `json:"prior"`
	AbsoluteChange int64  `json:"absolute_change"`
	PercentChange  Rate   `json:"percent_change"`
	// ConversionDelta is the percentage-point change of pct_of_initial.
	ConversionDelta Rate `json:"conversion_delta"`
}

// ErrFunnelShapeMismatch is returned when two funnels do not share stages.
var ErrFunnelShapeMismatch = errors.New("funnels have different stages")

// CompareFunnels compares two funnels over adjacent periods stage by stage.
// Both funnels must list the same stages in the same order.
func CompareFunnels(current, prior Funnel) ([]StageChange, error) {
	if len(current.Stages) != len(prior.Stages) {
		return nil, fmt.Errorf("%w: %d vs %d stages", ErrFunnelShapeMismatch, len(current.Stages), len(prior.Stages))
	}
	changes := make([]StageChange, len(current.Stages))
	for i, cur := range current.Stages {
		prev := prior.Stages[i]
		if cur.Name != prev.Name {
			return nil, fmt.Errorf("%w: stage %d is %q vs %q", ErrFunnelShapeMismatch, i, cur.Name, prev.Name)
		}
		changes[i] = StageChange{
			Name:            cur.Name,
			Current:         cur.Count,
			Prior:           prev.Count,
			AbsoluteChange:  cur.Count - prev.Count,
			PercentChange:   PercentChange(cur.Count, prev.Count),
			ConversionDelta: Delta(cur.PctOfInitial, prev.PctOfInitial),
		}
	}
	return changes, nil
}
