// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package analytics

import (
	"fmt"
	"sort"
	"time"
)

// CohortRow is one cohort period with a cell per requested horizon.
type CohortRow struct {
	Cohort      string      `json:"cohort"`
	PeriodStart time.Time   `json:"period_start"`
	PeriodEnd   time.Time   `json:"period_end"`
	Size        int64       `json:"cohort_size"`
	Cells       []Retention `json:"cells"`
}

// Cell returns the cell for h.
func (r CohortRow) Cell(h Horizon) (Retention, bool) {
	for _, c := range r.Cells {
		if c.Horizon == h {
			return c, true
		}
	}
	return Retention{}, false
}

// Order selects the ranking direction.
type Order string

const (
	Worst Order = "worst"
	Best  Order = "best"
)

// ParseOrder accepts worst or best.
func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case Worst, Best:
		return o, nil
	default:
		return "", fmt.Errorf("invalid order %q: use worst or best", s)
	}
}

// RankedCohort is one entry of a cohort ranking.
type RankedCohort struct {
	Rank        int       `json:"rank"`
	Cohort      string    `json:"cohort"`
	PeriodStart time.Time `json:"period_start"`
	Size        int64     `json:"cohort_size"`
	Retention   Retention `json:"retention"`
}

// Ranking is the result of RankCohorts.
type Ranking struct {
	Horizon  Horizon        `json:"horizon"`
	Order    Order          `json:"order"`
	Cohorts  []RankedCohort `json:"cohorts"`
	Excluded int            `json:"excluded"`
}

// RankCohorts orders cohorts by their rate at h: ascending for Worst,
// descending for Best. Only cells in StateOK take part, so cohorts below the
// minimum sample are counted in Excluded instead of being ranked. Ties go to
// the larger cohort, then the earlier period. limit <= 0 means no limit.
func RankCohorts(rows []CohortRow, h Horizon, order Order, limit int) Ranking {
	type candidate struct {
		row  CohortRow
		cell Retention
	}

	result := Ranking{Horizon: h, Order: order, Cohorts: []RankedCohort{}}
	candidates := make([]candidate, 0, len(rows))
	for _, row := range rows {
		cell, ok := row.Cell(h)
		if !ok || cell.State != StateOK {
			result.Excluded++
			continue
		}
		candidates = append(candidates, candidate{row: row, cell: cell})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.cell.Rate.Value != b.cell.Rate.Value {
			if order == Best {
				return a.cell.Rate.Value > b.cell.Rate.Value
			}
			return a.cell.Rate.Value < b.cell.Rate.Value
		}
		if a.row.Size != b.row.Size {
			return a.row.Size > b.row.Size
		}
		return a.row.PeriodStart.Before(b.row.PeriodStart)
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	for i, c := range candidates {
		result.Cohorts = append(result.Cohorts, RankedCohort{
			Rank:        i + 1,
			Cohort:      c.row.Cohort,
			PeriodStart: c.row.PeriodStart,
			Size:        c.row.Size,
			Retention:   c.cell,
		})
	}
	return result
}

// CurvePoint is one point of a retention curve.
type CurvePoint struct {
	Horizon string    `json:"horizon"`
	Offset  int       `json:"offset"`
	Rate    Rate      `json:"rate"`
	State   CellState `json:"state"`
}

// Curve is the retention curve of one cohort. Offsets count Unit.
type Curve struct {
	Cohort      string       `json:"cohort"`
	PeriodStart time.Time    `json:"period_start"`
	Size        int64        `json:"cohort_size"`
	Unit        Unit         `json:"unit"`
	Points      []CurvePoint `json:"points"`
}

// RetentionCurve builds a curve in unit starting at offset 0 with rate 1
// (every member is present at the defining event), followed by the row's
// cells in that unit ordered by offset. Cells in another unit are not on
// the curve's axis and are left out.
func RetentionCurve(row CohortRow, unit Unit) Curve {
	origin := CurvePoint{Horizon: Horizon{Unit: unit}.String(), Offset: 0, Rate: NewRate(row.Size, row.Size), State: StateOK}
	if row.Size == 0 {
		origin.State = StateNotMature
	}
	points := []CurvePoint{origin}
	for _, c := range row.Cells {
		if c.Horizon.Unit != unit {
			continue
		}
		points = append(points, CurvePoint{
			Horizon: c.Horizon.String(),
			Offset:  c.Horizon.N,
			Rate:    c.Rate,
			State:   c.State,
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Offset < points[j].Offset })
	return Curve{Cohort: row.Cohort, PeriodStart: row.PeriodStart, Size: row.Size, Unit: unit, Points: points}
}

// SelectCurveCohorts returns curves in gate's unit for the n most recent
// cohorts whose cell at gate is StateOK, newest first.
func SelectCurveCohorts(rows []CohortRow, gate Horizon, n int) []Curve {
	sorted := make([]CohortRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PeriodStart.After(sorted[j].PeriodStart)
	})

	curves := []Curve{}
	for _, row := range sorted {
		if n > 0 && len(curves) >= n {
			break
		}
		if cell, ok := row.Cell(gate); ok && cell.State == StateOK {
			curves = append(curves, RetentionCurve(row, gate.Unit))
		}
	}
	return curves
}

// PooledRetention is sum(retained) / sum(mature) at h across rows whose
// cell is consistent. Invalid cells are skipped.
func PooledRetention(rows []CohortRow, h Horizon) Rate {
	var mature, retained int64
	for _, row := range rows {
		cell, ok := row.Cell(h)
		if !ok || cell.State == StateInvalid {
			continue
		}
		mature += cell.Mature
		retained += cell.Retained
	}
	return NewRate(retained, mature)
}
