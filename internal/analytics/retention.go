// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package analytics

// CellState distinguishes why a retention rate is or is not shown.
type CellState string

const (
	StateOK                 CellState = "ok"
	StateNotMature          CellState = "not_mature"
	StateInsufficientSample CellState = "insufficient_sample"
	StateInvalid            CellState = "invalid"
)

// CohortCounts are the raw counts of one cohort at one horizon.
type CohortCounts struct {
	Cohort   string
	Size     int64
	Mature   int64
	Retained int64
}

// Retention is one heatmap cell.
type Retention struct {
	Horizon     Horizon   `json:"horizon"`
	CohortSize  int64     `json:"cohort_size"`
	Mature      int64     `json:"mature"`
	Retained    int64     `json:"retained"`
	Rate        Rate      `json:"rate"`
	State       CellState `json:"state"`
	FullyMature bool      `json:"fully_mature"`
}

// ComputeRetention turns counts into a cell. The rate is reported only when
// at least minSample members are mature.
//
// The returned error is a Diagnostic:
//   - *RetentionBoundViolation when 0 <= retained <= mature <= size fails
//   - *RetentionDenominatorZero when no member is mature yet
//
// The cell is valid in both cases and carries StateInvalid or StateNotMature.
func ComputeRetention(c CohortCounts, h Horizon, minSample int) (Retention, error) {
	cell := Retention{
		Horizon:    h,
		CohortSize: c.Size,
		Mature:     c.Mature,
		Retained:   c.Retained,
		Rate:       Undefined(),
	}

	if c.Retained < 0 || c.Mature < 0 || c.Retained > c.Mature || c.Mature > c.Size {
		cell.State = StateInvalid
		return cell, &RetentionBoundViolation{
			Cohort:     c.Cohort,
			Horizon:    h,
			CohortSize: c.Size,
			Mature:     c.Mature,
			Retained:   c.Retained,
		}
	}

	if c.Mature == 0 {
		cell.State = StateNotMature
		return cell, &RetentionDenominatorZero{Cohort: c.Cohort, Horizon: h}
	}

	if c.Mature < int64(minSample) {
		cell.State = StateInsufficientSample
		return cell, nil
	}

	cell.State = StateOK
	cell.Rate = NewRate(c.Retained, c.Mature)
	return cell, nil
}
