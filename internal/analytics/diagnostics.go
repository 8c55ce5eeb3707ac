// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package analytics

import (
	"errors"
	"fmt"
)

// Diagnostic kinds.
const (
	KindFunnelMonotonicity       = "funnel_monotonicity_violation"
	KindRetentionDenominatorZero = "retention_denominator_zero"
	KindRetentionBound           = "retention_bound_violation"
)

// Diagnostic is a data-quality finding. It is an error so it can travel
// through normal error paths, but it never replaces the computed result.
type Diagnostic interface {
	error
	Kind() string
}

// FunnelMonotonicityViolation reports a stage whose population exceeds the
// previous stage's. With correctly nested stage predicates this cannot
// happen, so it points at an upstream data defect.
type FunnelMonotonicityViolation struct {
	Funnel        string `json:"funnel"`
	Stage         string `json:"stage"`
	PreviousStage string `json:"previous_stage"`
	Count         int64  `json:"count"`
	PreviousCount int64  `json:"previous_count"`
}

func (e *FunnelMonotonicityViolation) Error() string {
	return fmt.Sprintf("funnel %q: stage %q has %d, more than previous stage %q with %d",
		e.Funnel, e.Stage, e.Count, e.PreviousStage, e.PreviousCount)
}

// Kind implements Diagnostic.
func (e *FunnelMonotonicityViolation) Kind() string { return KindFunnelMonotonicity }

// RetentionDenominatorZero reports a retention computation with no mature
// members. The rate is undefined; the cohort has not aged enough yet.
type RetentionDenominatorZero struct {
	Cohort  string  `json:"cohort"`
	Horizon Horizon `json:"horizon"`
}

func (e *RetentionDenominatorZero) Error() string {
	return fmt.Sprintf("cohort %s: no members mature at %s", e.Cohort, e.Horizon)
}

// Kind implements Diagnostic.
func (e *RetentionDenominatorZero) Kind() string { return KindRetentionDenominatorZero }

// RetentionBoundViolation reports counts breaking
// 0 <= retained <= mature <= cohort_size.
type RetentionBoundViolation struct {
	Cohort     string  `json:"cohort"`
	Horizon    Horizon `json:"horizon"`
	CohortSize int64   `json:"cohort_size"`
	Mature     int64   `json:"mature"`
	Retained   int64   `json:"retained"`
}

func (e *RetentionBoundViolation) Error() string {
	return fmt.Sprintf("cohort %s at %s: counts out of bounds (size=%d mature=%d retained=%d)",
		e.Cohort, e.Horizon, e.CohortSize, e.Mature, e.Retained)
}

// Kind implements Diagnostic.
func (e *RetentionBoundViolation) Kind() string { return KindRetentionBound }

// DiagnosticReport is the serialisable form of a Diagnostic.
type DiagnosticReport struct {
	Kind    string     `json:"kind"`
	Message string     `json:"message"`
	Detail  Diagnostic `json:"detail"`
}

// Reports flattens err (possibly joined) into diagnostic reports.
// Errors that are not diagnostics are ignored.
func Reports(err error) []DiagnosticReport {
	if err == nil {
		return nil
	}
	var out []DiagnosticReport
	collect(err, &out)
	return out
}

func collect(err error, out *[]DiagnosticReport) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			collect(e, out)
		}
		return
	}
	var d Diagnostic
	if errors.As(err, &d) {
		*out = append(*out, DiagnosticReport{Kind: d.Kind(), Message: d.Error(), Detail: d})
	}
}
