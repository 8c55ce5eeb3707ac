// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

// Package validation validates dashboard requests with go-playground/validator v10.
//
// The validator is a process-wide singleton so struct metadata is parsed once.
// Besides the built-in tags it knows three dashboard tags:
//
//   - horizon: a retention horizon (D7, D30, D60, D90, M1..M12)
//   - dateonly: a YYYY-MM-DD day
//   - dimvalue: a printable filter value of at most 64 bytes
//
// Failed fields are reported under their query parameter name, taken from
// the `query` struct tag:
//
//	type retentionRequest struct {
//	    Horizons []string `query:"horizons" validate:"min=1,max=16,dive,horizon"`
//	    Start    string   `query:"start_date" validate:"omitempty,dateonly"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError() // Code VALIDATION_ERROR, Details["field"] = "horizons[1]"
//	}
package validation
