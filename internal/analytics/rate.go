// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package analytics

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// Rate is a ratio that may be undefined. An undefined rate means the
// denominator was zero (or an operand was itself undefined); it is never the
// same as a measured 0.
type Rate struct {
	Value   float64
	Defined bool
}

// Undefined returns the undefined rate.
func Undefined() Rate {
	return Rate{}
}

// RateOf returns a defined rate with value v.
func RateOf(v float64) Rate {
	return Rate{Value: v, Defined: true}
}

// NewRate returns num/den, or Undefined when den is zero.
func NewRate(num, den int64) Rate {
	if den == 0 {
		return Undefined()
	}
	return RateOf(float64(num) / float64(den))
}

// Float returns the value and whether it is defined.
func (r Rate) Float() (float64, bool) {
	return r.Value, r.Defined
}

// Percent formats the rate with one decimal, or "N/A" when undefined.
func (r Rate) Percent() string {
	if !r.Defined {
		return "N/A"
	}
	return strconv.FormatFloat(r.Value*100, 'f', 1, 64) + "%"
}

// String implements fmt.Stringer.
func (r Rate) String() string {
	if !r.Defined {
		return "N/A"
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// Equal reports whether both rates are undefined, or both are defined and
// within 1e-9 of each other.
func (r Rate) Equal(o Rate) bool {
	if r.Defined != o.Defined {
		return false
	}
	return !r.Defined || math.Abs(r.Value-o.Value) < 1e-9
}

// MarshalJSON encodes an undefined rate as null.
func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.Defined {
		return []byte("null"), nil
	}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return nil, fmt.Errorf("rate value %v is not representable", r.Value)
	}
	return strconv.AppendFloat(nil, r.Value, 'f', -1, 64), nil
}

// UnmarshalJSON decodes null as an undefined rate.
func (r *Rate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Undefined()
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid rate %q: %w", data, err)
	}
	*r = RateOf(v)
	return nil
}

// Delta returns current - previous. It is defined only when both operands are.
// For two rates the result is a percentage-point change (0.05 = +5pp).
func Delta(current, previous Rate) Rate {
	if !current.Defined || !previous.Defined {
		return Undefined()
	}
	return RateOf(current.Value - previous.Value)
}

// PercentChange returns (current - prior) / prior, undefined when prior is zero.
func PercentChange(current, prior int64) Rate {
	if prior == 0 {
		return Undefined()
	}
	return RateOf(float64(current-prior) / float64(prior))
}

// Complement returns 1 - r, undefined when r is.
func Complement(r Rate) Rate {
	if !r.Defined {
		return Undefined()
	}
	return RateOf(1 - r.Value)
}
