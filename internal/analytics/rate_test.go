// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package analytics

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestNewRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		num, den int64
		want     Rate
	}{
		{"zero denominator is undefined", 0, 0, Undefined()},
		{"numerator without denominator is undefined", 5, 0, Undefined()},
		{"measured zero", 0, 10, RateOf(0)},
		{"half", 5, 10, RateOf(0.5)},
		{"whole", 10, 10, RateOf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewRate(tt.num, tt.den); !got.Equal(tt.want) {
				t.Errorf("NewRate(%d, %d) = %+v, want %+v", tt.num, tt.den, got, tt.want)
			}
		})
	}
}

func TestUndefinedIsNotZero(t *testing.T) {
	t.Parallel()

	if Undefined().Equal(RateOf(0)) {
		t.Fatal("undefined rate compared equal to 0")
	}
	if got := Undefined().Percent(); got != "N/A" {
		t.Errorf("Percent() = %q, want N/A", got)
	}
	if got := RateOf(0).Percent(); got != "0.0%" {
		t.Errorf("Percent() = %q, want 0.0%%", got)
	}
	if got := RateOf(0.4567).Percent(); got != "45.7%" {
		t.Errorf("Percent() = %q, want 45.7%%", got)
	}
}

func TestDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cur, prev Rate
		want      Rate
	}{
		{"both defined", RateOf(0.30), RateOf(0.25), RateOf(0.05)},
		{"negative change", RateOf(0.20), RateOf(0.25), RateOf(-0.05)},
		{"current undefined", Undefined(), RateOf(0.25), Undefined()},
		{"previous undefined", RateOf(0.25), Undefined(), Undefined()},
		{"both undefined", Undefined(), Undefined(), Undefined()},
		{"no change is zero, not undefined", RateOf(0.1), RateOf(0.1), RateOf(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Delta(tt.cur, tt.prev); !got.Equal(tt.want) {
				t.Errorf("Delta() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPercentChange(t *testing.T) {
	t.Parallel()

	if got := PercentChange(120, 100); !got.Equal(RateOf(0.2)) {
		t.Errorf("PercentChange(120, 100) = %+v, want 0.2", got)
	}
	if got := PercentChange(50, 0); got.Defined {
		t.Errorf("PercentChange(50, 0) = %+v, want undefined", got)
	}
	if got := PercentChange(0, 40); !got.Equal(RateOf(-1)) {
		t.Errorf("PercentChange(0, 40) = %+v, want -1", got)
	}
}

func TestRateJSON(t *testing.T) {
	t.Parallel()

	payload := struct {
		SSR  Rate `json:"ssr"`
		PSR  Rate `json:"psr"`
		Zero Rate `json:"zero"`
	}{SSR: RateOf(0.45), PSR: Undefined(), Zero: RateOf(0)}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `{"ssr":0.45,"psr":null,"zero":0}`; string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var decoded struct {
		SSR  Rate `json:"ssr"`
		PSR  Rate `json:"psr"`
		Zero Rate `json:"zero"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.SSR.Equal(payload.SSR) || decoded.PSR.Defined || !decoded.Zero.Defined {
		t.Errorf("round trip lost definedness: %+v", decoded)
	}
}
