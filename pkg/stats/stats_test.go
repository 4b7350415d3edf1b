// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
		ok     bool
	}{
		{"empty", nil, 0, false},
		{"single", []float64{7.5}, 7.5, true},
		{"simple", []float64{1, 2, 3, 4}, 2.5, true},
		{"negative", []float64{-2, 2}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Mean(tt.values)
			if ok != tt.ok {
				t.Fatalf("Mean(%v) ok = %v, want %v", tt.values, ok, tt.ok)
			}
			if ok && math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Mean(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestStdDevIsPopulation(t *testing.T) {
	// Population stddev of {2, 4, 4, 4, 5, 5, 7, 9} is exactly 2.
	sd, ok := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !ok {
		t.Fatal("expected a standard deviation")
	}
	if math.Abs(sd-2.0) > 1e-12 {
		t.Errorf("StdDev = %v, want 2.0 (population, not sample)", sd)
	}
}

func TestStdDevEdges(t *testing.T) {
	if _, ok := StdDev(nil); ok {
		t.Error("StdDev(nil) should report no value")
	}
	sd, ok := StdDev([]float64{3})
	if !ok || sd != 0 {
		t.Errorf("StdDev of a single point = %v, %v; want 0, true", sd, ok)
	}
	sd, _ = StdDev([]float64{5, 5, 5})
	if sd < 0 {
		t.Errorf("StdDev must never be negative, got %v", sd)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(150, 0, 100); got != 100 {
		t.Errorf("Clamp(150) = %v", got)
	}
	if got := Clamp(-3, 0, 100); got != 0 {
		t.Errorf("Clamp(-3) = %v", got)
	}
	if got := Clamp01(0.42); got != 0.42 {
		t.Errorf("Clamp01(0.42) = %v", got)
	}
	if got := Clamp01(1.7); got != 1 {
		t.Errorf("Clamp01(1.7) = %v", got)
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float", 7.5, 7.5, true},
		{"int", 12, 12, true},
		{"numeric string", " 68 ", 68, true},
		{"empty string", "", 0, false},
		{"garbage string", "n/a", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf string", "Inf", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumber(tt.in)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("ToNumber(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFormatting(t *testing.T) {
	if got := FormatNumber(7.25, 1); got != "7.2" {
		t.Errorf("FormatNumber = %q", got)
	}
	if got := FormatNumber(math.NaN(), 1); got != "—" {
		t.Errorf("FormatNumber(NaN) = %q", got)
	}
	if got := FormatSigned(0.4, 1); got != "+0.4" {
		t.Errorf("FormatSigned(0.4) = %q", got)
	}
	if got := FormatSigned(-2, 0); got != "-2" {
		t.Errorf("FormatSigned(-2) = %q", got)
	}
	if got := FormatSigned(0, 1); got != "0.0" {
		t.Errorf("FormatSigned(0) = %q", got)
	}
}

func TestDayKeys(t *testing.T) {
	if !IsDayKey("2024-01-10") {
		t.Error("2024-01-10 should be valid")
	}
	if IsDayKey("01/10/2024") || IsDayKey("2024-1-10") || IsDayKey("") {
		t.Error("malformed day keys accepted")
	}
	if got := AddDays("2024-01-10", -1); got != "2024-01-09" {
		t.Errorf("AddDays -1 = %q", got)
	}
	if got := AddDays("2024-03-01", -1); got != "2024-02-29" {
		t.Errorf("AddDays across leap day = %q", got)
	}
	if got := AddDays("not-a-day", 1); got != "" {
		t.Errorf("AddDays on malformed key = %q", got)
	}
}
