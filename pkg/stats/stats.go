// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stats provides the numeric primitives shared by the stress
// engine and the insight pipeline: unweighted means, population standard
// deviation, clamping, lenient numeric coercion, and display formatting.
//
// All functions are pure and allocation-free apart from string formatting.
// Absence of a value is always reported through the second return value,
// never encoded as zero.
package stats

import (
	"math"
	"strconv"
	"strings"
)

// IsFinite reports whether v is a usable sample: not NaN and not infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Mean returns the unweighted arithmetic mean of values.
// The second return value is false when values is empty.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// StdDev returns the population standard deviation of values (divide by N,
// not N-1). The second return value is false when values is empty.
func StdDev(values []float64) (float64, bool) {
	mean, ok := Mean(values)
	if !ok {
		return 0, false
	}
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance), true
}

// Clamp limits v to the inclusive range [min, max].
func Clamp(v, min, max float64) float64 {
	return math.Min(max, math.Max(min, v))
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// ToNumber coerces a decoded JSON value to a finite float64. Accepts
// float64, json-decoded integers, and numeric strings; everything else
// (nil, booleans, empty strings, NaN) reports false.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if IsFinite(n) {
			return n, true
		}
	case float32:
		return ToNumber(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || !IsFinite(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// FormatNumber renders v with the given number of decimal digits.
// Non-finite values render as an em-dash placeholder.
func FormatNumber(v float64, digits int) string {
	if !IsFinite(v) {
		return "—"
	}
	return strconv.FormatFloat(v, 'f', digits, 64)
}

// FormatSigned renders v like FormatNumber but with an explicit leading
// sign for positive values, for delta displays.
func FormatSigned(v float64, digits int) string {
	if !IsFinite(v) {
		return "—"
	}
	if v > 0 {
		return "+" + strconv.FormatFloat(v, 'f', digits, 64)
	}
	return strconv.FormatFloat(v, 'f', digits, 64)
}

// Round rounds half away from zero and returns an int, matching the
// rounding the stress composite uses.
func Round(v float64) int {
	return int(math.Round(v))
}
