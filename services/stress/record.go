// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stress implements the baseline-relative stress scoring engine.
//
// The engine converts sparse daily health metrics into a normalized 0-100
// wellness score: each configured metric is compared against a rolling
// statistical baseline built from the trailing days, deviations are turned
// into [0,1] penalties (z-score, percentage fallback, or absolute-threshold
// ramp), and the weighted composite is inverted so that a higher score means
// lower stress.
//
// Missing data is a first-class state here. A day without a metric value, or
// a metric without enough history for a baseline, contributes no weight to
// the composite instead of a fake zero. When nothing contributes weight the
// day is unscorable and the score is nil.
package stress

import (
	"encoding/json"

	"github.com/mhplabs/mhp-backend/pkg/stats"
)

// Metric keys for the fields of a Record.
const (
	MetricSleepHours     = "sleep_hours"
	MetricRestingHR      = "rhr_bpm"
	MetricWorkoutLoad    = "workout_load"
	MetricWorkoutMinutes = "workout_minutes"
	MetricSugarGrams     = "sugar_g"
	MetricSteps          = "steps"
	MetricCalories       = "calories"
	MetricProteinGrams   = "protein_g"
	MetricWeightKg       = "weight_kg"
	MetricBPSystolic     = "bp_systolic"
	MetricBPDiastolic    = "bp_diastolic"
)

// Record is one calendar day of metrics for a profile. Every metric is
// optional; a nil pointer means the value was never observed, which is not
// the same as zero.
type Record struct {
	DayKey         string   `json:"dayKey"`
	SleepHours     *float64 `json:"sleep_hours,omitempty"`
	RestingHR      *float64 `json:"rhr_bpm,omitempty"`
	WorkoutLoad    *float64 `json:"workout_load,omitempty"`
	WorkoutMinutes *float64 `json:"workout_minutes,omitempty"`
	SugarGrams     *float64 `json:"sugar_g,omitempty"`
	Steps          *float64 `json:"steps,omitempty"`
	Calories       *float64 `json:"calories,omitempty"`
	ProteinGrams   *float64 `json:"protein_g,omitempty"`
	WeightKg       *float64 `json:"weight_kg,omitempty"`
	BPSystolic     *float64 `json:"bp_systolic,omitempty"`
	BPDiastolic    *float64 `json:"bp_diastolic,omitempty"`
}

// Metric returns the finite value stored under the given metric key.
// Reports false for unknown keys, absent fields, and non-finite values.
func (r Record) Metric(key string) (float64, bool) {
	var p *float64
	switch key {
	case MetricSleepHours:
		p = r.SleepHours
	case MetricRestingHR:
		p = r.RestingHR
	case MetricWorkoutLoad:
		p = r.WorkoutLoad
	case MetricWorkoutMinutes:
		p = r.WorkoutMinutes
	case MetricSugarGrams:
		p = r.SugarGrams
	case MetricSteps:
		p = r.Steps
	case MetricCalories:
		p = r.Calories
	case MetricProteinGrams:
		p = r.ProteinGrams
	case MetricWeightKg:
		p = r.WeightKg
	case MetricBPSystolic:
		p = r.BPSystolic
	case MetricBPDiastolic:
		p = r.BPDiastolic
	default:
		return 0, false
	}
	if p == nil || !stats.IsFinite(*p) {
		return 0, false
	}
	return *p, true
}

// UnmarshalJSON decodes a record leniently: metric fields may arrive as
// numbers or numeric strings (exports from spreadsheets routinely quote
// them). Anything that does not coerce to a finite number is treated as
// absent rather than rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["dayKey"].(string); ok {
		r.DayKey = v
	}
	assign := func(key string, dst **float64) {
		if v, ok := stats.ToNumber(raw[key]); ok {
			*dst = &v
		}
	}
	assign(MetricSleepHours, &r.SleepHours)
	assign(MetricRestingHR, &r.RestingHR)
	assign(MetricWorkoutLoad, &r.WorkoutLoad)
	assign(MetricWorkoutMinutes, &r.WorkoutMinutes)
	assign(MetricSugarGrams, &r.SugarGrams)
	assign(MetricSteps, &r.Steps)
	assign(MetricCalories, &r.Calories)
	assign(MetricProteinGrams, &r.ProteinGrams)
	assign(MetricWeightKg, &r.WeightKg)
	assign(MetricBPSystolic, &r.BPSystolic)
	assign(MetricBPDiastolic, &r.BPDiastolic)
	return nil
}

// indexByDay builds a day-key lookup for a window of records. Later
// duplicates win, matching last-write semantics of the dashboard store.
func indexByDay(days []Record) map[string]Record {
	byKey := make(map[string]Record, len(days))
	for _, d := range days {
		if d.DayKey == "" {
			continue
		}
		byKey[d.DayKey] = d
	}
	return byKey
}
