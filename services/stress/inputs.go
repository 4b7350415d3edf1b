// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stress

// Direction states which way a metric gets unhealthy.
type Direction string

const (
	// LowerWorse marks metrics where falling below baseline is bad (sleep).
	LowerWorse Direction = "lower_worse"
	// HigherWorse marks metrics where rising above baseline is bad (resting HR).
	HigherWorse Direction = "higher_worse"
)

// Absolute defines a secondary linear penalty ramp that is independent of
// the rolling baseline: penalty 0 at Threshold, penalty 1 at Full. It guards
// against baselines built on already-unhealthy history.
type Absolute struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Full      float64 `json:"full" yaml:"full"`
}

// Input is the static per-metric scoring configuration.
type Input struct {
	Key       string    `json:"key" yaml:"key"`
	Label     string    `json:"label" yaml:"label"`
	Unit      string    `json:"unit" yaml:"unit"`
	Digits    int       `json:"digits" yaml:"digits"`
	Direction Direction `json:"direction" yaml:"direction"`
	Weight    float64   `json:"weight" yaml:"weight"`
	Absolute  *Absolute `json:"absolute,omitempty" yaml:"absolute,omitempty"`
}

// Config carries the tuning constants of the scoring model. The numeric
// defaults are hand-tuned and intentionally preserved as-is; treat them as
// configuration, not as constants to re-derive.
type Config struct {
	BaselineLookbackDays int     `json:"baselineLookbackDays" yaml:"baseline_lookback_days"`
	BaselineMinPoints    int     `json:"baselineMinPoints" yaml:"baseline_min_points"`
	ZScoreToFullPenalty  float64 `json:"zScoreToFullPenalty" yaml:"z_score_to_full_penalty"`
	PctToFullPenalty     float64 `json:"pctToFullPenalty" yaml:"pct_to_full_penalty"`
	LowMax               int     `json:"lowMax" yaml:"low_max"`
	ModerateMax          int     `json:"moderateMax" yaml:"moderate_max"`
}

// DefaultConfig returns the shipped tuning values.
func DefaultConfig() Config {
	return Config{
		BaselineLookbackDays: 14,
		BaselineMinPoints:    5,
		ZScoreToFullPenalty:  2.0,
		PctToFullPenalty:     0.2,
		LowMax:               33,
		ModerateMax:          66,
	}
}

// DefaultInputs returns the fixed, ordered metric table the composite is
// built from. Order matters for the display rows.
func DefaultInputs() []Input {
	return []Input{
		{
			Key:       MetricSleepHours,
			Label:     "Sleep",
			Unit:      "h",
			Digits:    1,
			Direction: LowerWorse,
			Weight:    0.4,
			Absolute:  &Absolute{Threshold: 6.5, Full: 4.5},
		},
		{
			Key:       MetricRestingHR,
			Label:     "Resting HR",
			Unit:      "bpm",
			Digits:    0,
			Direction: HigherWorse,
			Weight:    0.4,
			Absolute:  &Absolute{Threshold: 60, Full: 78},
		},
		{
			Key:       MetricWorkoutLoad,
			Label:     "Exercise load",
			Unit:      "au",
			Digits:    0,
			Direction: HigherWorse,
			Weight:    0.2,
			Absolute:  &Absolute{Threshold: 110, Full: 220},
		},
	}
}
