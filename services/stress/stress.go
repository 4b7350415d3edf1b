// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stress

import (
	"fmt"

	"github.com/mhplabs/mhp-backend/pkg/stats"
)

// Row is one display line of a scored day: the metric label plus a
// formatted value with either a signed delta or a qualitative annotation.
// Rows are informational only; nothing in the scoring path reads them back.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Result is the stress engine output for one day. Score and Label are nil
// when no configured metric produced a usable penalty.
type Result struct {
	DayKey           string   `json:"dayKey"`
	Score            *int     `json:"score"`
	Label            *string  `json:"label"`
	Rows             []Row    `json:"rows"`
	MissingValues    []string `json:"missingValues"`
	MissingBaselines []string `json:"missingBaselines"`
}

// penalty is a normalized [0,1] deviation measure for one metric.
type penalty struct {
	value  float64
	diff   float64
	method string
}

// baselinePenalty converts the deviation of value from its baseline into a
// [0,1] penalty. Prefers the z-score when the baseline has spread; falls
// back to percentage deviation when the mean is positive; otherwise no
// penalty is computable from this baseline.
func baselinePenalty(value float64, b *Baseline, dir Direction, cfg Config) *penalty {
	if b == nil || !stats.IsFinite(b.Mean) {
		return nil
	}
	diff := value - b.Mean

	if b.StdDev != nil && stats.IsFinite(*b.StdDev) && *b.StdDev > 0 {
		z := diff / *b.StdDev
		if dir == LowerWorse {
			z = -z
		}
		return &penalty{value: stats.Clamp01(z / cfg.ZScoreToFullPenalty), diff: diff, method: "z"}
	}

	if b.Mean > 0 {
		pct := diff / b.Mean
		if dir == LowerWorse {
			pct = -pct
		}
		return &penalty{value: stats.Clamp01(pct / cfg.PctToFullPenalty), diff: diff, method: "pct"}
	}

	return nil
}

// absolutePenalty evaluates the baseline-independent linear ramp. Reports
// false when no ramp is configured or the configured span is non-positive.
func absolutePenalty(value float64, dir Direction, abs *Absolute) (float64, bool) {
	if abs == nil || !stats.IsFinite(abs.Threshold) || !stats.IsFinite(abs.Full) {
		return 0, false
	}
	switch dir {
	case LowerWorse:
		span := abs.Threshold - abs.Full
		if span <= 0 {
			return 0, false
		}
		if value >= abs.Threshold {
			return 0, true
		}
		return stats.Clamp01((abs.Threshold - value) / span), true
	case HigherWorse:
		span := abs.Full - abs.Threshold
		if span <= 0 {
			return 0, false
		}
		if value <= abs.Threshold {
			return 0, true
		}
		return stats.Clamp01((value - abs.Threshold) / span), true
	}
	return 0, false
}

// LabelForScore maps a 0-100 score to its qualitative band.
func LabelForScore(score int, cfg Config) string {
	if score <= cfg.LowMax {
		return "Low"
	}
	if score <= cfg.ModerateMax {
		return "Moderate"
	}
	return "High"
}

// ScoreDay computes the composite stress result for dayKey over the given
// records. Inputs are evaluated in order; each contributes its weight only
// when a penalty was computable from both the day's value and a baseline.
// The absolute ramp can only raise a metric's penalty, never lower it.
func ScoreDay(days []Record, dayKey string, inputs []Input, cfg Config) Result {
	byDay := indexByDay(days)
	day := byDay[dayKey]

	usedWeight := 0.0
	weightedPenalty := 0.0
	rows := make([]Row, 0, len(inputs))
	missingValues := []string{}
	missingBaselines := []string{}

	for _, input := range inputs {
		value, ok := day.Metric(input.Key)
		if !ok {
			missingValues = append(missingValues, input.Label)
			continue
		}

		baseline := computeBaseline(byDay, dayKey, input.Key, cfg.BaselineLookbackDays, cfg.BaselineMinPoints)
		if baseline == nil {
			missingBaselines = append(missingBaselines, input.Label)
			rows = append(rows, Row{
				Label: input.Label,
				Value: fmt.Sprintf("%s %s (baseline building…)", stats.FormatNumber(value, input.Digits), input.Unit),
			})
			continue
		}

		pen := baselinePenalty(value, baseline, input.Direction, cfg)
		if pen == nil {
			missingBaselines = append(missingBaselines, input.Label)
			rows = append(rows, Row{
				Label: input.Label,
				Value: fmt.Sprintf("%s %s (baseline: %s %s)",
					stats.FormatNumber(value, input.Digits), input.Unit,
					stats.FormatNumber(baseline.Mean, input.Digits), input.Unit),
			})
			continue
		}

		if abs, ok := absolutePenalty(value, input.Direction, input.Absolute); ok && abs > pen.value {
			pen = &penalty{value: abs, diff: pen.diff, method: pen.method + "+abs"}
		}

		usedWeight += input.Weight
		weightedPenalty += input.Weight * pen.value

		rows = append(rows, Row{
			Label: input.Label,
			Value: fmt.Sprintf("%s %s (Δ %s %s)",
				stats.FormatNumber(value, input.Digits), input.Unit,
				stats.FormatSigned(pen.diff, input.Digits), input.Unit),
		})
	}

	result := Result{
		DayKey:           dayKey,
		Rows:             rows,
		MissingValues:    missingValues,
		MissingBaselines: missingBaselines,
	}
	if usedWeight <= 0 {
		return result
	}

	stressPct := stats.Round(weightedPenalty / usedWeight * 100)
	score := int(stats.Clamp(float64(100-stressPct), 0, 100))
	label := LabelForScore(score, cfg)
	result.Score = &score
	result.Label = &label
	return result
}
