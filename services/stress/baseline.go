// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stress

import "github.com/mhplabs/mhp-backend/pkg/stats"

// Baseline is the rolling mean/stddev summary of one metric over a trailing
// window. StdDev is nil when it could not be computed; Samples is the number
// of finite values the window yielded.
type Baseline struct {
	Mean    float64  `json:"mean"`
	StdDev  *float64 `json:"sd"`
	Samples int      `json:"n"`
}

// ComputeBaseline builds the baseline for metricKey over a trailing window
// of lookbackDays calendar days ending the day before endDayKeyExclusive.
// Days missing from the input and days lacking the metric are skipped.
// Returns nil when fewer than minPoints finite samples are available or when
// endDayKeyExclusive is malformed. An invalid baseline propagates as nil,
// never as a zero default.
func ComputeBaseline(days []Record, endDayKeyExclusive, metricKey string, lookbackDays, minPoints int) *Baseline {
	return computeBaseline(indexByDay(days), endDayKeyExclusive, metricKey, lookbackDays, minPoints)
}

func computeBaseline(byDay map[string]Record, endDayKeyExclusive, metricKey string, lookbackDays, minPoints int) *Baseline {
	if !stats.IsDayKey(endDayKeyExclusive) {
		return nil
	}
	values := make([]float64, 0, lookbackDays)
	for offset := lookbackDays; offset >= 1; offset-- {
		dayKey := stats.AddDays(endDayKeyExclusive, -offset)
		day, ok := byDay[dayKey]
		if !ok {
			continue
		}
		if v, ok := day.Metric(metricKey); ok {
			values = append(values, v)
		}
	}
	if len(values) < minPoints {
		return nil
	}
	mean, ok := stats.Mean(values)
	if !ok {
		return nil
	}
	b := &Baseline{Mean: mean, Samples: len(values)}
	if sd, ok := stats.StdDev(values); ok && stats.IsFinite(sd) {
		b.StdDev = &sd
	}
	return b
}
