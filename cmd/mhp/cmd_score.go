// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhplabs/mhp-backend/pkg/stats"
	"github.com/mhplabs/mhp-backend/pkg/ux"
	"github.com/mhplabs/mhp-backend/services/stress"
)

var (
	scoreFile string
	scoreDay  string
	scoreJSON bool

	scoreCmd = &cobra.Command{
		Use:   "score",
		Short: "Run the stress scoring engine over a local records file",
		Long: `Scores one day against its rolling baseline using a JSON array of
daily records, entirely offline.

Examples:
  mhp score --file days.json --day 2024-03-10
  mhp score --file days.json --day 2024-03-10 --json`,
		RunE: runScoreCommand,
	}
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreFile, "file", "f", "",
		"Path to a JSON array of daily records (required)")
	scoreCmd.Flags().StringVarP(&scoreDay, "day", "d", "",
		"Day to score, YYYY-MM-DD (default: newest day in the file)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false,
		"Output the raw result as JSON")
	scoreCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(scoreCmd)
}

// loadRecords reads and decodes a JSON array of daily records.
func loadRecords(path string) ([]stress.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var days []stress.Record
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("%s contains no records", path)
	}
	return days, nil
}

// newestDayKey returns the lexicographically greatest well-formed day key,
// which for YYYY-MM-DD is also the newest.
func newestDayKey(days []stress.Record) string {
	newest := ""
	for _, day := range days {
		if stats.IsDayKey(day.DayKey) && day.DayKey > newest {
			newest = day.DayKey
		}
	}
	return newest
}

func runScoreCommand(cmd *cobra.Command, args []string) error {
	days, err := loadRecords(scoreFile)
	if err != nil {
		return err
	}

	dayKey := scoreDay
	if dayKey == "" {
		dayKey = newestDayKey(days)
		if dayKey == "" {
			return fmt.Errorf("no record carries a valid dayKey; use --day")
		}
	}
	if !stats.IsDayKey(dayKey) {
		return fmt.Errorf("invalid --day %q, want YYYY-MM-DD", dayKey)
	}

	logger.Debug("scoring day", "day", dayKey, "records", len(days))
	result := stress.ScoreDay(days, dayKey, stress.DefaultInputs(), stress.DefaultConfig())

	if scoreJSON {
		out, err := json.MarshalIndent(map[string]any{
			"result": result,
			"color":  stress.ColorForScore(result.Score),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	printScore(result)
	return nil
}

func printScore(result stress.Result) {
	ux.Title("Stress score for " + result.DayKey)

	if result.Score == nil {
		ux.Warning("not enough data to score this day")
	} else {
		fmt.Printf("  %s %s  %s\n",
			ux.Styles.Bold.Render("Score:"),
			ux.RenderScore(*result.Score),
			ux.Styles.Muted.Render("("+*result.Label+" stress)"))
	}

	for _, row := range result.Rows {
		ux.KeyValue(row.Label, row.Value)
	}
	if len(result.MissingValues) > 0 {
		ux.Muted("  no value: " + strings.Join(result.MissingValues, ", "))
	}
	if len(result.MissingBaselines) > 0 {
		ux.Muted("  no baseline: " + strings.Join(result.MissingBaselines, ", "))
	}
}
