// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhplabs/mhp-backend/pkg/insightclient"
	"github.com/mhplabs/mhp-backend/pkg/stats"
	"github.com/mhplabs/mhp-backend/pkg/ux"
	"github.com/mhplabs/mhp-backend/services/orchestrator/datatypes"
)

var (
	insightsFile     string
	insightsDay      string
	insightsProfile  string
	insightsName     string
	insightsTimeZone string
	insightsTimeout  time.Duration
	insightsJSON     bool

	insightsCmd = &cobra.Command{
		Use:   "insights",
		Short: "Request AI insights for a day of health records",
		Long: `Starts an insight-generation job on the backend and polls it to
completion. The upstream call can take a while; polling backs off
exponentially until the job finishes or the timeout expires.

Examples:
  mhp insights --file days.json --day 2024-03-10 --profile p1
  mhp insights --file days.json --day 2024-03-10 --profile p1 --server https://edge.example.com`,
		RunE: runInsightsCommand,
	}
)

func init() {
	insightsCmd.Flags().StringVarP(&insightsFile, "file", "f", "",
		"Path to a JSON array of daily records (required)")
	insightsCmd.Flags().StringVarP(&insightsDay, "day", "d", "",
		"Day to analyze, YYYY-MM-DD (default: newest day in the file)")
	insightsCmd.Flags().StringVarP(&insightsProfile, "profile", "p", "",
		"Profile identifier (required)")
	insightsCmd.Flags().StringVar(&insightsName, "name", "",
		"Profile display name")
	insightsCmd.Flags().StringVar(&insightsTimeZone, "timezone", "",
		"IANA time zone forwarded upstream")
	insightsCmd.Flags().DurationVar(&insightsTimeout, "timeout", insightclient.DefaultTimeout,
		"How long to wait for the job before giving up")
	insightsCmd.Flags().BoolVar(&insightsJSON, "json", false,
		"Output the raw response as JSON")
	insightsCmd.MarkFlagRequired("file")
	insightsCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(insightsCmd)
}

func runInsightsCommand(cmd *cobra.Command, args []string) error {
	days, err := loadRecords(insightsFile)
	if err != nil {
		return err
	}

	dayKey := insightsDay
	if dayKey == "" {
		dayKey = newestDayKey(days)
		if dayKey == "" {
			return fmt.Errorf("no record carries a valid dayKey; use --day")
		}
	}
	if !stats.IsDayKey(dayKey) {
		return fmt.Errorf("invalid --day %q, want YYYY-MM-DD", dayKey)
	}

	req := datatypes.InsightRequest{
		ProfileID:   insightsProfile,
		ProfileName: insightsName,
		DayKey:      dayKey,
		TimeZone:    insightsTimeZone,
		Days:        days,
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	client := insightclient.New(serverURL,
		insightclient.WithSecret(secret),
		insightclient.WithTimeout(insightsTimeout))

	ux.Muted(fmt.Sprintf("requesting insights for %s (%d days of records)...", dayKey, len(req.Days)))
	logger.Debug("starting insight job", "server", serverURL, "day", dayKey)

	done, err := client.FetchInsights(cmd.Context(), req)
	if err != nil {
		if errors.Is(err, insightclient.ErrTimeout) {
			return fmt.Errorf("the backend did not finish within %s", insightsTimeout)
		}
		return err
	}

	if insightsJSON {
		out, err := json.MarshalIndent(done, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	printInsights(done)
	return nil
}

func printInsights(done *datatypes.DoneResponse) {
	ux.Title(fmt.Sprintf("Insights for %s (model %s)", done.DayKey, done.Model))
	for _, key := range datatypes.SectionKeys {
		section, ok := done.Insights.Section(key)
		if !ok {
			continue
		}
		ux.Box(section.Title, section.Body)
	}
}
