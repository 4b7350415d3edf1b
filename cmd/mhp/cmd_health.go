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

	"github.com/spf13/cobra"

	"github.com/mhplabs/mhp-backend/pkg/insightclient"
	"github.com/mhplabs/mhp-backend/pkg/ux"
)

var (
	healthJSON bool

	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Check backend liveness and upstream configuration",
		RunE:  runHealthCommand,
	}
)

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false,
		"Output the raw response as JSON")
	rootCmd.AddCommand(healthCmd)
}

func runHealthCommand(cmd *cobra.Command, args []string) error {
	client := insightclient.New(serverURL, insightclient.WithSecret(secret))
	body, err := client.Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("backend at %s is unhealthy: %w", serverURL, err)
	}

	if healthJSON {
		out, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	ux.Success("backend is up at " + serverURL)
	if openai, ok := body["openai"].(map[string]any); ok {
		configured, _ := openai["configured"].(bool)
		model, _ := openai["model"].(string)
		if configured {
			ux.KeyValue("upstream", fmt.Sprintf("configured (%s)", model))
		} else {
			ux.Warning("upstream API key is not configured; insights are disabled")
		}
	}
	return nil
}
