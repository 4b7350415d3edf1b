// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mhplabs/mhp-backend/pkg/logging"
)

var (
	rootCmd = &cobra.Command{
		Use:   "mhp",
		Short: "A CLI for the MHP health backend",
		Long: `mhp talks to the MHP backend and runs the stress scoring engine
locally: score daily records offline, request AI insights, and check
backend health.`,
	}

	serverURL string
	secret    string
	verbose   bool

	logger = logging.Default()
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8787",
		"Base URL of the backend (orchestrator or relay)")
	rootCmd.PersistentFlags().StringVar(&secret, "secret", os.Getenv("MHP_PROXY_SECRET"),
		"Shared proxy secret, if the backend requires one")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := logging.LevelWarn
		if verbose {
			level = logging.LevelDebug
		}
		logger = logging.New(logging.Config{Level: level, Service: "cli"})
	}
}

func main() {
	defer func() { logger.Close() }()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
