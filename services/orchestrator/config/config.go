// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config builds the orchestrator configuration exactly once at
// startup: shipped defaults, overlaid by an optional YAML file, overlaid by
// environment variables. Core logic receives the resulting struct and never
// reads ambient state itself.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// RateLimit configures one fixed-window limiter instance.
type RateLimit struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

// Config is the full orchestrator configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string `yaml:"port"`
	// Env names the deployment flavor; "production" fails closed on a
	// missing proxy secret.
	Env string `yaml:"env"`

	OpenAIAPIKey string `yaml:"openai_api_key"`
	OpenAIModel  string `yaml:"openai_model"`

	// ProxySecret, when set, is required on every insights request via the
	// x-mhp-proxy-secret header.
	ProxySecret string `yaml:"proxy_secret"`

	// JobTTL bounds how long a finished or abandoned job stays resident.
	JobTTL time.Duration `yaml:"job_ttl"`
	// PruneInterval is how often the background sweep runs.
	PruneInterval time.Duration `yaml:"prune_interval"`
	// UpstreamTimeout bounds the single background generation call.
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`

	// The three limiters apply cumulatively to insights traffic.
	RateAny  RateLimit `yaml:"rate_any"`
	RatePost RateLimit `yaml:"rate_post"`
	RateGet  RateLimit `yaml:"rate_get"`

	// AnalysisVersion is echoed on completed insight payloads so clients
	// can invalidate cached results when the prompt contract changes.
	AnalysisVersion int `yaml:"analysis_version"`
}

// Default returns the shipped configuration values.
func Default() Config {
	return Config{
		Port:            "8787",
		Env:             "development",
		OpenAIModel:     "gpt-5.2",
		JobTTL:          15 * time.Minute,
		PruneInterval:   time.Minute,
		UpstreamTimeout: 75 * time.Second,
		RateAny:         RateLimit{Max: 30, Window: time.Minute},
		RatePost:        RateLimit{Max: 6, Window: time.Minute},
		RateGet:         RateLimit{Max: 60, Window: time.Minute},
		AnalysisVersion: 1,
	}
}

// Load assembles the configuration: defaults, then the YAML file at path
// (skipped when path is empty), then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read the config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse the config file: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// FromEnv assembles the configuration from defaults and the environment,
// honoring MHP_CONFIG as an optional YAML overlay in between.
func FromEnv() (Config, error) {
	return Load(os.Getenv("MHP_CONFIG"))
}

func (c *Config) applyEnv() {
	setString(&c.Port, "PORT")
	setString(&c.Env, "MHP_ENV")
	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.OpenAIModel, "OPENAI_MODEL")
	setString(&c.ProxySecret, "MHP_PROXY_SECRET")
	setDuration(&c.JobTTL, "MHP_JOB_TTL")
	setDuration(&c.PruneInterval, "MHP_PRUNE_INTERVAL")
	setDuration(&c.UpstreamTimeout, "MHP_UPSTREAM_TIMEOUT")
	setInt(&c.RateAny.Max, "MHP_RATE_ANY_MAX")
	setDuration(&c.RateAny.Window, "MHP_RATE_ANY_WINDOW")
	setInt(&c.RatePost.Max, "MHP_RATE_POST_MAX")
	setDuration(&c.RatePost.Window, "MHP_RATE_POST_WINDOW")
	setInt(&c.RateGet.Max, "MHP_RATE_GET_MAX")
	setDuration(&c.RateGet.Window, "MHP_RATE_GET_WINDOW")
}

// ProductionLike reports whether the deployment must fail closed when the
// proxy secret is missing.
func (c Config) ProductionLike() bool {
	return c.Env == "production"
}

// OpenAIConfigured reports whether the upstream call can be attempted.
func (c Config) OpenAIConfigured() bool {
	return c.OpenAIAPIKey != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}
