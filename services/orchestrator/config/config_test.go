// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Port != "8787" {
		t.Errorf("default port = %q", cfg.Port)
	}
	if cfg.OpenAIModel != "gpt-5.2" {
		t.Errorf("default model = %q", cfg.OpenAIModel)
	}
	if cfg.JobTTL != 15*time.Minute {
		t.Errorf("default job TTL = %v", cfg.JobTTL)
	}
	if cfg.ProductionLike() {
		t.Error("default env must not be production-like")
	}
	if cfg.OpenAIConfigured() {
		t.Error("no API key should be configured by default")
	}
}

func TestYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mhp.yaml")
	body := "port: \"9900\"\njob_ttl: 5m\nrate_post:\n  max: 2\n  window: 30s\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9900" {
		t.Errorf("port = %q, want yaml override", cfg.Port)
	}
	if cfg.JobTTL != 5*time.Minute {
		t.Errorf("job_ttl = %v", cfg.JobTTL)
	}
	if cfg.RatePost.Max != 2 || cfg.RatePost.Window != 30*time.Second {
		t.Errorf("rate_post = %+v", cfg.RatePost)
	}
	// Untouched values keep their defaults.
	if cfg.RateGet.Max != 60 {
		t.Errorf("rate_get.max = %d, want default", cfg.RateGet.Max)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mhp.yaml")
	if err := os.WriteFile(path, []byte("port: \"9900\"\nenv: staging\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("MHP_ENV", "production")
	t.Setenv("MHP_PROXY_SECRET", "s3cret")
	t.Setenv("MHP_JOB_TTL", "90s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" {
		t.Errorf("env must beat yaml, port = %q", cfg.Port)
	}
	if !cfg.ProductionLike() {
		t.Error("MHP_ENV=production must be production-like")
	}
	if cfg.ProxySecret != "s3cret" {
		t.Errorf("proxy secret = %q", cfg.ProxySecret)
	}
	if cfg.JobTTL != 90*time.Second {
		t.Errorf("job TTL = %v", cfg.JobTTL)
	}
}

func TestBadEnvValuesIgnored(t *testing.T) {
	t.Setenv("MHP_JOB_TTL", "not-a-duration")
	t.Setenv("MHP_RATE_POST_MAX", "-4")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JobTTL != 15*time.Minute {
		t.Errorf("malformed duration must keep the default, got %v", cfg.JobTTL)
	}
	if cfg.RatePost.Max != 6 {
		t.Errorf("non-positive max must keep the default, got %d", cfg.RatePost.Max)
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("an explicitly named but missing config file must error")
	}
}
