// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mhplabs/mhp-backend/services/orchestrator/config"
)

func TestHealthReportsUpstreamState(t *testing.T) {
	for _, tc := range []struct {
		name       string
		key        string
		configured bool
	}{
		{"with key", "sk-test", true},
		{"without key", "", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.OpenAIAPIKey = tc.key
			router := gin.New()
			router.GET("/health", HandleHealth(cfg))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}

			var body struct {
				OK     bool `json:"ok"`
				OpenAI struct {
					Configured bool   `json:"configured"`
					Model      string `json:"model"`
				} `json:"openai"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if !body.OK {
				t.Error("health must report ok=true")
			}
			if body.OpenAI.Configured != tc.configured {
				t.Errorf("configured = %v, want %v", body.OpenAI.Configured, tc.configured)
			}
			if body.OpenAI.Model != cfg.OpenAIModel {
				t.Errorf("model = %q, want %q", body.OpenAI.Model, cfg.OpenAIModel)
			}
		})
	}
}

func TestStressScoreEndpoint(t *testing.T) {
	router := gin.New()
	router.POST("/stress", HandleStressScore())

	// 20 stable days then a short night with an elevated resting HR.
	var days strings.Builder
	days.WriteString("[")
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&days, `{"dayKey": "2024-03-%02d", "sleep_hours": 7.5, "rhr_bpm": 55, "workout_load": 100},`, i)
	}
	days.WriteString(`{"dayKey": "2024-03-21", "sleep_hours": 4.0, "rhr_bpm": 72, "workout_load": 100}]`)

	body := fmt.Sprintf(`{"dayKey": "2024-03-21", "days": %s}`, days.String())
	req := httptest.NewRequest(http.MethodPost, "/stress", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		OK     bool `json:"ok"`
		Result struct {
			DayKey string  `json:"dayKey"`
			Score  *int    `json:"score"`
			Label  *string `json:"label"`
		} `json:"result"`
		Color string `json:"color"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.OK || resp.Result.DayKey != "2024-03-21" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if resp.Result.Score == nil || resp.Result.Label == nil {
		t.Fatal("a fully populated day must be scorable")
	}
	if *resp.Result.Score > 50 {
		t.Errorf("score = %d, a hard deviation day should score low", *resp.Result.Score)
	}
	if resp.Color == "" {
		t.Error("color must be set")
	}
}

func TestStressScoreRejectsBadRequests(t *testing.T) {
	router := gin.New()
	router.POST("/stress", HandleStressScore())

	for _, tc := range []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"missing dayKey", `{"days": [{"dayKey": "2024-03-10"}]}`},
		{"empty days", `{"dayKey": "2024-03-10", "days": []}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/stress", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}
