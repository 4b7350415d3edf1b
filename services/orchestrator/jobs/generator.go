// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mhplabs/mhp-backend/services/llm"
	"github.com/mhplabs/mhp-backend/services/orchestrator/datatypes"
	"github.com/mhplabs/mhp-backend/services/orchestrator/observability"
)

// maxRawBytes bounds the upstream text kept on a failed job for diagnosis.
const maxRawBytes = 4096

// Generator performs the upstream generation call for a job, outside the
// request/response cycle, and writes the single terminal result back into
// the store. Launch never blocks the caller.
type Generator struct {
	store   *Store
	client  llm.LLMClient
	metrics *observability.InsightMetrics
	timeout time.Duration
	clock   Clock
}

// NewGenerator wires a generator to its store and LLM backend. metrics may
// be nil. timeout bounds the single upstream call.
func NewGenerator(store *Store, client llm.LLMClient, metrics *observability.InsightMetrics, timeout time.Duration) *Generator {
	return &Generator{
		store:   store,
		client:  client,
		metrics: metrics,
		timeout: timeout,
		clock:   SystemClock(),
	}
}

// Launch spawns the background completion task for an already-created
// pending job. The triggering HTTP request returns immediately; the task's
// only side effect is exactly one terminal write on the store.
func (g *Generator) Launch(jobID string, req datatypes.InsightRequest) {
	go g.run(jobID, req)
}

func (g *Generator) run(jobID string, req datatypes.InsightRequest) {
	// The job must outlive the triggering request, so the deadline is
	// detached from any request context.
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	start := g.clock.Now()
	raw, err := g.client.Generate(ctx, BuildPrompt(req), llm.GenerationParams{JSONObject: true})
	elapsed := g.clock.Now().Sub(start).Seconds()
	if err != nil {
		slog.Error("Insight generation call failed", "jobId", jobID, "error", err)
		if g.store.Fail(jobID, fmt.Sprintf("insight generation failed: %v", err), "") {
			g.metrics.JobFinished(observability.OutcomeError, elapsed)
		}
		return
	}

	sections, err := datatypes.ParseInsightPayload(raw)
	if err != nil {
		slog.Warn("Upstream returned an unusable insight payload", "jobId", jobID, "error", err)
		if g.store.Fail(jobID, fmt.Sprintf("upstream payload rejected: %v", err), truncateRaw(raw)) {
			g.metrics.JobFinished(observability.OutcomeError, elapsed)
		}
		return
	}

	if g.store.Complete(jobID, sections) {
		g.metrics.JobFinished(observability.OutcomeDone, elapsed)
		slog.Info("Insight job completed", "jobId", jobID, "dayKey", req.DayKey, "elapsed_s", elapsed)
	}
}

// BuildPrompt renders the generation prompt for a request: the profile, the
// scored day, and the trailing daily records as JSON, plus the strict
// response contract the parser enforces.
func BuildPrompt(req datatypes.InsightRequest) string {
	daysJSON, err := json.Marshal(req.Days)
	if err != nil {
		daysJSON = []byte("[]")
	}

	name := req.ProfileName
	if name == "" {
		name = req.ProfileID
	}

	var b strings.Builder
	b.WriteString("You are a careful personal-health analyst. ")
	fmt.Fprintf(&b, "Analyze the daily metrics for %s, focusing on %s (time zone %s).\n\n", name, req.DayKey, req.TimeZone)
	b.WriteString("Daily records, oldest first, sparse fields omitted:\n")
	b.Write(daysJSON)
	b.WriteString("\n\nRespond with a single JSON object containing exactly these keys: ")
	b.WriteString(strings.Join(datatypes.SectionKeys, ", "))
	b.WriteString(". Each value must be an object with non-empty \"title\" and \"body\" strings. ")
	b.WriteString("No markdown, no prose outside the JSON object.")
	return b.String()
}

func truncateRaw(raw string) string {
	if len(raw) <= maxRawBytes {
		return raw
	}
	return raw[:maxRawBytes]
}
