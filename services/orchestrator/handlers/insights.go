// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mhplabs/mhp-backend/services/orchestrator/config"
	"github.com/mhplabs/mhp-backend/services/orchestrator/datatypes"
	"github.com/mhplabs/mhp-backend/services/orchestrator/jobs"
	"github.com/mhplabs/mhp-backend/services/orchestrator/observability"
)

var insightsTracer = otel.Tracer("mhp.orchestrator.handlers")

// HandleStartInsights accepts an insight-generation request, registers a
// pending job, and hands the upstream call to the generator. The response
// is always 202 with the job id; the caller polls for the outcome. Nothing
// about the upstream call can fail this request.
func HandleStartInsights(cfg config.Config, store *jobs.Store, gen *jobs.Generator, metrics *observability.InsightMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := insightsTracer.Start(c.Request.Context(), "HandleStartInsights")
		defer span.End()

		var req datatypes.InsightRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to parse the insights request", "error", err)
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "invalid request body"})
			return
		}

		req.Normalize()
		if err := req.Validate(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		if !cfg.OpenAIConfigured() {
			slog.Error("Rejected insights request: no upstream API key configured")
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "OPENAI_API_KEY is not configured"})
			return
		}

		job := store.Create(req.DayKey)
		span.SetAttributes(
			attribute.String("mhp.job_id", job.ID),
			attribute.String("mhp.day_key", req.DayKey),
			attribute.Int("mhp.days", len(req.Days)),
		)
		metrics.JobStarted()
		gen.Launch(job.ID, req)

		slog.Info("Insight job accepted", "jobId", job.ID, "dayKey", req.DayKey, "days", len(req.Days))
		c.JSON(http.StatusAccepted, datatypes.StartResponse{
			OK:     true,
			JobID:  job.ID,
			Status: string(jobs.StatusPending),
		})
	}
}

// HandlePollInsights reports the state of a job: 202 while pending, 200
// with the payload once done, 404 for ids the store does not know (never
// created, or already evicted), 500 for jobs that ended in error. The raw
// upstream text rides along on errors only outside production-like
// deployments.
func HandlePollInsights(cfg config.Config, store *jobs.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := insightsTracer.Start(c.Request.Context(), "HandlePollInsights")
		defer span.End()

		jobID := strings.TrimSpace(c.Query("jobId"))
		if jobID == "" {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "jobId query parameter is required"})
			return
		}
		span.SetAttributes(attribute.String("mhp.job_id", jobID))

		job, ok := store.Get(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, datatypes.ErrorResponse{Error: "unknown job"})
			return
		}

		switch job.Status {
		case jobs.StatusPending:
			c.JSON(http.StatusAccepted, datatypes.StartResponse{
				OK:     true,
				JobID:  job.ID,
				Status: string(jobs.StatusPending),
			})
		case jobs.StatusDone:
			c.JSON(http.StatusOK, datatypes.DoneResponse{
				OK:              true,
				JobID:           job.ID,
				Status:          string(jobs.StatusDone),
				Model:           cfg.OpenAIModel,
				DayKey:          job.DayKey,
				AnalysisVersion: cfg.AnalysisVersion,
				Insights:        job.Insights,
			})
		case jobs.StatusError:
			span.SetStatus(codes.Error, job.Error)
			resp := datatypes.ErrorResponse{Error: job.Error}
			if !cfg.ProductionLike() {
				resp.Raw = job.Raw
			}
			c.JSON(http.StatusInternalServerError, resp)
		default:
			slog.Error("Job in unknown state", "jobId", job.ID, "status", job.Status)
			c.JSON(http.StatusInternalServerError, datatypes.ErrorResponse{Error: "job in unknown state"})
		}
	}
}
