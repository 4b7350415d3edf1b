// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/mhplabs/mhp-backend/services/orchestrator/config"
	"github.com/mhplabs/mhp-backend/services/orchestrator/datatypes"
	"github.com/mhplabs/mhp-backend/services/stress"
)

// HandleHealth reports liveness plus whether the upstream is usable, so a
// frontend can disable the insights UI instead of collecting doomed jobs.
func HandleHealth(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok": true,
			"openai": gin.H{
				"configured": cfg.OpenAIConfigured(),
				"model":      cfg.OpenAIModel,
			},
		})
	}
}

// HandleStressScore scores a single day server-side over the posted
// records. Purely computational; no job, no upstream call.
func HandleStressScore() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := insightsTracer.Start(c.Request.Context(), "HandleStressScore")
		defer span.End()

		var req datatypes.StressRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		result := stress.ScoreDay(req.Days, req.DayKey, stress.DefaultInputs(), stress.DefaultConfig())
		c.JSON(http.StatusOK, gin.H{
			"ok":     true,
			"result": result,
			"color":  stress.ColorForScore(result.Score),
		})
	}
}
