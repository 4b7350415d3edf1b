// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mhplabs/mhp-backend/services/orchestrator/datatypes"
	"github.com/mhplabs/mhp-backend/services/orchestrator/observability"
	"github.com/mhplabs/mhp-backend/services/orchestrator/ratelimit"
)

// RateLimit applies the three insight limiters cumulatively: every request
// is counted against combined, POSTs additionally against post, GETs
// against get. The first limiter to reject wins; the response carries a
// Retry-After hint in seconds.
func RateLimit(combined, post, get *ratelimit.Limiter, metrics *observability.InsightMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.ClientIP()

		applicable := []*ratelimit.Limiter{combined}
		switch c.Request.Method {
		case http.MethodPost:
			applicable = append(applicable, post)
		case http.MethodGet:
			applicable = append(applicable, get)
		}

		for _, limiter := range applicable {
			if limiter == nil {
				continue
			}
			ok, retryAfter := limiter.Allow(client)
			if ok {
				continue
			}
			metrics.RateLimitRejected(limiter.Route())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, datatypes.ErrorResponse{
				Error: "too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}
