// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mhplabs/mhp-backend/services/orchestrator/config"
	"github.com/mhplabs/mhp-backend/services/orchestrator/handlers"
	"github.com/mhplabs/mhp-backend/services/orchestrator/jobs"
	"github.com/mhplabs/mhp-backend/services/orchestrator/middleware"
	"github.com/mhplabs/mhp-backend/services/orchestrator/observability"
	"github.com/mhplabs/mhp-backend/services/orchestrator/ratelimit"
)

// SetupRoutes mounts the full API surface. Auth runs before the rate
// limiters so that secret-less probes never consume window budget, and
// both run before any handler touches the job store.
func SetupRoutes(router *gin.Engine, cfg config.Config, store *jobs.Store,
	gen *jobs.Generator, metrics *observability.InsightMetrics) {

	router.GET("/health", handlers.HandleHealth(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.RequireProxySecret(cfg.ProxySecret, cfg.ProductionLike())
	limit := middleware.RateLimit(
		ratelimit.New("any", cfg.RateAny.Max, cfg.RateAny.Window),
		ratelimit.New("post", cfg.RatePost.Max, cfg.RatePost.Window),
		ratelimit.New("get", cfg.RateGet.Max, cfg.RateGet.Window),
		metrics,
	)

	insights := router.Group("/insights", auth, limit)
	{
		insights.POST("", handlers.HandleStartInsights(cfg, store, gen, metrics))
		insights.GET("", handlers.HandlePollInsights(cfg, store))
	}

	router.POST("/stress", auth, handlers.HandleStressScore())
}
