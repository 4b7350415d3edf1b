// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the insights service:
// shared-secret authentication and per-route rate limiting. Auth and rate
// limiting run before any handler, so rejected requests never reach the job
// pipeline.
package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mhplabs/mhp-backend/services/orchestrator/datatypes"
)

// ProxySecretHeader carries the shared secret the forwarding layer injects.
const ProxySecretHeader = "x-mhp-proxy-secret"

// RequireProxySecret returns middleware enforcing the shared-secret
// contract:
//
//   - secret configured: the header must match exactly, otherwise 401.
//   - no secret, production-like deployment: 500. A production deployment
//     must fail closed, never run silently open.
//   - no secret, development: requests pass.
//
// The comparison is constant-time so the middleware does not leak secret
// prefixes through response timing.
func RequireProxySecret(secret string, productionLike bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			if productionLike {
				slog.Error("Proxy secret is not configured in a production-like deployment")
				c.AbortWithStatusJSON(http.StatusInternalServerError, datatypes.ErrorResponse{
					Error: "server is misconfigured",
				})
				return
			}
			c.Next()
			return
		}

		supplied := strings.TrimSpace(c.GetHeader(ProxySecretHeader))
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, datatypes.ErrorResponse{
				Error: "unauthorized",
			})
			return
		}
		c.Next()
	}
}
