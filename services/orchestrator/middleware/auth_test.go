// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	// Set Gin to test mode to reduce noise in test output
	gin.SetMode(gin.TestMode)
}

func authRouter(secret string, productionLike bool) *gin.Engine {
	router := gin.New()
	router.GET("/insights", RequireProxySecret(secret, productionLike), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestProxySecretMatch(t *testing.T) {
	router := authRouter("topsecret", true)

	req := httptest.NewRequest(http.MethodGet, "/insights", nil)
	req.Header.Set(ProxySecretHeader, "topsecret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("matching secret: status = %d", w.Code)
	}
}

func TestProxySecretMissingOrWrong(t *testing.T) {
	router := authRouter("topsecret", false)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong", "not-the-secret"},
		{"prefix", "topsecre"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/insights", nil)
			if tt.header != "" {
				req.Header.Set(ProxySecretHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestNoSecretFailsClosedInProduction(t *testing.T) {
	router := authRouter("", true)

	req := httptest.NewRequest(http.MethodGet, "/insights", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("production with no secret must fail closed, status = %d", w.Code)
	}
}

func TestNoSecretOpenInDevelopment(t *testing.T) {
	router := authRouter("", false)

	req := httptest.NewRequest(http.MethodGet, "/insights", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("development without a secret should pass, status = %d", w.Code)
	}
}
