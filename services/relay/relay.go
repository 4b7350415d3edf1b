// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// The relay is the public-edge forwarding layer for the insights API. It
// terminates client traffic, injects the shared proxy secret so the secret
// never reaches browsers, and passes everything else through to the
// orchestrator verbatim.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// hopHeaders are never forwarded upstream.
var hopHeaders = map[string]bool{
	"host":           true,
	"connection":     true,
	"content-length": true,
}

// Relay forwards /insights traffic to the backend origin.
type Relay struct {
	origin string
	secret string
	client *http.Client
}

// New builds a relay targeting origin (scheme://host[:port], trailing
// slashes stripped). secret may be empty, in which case no auth header is
// injected and the backend decides whether to accept the traffic.
func New(origin, secret string) *Relay {
	return &Relay{
		origin: strings.TrimRight(origin, "/"),
		secret: strings.TrimSpace(secret),
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

// ServeHTTP handles one client request: a CORS preflight is answered
// locally; everything else is forwarded and the upstream status,
// content type, and body are relayed unchanged.
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method == http.MethodOptions {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Accept")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	url := r.origin + "/insights"
	if req.URL.RawQuery != "" {
		url += "?" + req.URL.RawQuery
	}

	var body io.Reader
	switch req.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		body = req.Body
	}

	upstream, err := http.NewRequestWithContext(req.Context(), req.Method, url, body)
	if err != nil {
		slog.Error("Failed to build the upstream request", "error", err)
		writeRelayError(w, http.StatusBadGateway, "relay failed to reach the backend")
		return
	}

	copyForwardHeaders(upstream.Header, req.Header)
	if upstream.Header.Get("Accept") == "" {
		upstream.Header.Set("Accept", "application/json")
	}
	if r.secret != "" {
		upstream.Header.Set("x-mhp-proxy-secret", r.secret)
	}
	if ip := clientIP(req); ip != "" {
		upstream.Header.Set("X-Forwarded-For", ip)
	}

	resp, err := r.client.Do(upstream)
	if err != nil {
		slog.Error("Upstream request failed", "url", url, "error", err)
		writeRelayError(w, http.StatusBadGateway, "relay failed to reach the backend")
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		slog.Warn("Failed to stream the upstream body", "error", err)
	}
}

// copyForwardHeaders copies every client header except the hop-by-hop set.
func copyForwardHeaders(dst, src http.Header) {
	for key, values := range src {
		if hopHeaders[strings.ToLower(key)] {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

// clientIP resolves the caller address: an existing X-Forwarded-For chain
// wins, then the socket peer.
func clientIP(req *http.Request) string {
	if fwd := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func writeRelayError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"ok":false,"error":%q}`, msg)
}
