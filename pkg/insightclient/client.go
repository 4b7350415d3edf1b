// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package insightclient is the polling client for the insights API: it
// starts a job, then polls with exponential backoff until the job reaches
// a terminal state or the local deadline expires.
package insightclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mhplabs/mhp-backend/services/orchestrator/datatypes"
)

const (
	// DefaultTimeout bounds the whole start-and-poll exchange.
	DefaultTimeout = 90 * time.Second

	initialDelay  = 650 * time.Millisecond
	maxDelay      = 2400 * time.Millisecond
	backoffFactor = 1.35
)

// ErrTimeout reports that the local polling deadline passed while the job
// was still pending. Distinct from any server-side failure.
var ErrTimeout = errors.New("timed out waiting for insights")

// Client talks to an insights endpoint (the orchestrator directly, or the
// relay in front of it).
type Client struct {
	baseURL string
	secret  string
	httpc   *http.Client
	timeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithSecret sets the shared proxy secret sent on every request. Only
// needed when talking to the orchestrator directly.
func WithSecret(secret string) Option {
	return func(c *Client) { c.secret = secret }
}

// WithTimeout overrides the overall polling deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for the given base URL (scheme://host[:port]).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   http.DefaultClient,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchInsights starts an insight job and polls it to completion. The
// returned response carries the seven-section payload. A non-2xx start or
// poll response surfaces the server's message; a pending job past the
// deadline surfaces ErrTimeout; ctx cancellation aborts between polls and
// in-flight requests.
func (c *Client) FetchInsights(ctx context.Context, req datatypes.InsightRequest) (*datatypes.DoneResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	jobID, err := c.start(ctx, req)
	if err != nil {
		return nil, err
	}

	delay := initialDelay
	for {
		done, pending, err := c.poll(ctx, jobID)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == context.DeadlineExceeded {
				return nil, ErrTimeout
			}
			return nil, err
		}
		if !pending {
			return done, nil
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, ErrTimeout
			}
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * backoffFactor)
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

// Health calls GET /health and decodes the upstream-configuration report.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode the health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health check failed (%d)", resp.StatusCode)
	}
	return body, nil
}

func (c *Client) start(ctx context.Context, req datatypes.InsightRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode the request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/insights", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.addSecret(httpReq)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("start request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusAccepted {
		return "", serverError(resp.StatusCode, body)
	}

	var started datatypes.StartResponse
	if err := json.Unmarshal(body, &started); err != nil {
		return "", fmt.Errorf("failed to decode the start response: %w", err)
	}
	jobID := strings.TrimSpace(started.JobID)
	if jobID == "" {
		return "", errors.New("backend did not return a jobId")
	}
	return jobID, nil
}

// poll reports (done, pending, err): exactly one of the three outcomes.
func (c *Client) poll(ctx context.Context, jobID string) (*datatypes.DoneResponse, bool, error) {
	target := c.baseURL + "/insights?jobId=" + url.QueryEscape(jobID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, err
	}
	httpReq.Header.Set("Accept", "application/json")
	c.addSecret(httpReq)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, false, fmt.Errorf("poll request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	switch resp.StatusCode {
	case http.StatusAccepted:
		return nil, true, nil
	case http.StatusOK:
		var done datatypes.DoneResponse
		if err := json.Unmarshal(body, &done); err != nil {
			return nil, false, fmt.Errorf("failed to decode the done response: %w", err)
		}
		return &done, false, nil
	default:
		return nil, false, serverError(resp.StatusCode, body)
	}
}

func (c *Client) addSecret(req *http.Request) {
	if c.secret != "" {
		req.Header.Set("x-mhp-proxy-secret", c.secret)
	}
}

// serverError prefers the structured message the API puts in its error
// bodies, falling back to the bare status code.
func serverError(status int, body []byte) error {
	var errResp datatypes.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("request failed (%d): %s", status, errResp.Error)
	}
	return fmt.Errorf("request failed (%d)", status)
}
