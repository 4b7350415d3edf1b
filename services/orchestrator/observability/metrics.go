// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the insights
// pipeline: job lifecycle counters, in-flight gauges, upstream latency, and
// rate-limit rejections. Metrics are exposed on /metrics.
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "mhp"

const insightsSubsystem = "insights"

// Outcome labels for completed jobs.
const (
	OutcomeDone  = "done"
	OutcomeError = "error"
)

// InsightMetrics holds all Prometheus metrics for the insight job pipeline.
type InsightMetrics struct {
	// JobsStarted counts jobs accepted into the pipeline.
	JobsStarted prometheus.Counter

	// JobsFinished counts terminal transitions by outcome (done, error).
	JobsFinished *prometheus.CounterVec

	// ActiveJobs tracks jobs currently pending completion.
	ActiveJobs prometheus.Gauge

	// UpstreamDuration measures the background generation call.
	// Labels: outcome (done, error)
	UpstreamDuration *prometheus.HistogramVec

	// RateLimited counts 429 rejections by route class (any, post, get).
	RateLimited *prometheus.CounterVec

	// JobsPruned counts jobs evicted by TTL pruning.
	JobsPruned prometheus.Counter
}

// NewInsightMetrics creates and registers the pipeline metrics against the
// given registerer. Tests pass a private registry; main passes the default.
func NewInsightMetrics(reg prometheus.Registerer) *InsightMetrics {
	factory := promauto.With(reg)
	return &InsightMetrics{
		JobsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: insightsSubsystem,
			Name:      "jobs_started_total",
			Help:      "Insight jobs accepted into the pipeline.",
		}),
		JobsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: insightsSubsystem,
			Name:      "jobs_finished_total",
			Help:      "Terminal job transitions by outcome.",
		}, []string{"outcome"}),
		ActiveJobs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: insightsSubsystem,
			Name:      "jobs_active",
			Help:      "Jobs currently pending completion.",
		}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: insightsSubsystem,
			Name:      "upstream_duration_seconds",
			Help:      "Duration of the background generation call.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"outcome"}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: insightsSubsystem,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the fixed-window rate limiter.",
		}, []string{"route"}),
		JobsPruned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: insightsSubsystem,
			Name:      "jobs_pruned_total",
			Help:      "Jobs evicted by TTL pruning.",
		}),
	}
}

// JobStarted records a newly accepted job.
func (m *InsightMetrics) JobStarted() {
	if m == nil {
		return
	}
	m.JobsStarted.Inc()
	m.ActiveJobs.Inc()
}

// JobFinished records a terminal transition and the upstream call duration.
func (m *InsightMetrics) JobFinished(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.JobsFinished.WithLabelValues(outcome).Inc()
	m.UpstreamDuration.WithLabelValues(outcome).Observe(seconds)
	m.ActiveJobs.Dec()
}

// RateLimitRejected records a 429 for the given route class.
func (m *InsightMetrics) RateLimitRejected(route string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(route).Inc()
}

// JobsEvicted records TTL-pruned jobs.
func (m *InsightMetrics) JobsEvicted(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.JobsPruned.Add(float64(count))
}
