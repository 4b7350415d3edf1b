// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package jobs implements the asynchronous insight-generation pipeline:
// an in-memory job store with TTL eviction, a background pruning scheduler,
// and the generator that performs the upstream LLM call out-of-band.
//
// The store is the single synchronization point between the request path
// and the background completion path. A job moves pending -> done or
// pending -> error exactly once; pollers observe either pending or a fully
// written terminal record, never a partial one.
package jobs

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mhplabs/mhp-backend/services/orchestrator/datatypes"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Job tracks one insight-generation request from creation to its terminal
// outcome. Insights is set only on done; Error (and optionally Raw, a
// truncated copy of the upstream text) only on error.
type Job struct {
	ID        string
	Status    Status
	CreatedAt time.Time
	DayKey    string
	Insights  *datatypes.InsightSections
	Error     string
	Raw       string
}

// Store owns the jobId -> Job mapping. All mutation goes through its
// methods; the generator is the only caller of the terminal writers.
type Store struct {
	mu    sync.RWMutex
	jobs  map[string]*Job
	ttl   time.Duration
	clock Clock
}

// NewStore creates a job store with the given TTL.
func NewStore(ttl time.Duration) *Store {
	return NewStoreWithClock(ttl, SystemClock())
}

// NewStoreWithClock is NewStore with an injected clock, for tests.
func NewStoreWithClock(ttl time.Duration, clock Clock) *Store {
	return &Store{
		jobs:  make(map[string]*Job),
		ttl:   ttl,
		clock: clock,
	}
}

// Create registers a new pending job for dayKey and returns it. The job id
// is a fresh UUID; the insert completes before the caller can hand the id
// to a client. Expired jobs are pruned opportunistically first.
func (s *Store) Create(dayKey string) Job {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)

	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		CreatedAt: now,
		DayKey:    dayKey,
	}
	s.jobs[job.ID] = job
	return *job
}

// Get returns a copy of the job, so callers can read it without holding the
// store's lock. Reports false for unknown or already-pruned ids.
func (s *Store) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Complete transitions a pending job to done. Returns false when the job is
// unknown or already terminal; a lost race leaves the first writer's result
// in place.
func (s *Store) Complete(id string, insights *datatypes.InsightSections) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || job.Status != StatusPending {
		return false
	}
	job.Status = StatusDone
	job.Insights = insights
	return true
}

// Fail transitions a pending job to error, attaching the failure message
// and a truncated copy of the raw upstream text for diagnosis. Returns
// false when the job is unknown or already terminal.
func (s *Store) Fail(id, message, raw string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || job.Status != StatusPending {
		return false
	}
	job.Status = StatusError
	job.Error = message
	job.Raw = raw
	return true
}

// Prune deletes every job older than the TTL, plus any structurally invalid
// record, and returns how many were removed.
func (s *Store) Prune() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(now)
}

func (s *Store) pruneLocked(now time.Time) int {
	pruned := 0
	for id, job := range s.jobs {
		if job == nil || job.ID == "" || now.Sub(job.CreatedAt) > s.ttl {
			delete(s.jobs, id)
			pruned++
		}
	}
	if pruned > 0 {
		slog.Debug("Pruned expired insight jobs", "count", pruned, "resident", len(s.jobs))
	}
	return pruned
}

// Len reports how many jobs are resident.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
