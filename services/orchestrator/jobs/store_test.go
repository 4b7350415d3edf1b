// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package jobs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhplabs/mhp-backend/services/orchestrator/datatypes"
)

// fakeClock is a manually advanced clock for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func validSections() *datatypes.InsightSections {
	s := &datatypes.InsightSections{}
	for _, key := range datatypes.SectionKeys {
		sec := datatypes.InsightSection{Title: "t", Body: "b"}
		switch key {
		case "overall":
			s.Overall = sec
		case "sleep":
			s.Sleep = sec
		case "stress":
			s.Stress = sec
		case "exercise":
			s.Exercise = sec
		case "nutrition":
			s.Nutrition = sec
		case "bp":
			s.BP = sec
		case "weight":
			s.Weight = sec
		}
	}
	return s
}

func TestCreateYieldsFreshPendingJobs(t *testing.T) {
	store := NewStore(15 * time.Minute)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		job := store.Create("2024-01-10")
		require.NotEmpty(t, job.ID)
		assert.False(t, seen[job.ID], "job ids must never repeat")
		seen[job.ID] = true
		assert.Equal(t, StatusPending, job.Status)
		assert.Equal(t, "2024-01-10", job.DayKey)
	}
	assert.Equal(t, 50, store.Len())
}

func TestGetUnknownJob(t *testing.T) {
	store := NewStore(15 * time.Minute)
	_, ok := store.Get("no-such-job")
	assert.False(t, ok)
}

func TestCompleteAndPoll(t *testing.T) {
	store := NewStore(15 * time.Minute)
	job := store.Create("2024-01-10")

	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusPending, got.Status)

	require.True(t, store.Complete(job.ID, validSections()))
	got, ok = store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusDone, got.Status)
	require.NotNil(t, got.Insights)
	assert.Empty(t, got.Error)
}

func TestFailAttachesRaw(t *testing.T) {
	store := NewStore(15 * time.Minute)
	job := store.Create("2024-01-10")

	require.True(t, store.Fail(job.ID, "upstream payload rejected", "some raw text"))
	got, _ := store.Get(job.ID)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "upstream payload rejected", got.Error)
	assert.Equal(t, "some raw text", got.Raw)
	assert.Nil(t, got.Insights)
}

func TestTerminalWriteHappensExactlyOnce(t *testing.T) {
	store := NewStore(15 * time.Minute)
	job := store.Create("2024-01-10")

	// Race completion against failure; exactly one must win.
	var wg sync.WaitGroup
	results := make([]bool, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0] = store.Complete(job.ID, validSections())
	}()
	go func() {
		defer wg.Done()
		results[1] = store.Fail(job.ID, "boom", "")
	}()
	wg.Wait()

	assert.NotEqual(t, results[0], results[1], "exactly one terminal write must succeed")

	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.NotEqual(t, StatusPending, got.Status, "the job must not stay pending")
	if got.Status == StatusDone {
		assert.NotNil(t, got.Insights)
		assert.Empty(t, got.Error)
	} else {
		assert.Nil(t, got.Insights)
		assert.NotEmpty(t, got.Error)
	}
}

func TestTTLPruning(t *testing.T) {
	clock := newFakeClock()
	store := NewStoreWithClock(15*time.Minute, clock)

	oldJob := store.Create("2024-01-09")
	clock.Advance(10 * time.Minute)
	freshJob := store.Create("2024-01-10")

	clock.Advance(6 * time.Minute) // old: 16m, fresh: 6m
	assert.Equal(t, 1, store.Prune())

	_, ok := store.Get(oldJob.ID)
	assert.False(t, ok, "expired job must be gone after pruning")
	_, ok = store.Get(freshJob.ID)
	assert.True(t, ok)
}

func TestCreatePrunesOpportunistically(t *testing.T) {
	clock := newFakeClock()
	store := NewStoreWithClock(15*time.Minute, clock)

	stale := store.Create("2024-01-09")
	clock.Advance(16 * time.Minute)
	store.Create("2024-01-10")

	_, ok := store.Get(stale.ID)
	assert.False(t, ok, "creating a job must sweep out expired ones")
	assert.Equal(t, 1, store.Len())
}

func TestTerminalWritesOnUnknownJob(t *testing.T) {
	store := NewStore(15 * time.Minute)
	assert.False(t, store.Complete("missing", validSections()))
	assert.False(t, store.Fail("missing", "x", ""))
}
