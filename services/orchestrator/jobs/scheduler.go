// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Scheduler periodically prunes the job store. It uses the ticker + done
// channel pattern: Stop or context cancellation ends the loop, and the
// running flag is mutex-guarded so Start/Stop are safe from any goroutine.
type Scheduler struct {
	store    *Store
	interval time.Duration
	onPrune  func(count int)

	mu      sync.Mutex
	done    chan struct{}
	running bool
}

// NewScheduler creates a pruning scheduler for the store. onPrune, when
// non-nil, receives the eviction count of each sweep (used to feed metrics).
func NewScheduler(store *Store, interval time.Duration, onPrune func(count int)) *Scheduler {
	return &Scheduler{
		store:    store,
		interval: interval,
		onPrune:  onPrune,
	}
}

// Start launches the background sweep loop. Returns an error if the
// scheduler is already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.done = make(chan struct{}) // Reset done channel for potential restart
	s.mu.Unlock()

	slog.Info("Job pruning scheduler starting", "interval", s.interval.String())
	go s.runLoop(ctx)
	return nil
}

func (s *Scheduler) runLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Job pruning scheduler stopped (context cancelled)")
			return
		case <-s.done:
			slog.Info("Job pruning scheduler stopped (stop requested)")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Scheduler) sweep() {
	pruned := s.store.Prune()
	if pruned > 0 && s.onPrune != nil {
		s.onPrune(pruned)
	}
}

// Stop ends the sweep loop. Safe to call when not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.done)
	s.running = false
}
