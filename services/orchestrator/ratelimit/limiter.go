// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ratelimit implements fixed-window request counting. Windows are
// discrete, non-overlapping slices of time; a request lands in the bucket
// for (route, client, current window) and is rejected once the bucket
// exceeds its threshold.
//
// Bucket cleanup is opportunistic: once the map grows past a high-water
// mark, keys from past windows are discarded. Growth within a single window
// is not bounded; that is an accepted limitation of the design.
package ratelimit

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// defaultHighWater is the bucket count that triggers garbage collection.
const defaultHighWater = 10000

// Limiter is one fixed-window counter set for a route class.
type Limiter struct {
	route     string
	max       int
	window    time.Duration
	highWater int

	mu      sync.Mutex
	buckets map[string]int
	now     func() time.Time
}

// New creates a limiter for the given route class allowing max requests per
// window per client.
func New(route string, max int, window time.Duration) *Limiter {
	return &Limiter{
		route:     route,
		max:       max,
		window:    window,
		highWater: defaultHighWater,
		buckets:   make(map[string]int),
		now:       time.Now,
	}
}

// Route reports the route class this limiter guards.
func (l *Limiter) Route() string { return l.route }

// Allow counts one request for the client in the current window. When the
// threshold is exceeded it reports false plus the seconds until the next
// window boundary (never less than 1), suitable for a Retry-After header.
func (l *Limiter) Allow(client string) (bool, int) {
	nowMs := l.now().UnixMilli()
	windowMs := l.window.Milliseconds()
	windowStart := nowMs / windowMs * windowMs
	key := fmt.Sprintf("%s|%d", client, windowStart)

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.buckets) > l.highWater {
		l.gcLocked(windowStart)
	}

	l.buckets[key]++
	if l.buckets[key] <= l.max {
		return true, 0
	}

	retryAfter := int((windowStart + windowMs - nowMs + 999) / 1000)
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter
}

// gcLocked drops every bucket that does not belong to the current window.
// Best effort: a concurrent window rollover may leave a few stale keys
// until the next sweep.
func (l *Limiter) gcLocked(windowStart int64) {
	suffix := fmt.Sprintf("|%d", windowStart)
	for key := range l.buckets {
		if !strings.HasSuffix(key, suffix) {
			delete(l.buckets, key)
		}
	}
}

// Size reports the resident bucket count.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
