// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// sweepInterval bounds how often the limiter scans for stale buckets.
const sweepInterval = time.Minute

// Clock returns the current time. Injectable for tests.
type Clock func() time.Time

type limiterKey struct {
	Scope  string
	Client string
}

type bucket struct {
	times  []time.Time
	window time.Duration
}

// Limiter is a fixed-window rate limiter keyed by (scope, client).
// It keeps per-key request timestamps guarded by a single mutex and
// evicts buckets whose entries have all aged out of their window.
// Construct one per process and inject it into handlers.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[limiterKey]*bucket
	now       Clock
	lastSweep time.Time
}

// NewLimiter creates a rate limiter using the wall clock.
func NewLimiter() *Limiter {
	return NewLimiterWithClock(time.Now)
}

// NewLimiterWithClock creates a rate limiter with an injected clock.
func NewLimiterWithClock(clock Clock) *Limiter {
	return &Limiter{
		buckets:   make(map[limiterKey]*bucket),
		now:       clock,
		lastSweep: clock(),
	}
}

// Allow records a request for (scope, client) and reports whether it is
// within limit requests per window. The timestamp is only recorded when
// the request is allowed.
func (l *Limiter) Allow(scope, client string, limit int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	key := limiterKey{Scope: scope, Client: client}
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{window: window}
		l.buckets[key] = b
	}
	b.window = window

	// Drop timestamps that have aged out of the window
	cutoff := now.Add(-window)
	kept := b.times[:0]
	for _, t := range b.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.times = kept

	if len(b.times) >= limit {
		return false
	}

	b.times = append(b.times, now)
	return true
}

// sweep evicts buckets whose newest entry is older than their window.
// Called with the mutex held.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now

	for key, b := range l.buckets {
		if len(b.times) == 0 || now.Sub(b.times[len(b.times)-1]) > b.window {
			delete(l.buckets, key)
		}
	}
}

// Middleware returns rate-limiting middleware for a named scope.
// Requests over the limit get 429 with a Retry-After hint.
func (l *Limiter) Middleware(scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := ClientIP(r)
			if !l.Allow(scope, client, limit, window) {
				slog.Warn("rate limit exceeded", "scope", scope, "client", client, "path", r.URL.Path)
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
				writeAPIError(w, http.StatusTooManyRequests, "Too many requests. Please wait a moment and try again.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
