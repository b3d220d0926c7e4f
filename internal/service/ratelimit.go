// Package service implements the application layer: account lifecycle,
// order flow, admin controls, and leaderboard computation. It composes
// the engine, the stores, and the push hub.
package service

import (
	"sync"
	"time"
)

// RateLimiter is a per-account sliding-window limiter for order
// submissions. Timestamps older than the window are pruned on each call.
type RateLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	limit    int
	attempts map[string][]time.Time
}

// NewRateLimiter creates a limiter allowing limit submissions per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		window:   window,
		limit:    limit,
		attempts: make(map[string][]time.Time),
	}
}

// Allow reports whether the account may submit at now, recording the
// attempt if allowed. Rejected attempts are not recorded, so a client
// hammering the endpoint does not extend its own lockout.
func (r *RateLimiter) Allow(accountID string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-r.window)
	kept := r.attempts[accountID][:0]
	for _, t := range r.attempts[accountID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= r.limit {
		r.attempts[accountID] = kept
		return false
	}
	r.attempts[accountID] = append(kept, now)
	return true
}
