package services

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RateLimiter is a sliding-window throttle keyed by (connection, action).
// State is shared across all rooms, so a single mutex guards the whole table.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string][]time.Time

	log  *zap.SugaredLogger
	stop chan struct{}
	wg   sync.WaitGroup
}

func NewRateLimiter(log *zap.SugaredLogger) *RateLimiter {
	return &RateLimiter{
		entries: make(map[string][]time.Time),
		log:     log,
		stop:    make(chan struct{}),
	}
}

func limiterKey(connID, action string) string {
	return connID + "|" + action
}

// IsRateLimited prunes attempts older than window, then either rejects
// (count >= maxAttempts, nothing recorded) or records this attempt and
// allows it. Every call counts as an attempt — never call speculatively.
func (rl *RateLimiter) IsRateLimited(connID, action string, maxAttempts int, window time.Duration) bool {
	now := time.Now()
	cutoff := now.Add(-window)
	key := limiterKey(connID, action)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	attempts := rl.entries[key]
	kept := attempts[:0]
	for _, t := range attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= maxAttempts {
		rl.entries[key] = kept
		rl.log.Debugw("rate limited", "conn", connID, "action", action, "attempts", len(kept))
		return true
	}

	rl.entries[key] = append(kept, now)
	return false
}

// Clear drops every entry for a connection. Called on disconnect.
func (rl *RateLimiter) Clear(connID string) {
	prefix := connID + "|"

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key := range rl.entries {
		if strings.HasPrefix(key, prefix) {
			delete(rl.entries, key)
		}
	}
}

// Cleanup sweeps entries whose newest attempt is older than maxAge.
func (rl *RateLimiter) Cleanup(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, attempts := range rl.entries {
		if len(attempts) == 0 || attempts[len(attempts)-1].Before(cutoff) {
			delete(rl.entries, key)
		}
	}
}

// StartSweeper runs Cleanup on a fixed interval so the table cannot grow
// without bound. Stop it with Close.
func (rl *RateLimiter) StartSweeper(interval, maxAge time.Duration) {
	rl.wg.Add(1)
	go func() {
		defer rl.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-rl.stop:
				return
			case <-ticker.C:
				rl.Cleanup(maxAge)
			}
		}
	}()
}

func (rl *RateLimiter) Close() {
	close(rl.stop)
	rl.wg.Wait()
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.entries)
}
