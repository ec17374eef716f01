package ratelimit

import (
	"context"
	"sync"
	"time"
)

// memoryPruneThreshold bounds the window map; stale per-user windows are
// dropped once the map grows past it.
const memoryPruneThreshold = 4096

// windowCount tracks how many requests one extension user made in one
// second.
type windowCount struct {
	second int64
	hits   int
}

// MemoryLimiter is the in-process fixed-window backend. It is the default
// when Redis rate limiting is disabled and the fallback while the Redis
// breaker is open.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]windowCount
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]windowCount)}
}

// Allow counts the request against the user's current one-second window.
// A limit of zero or an empty key disables limiting.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	second := now.Unix()
	reset := time.Unix(second+1, 0).UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	window := l.windows[key]
	if window.second != second {
		window = windowCount{second: second}
		l.pruneStale(second)
	}
	if window.hits >= limit {
		l.windows[key] = window
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	window.hits++
	l.windows[key] = window
	return Result{Allowed: true, Remaining: limit - window.hits, Reset: reset}, nil
}

// pruneStale drops windows from past seconds. Caller holds the lock.
func (l *MemoryLimiter) pruneStale(second int64) {
	if len(l.windows) <= memoryPruneThreshold {
		return
	}
	for key, window := range l.windows {
		if window.second != second {
			delete(l.windows, key)
		}
	}
}
