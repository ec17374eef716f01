package ratelimit

import (
	"context"
	"strconv"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides rate limit checks.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error)
}

// UserKey builds the limiter key for one extension user.
func UserKey(userID uint64) string {
	return "user:" + strconv.FormatUint(userID, 10)
}
