package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyTTLSeconds keeps window keys alive past their second so clock
// skew between app servers cannot expire a window early.
const redisKeyTTLSeconds = 2

// countScript increments the window key and sets its TTL on first use in
// one round trip, so concurrent app servers never race the expiry.
var countScript = redis.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return hits
`)

// RedisLimiter is the shared fixed-window backend used when several app
// servers must agree on one extension user's request rate.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter constructs a RedisLimiter.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: strings.TrimSpace(prefix)}
}

// Allow counts the request against the user's current one-second window.
// A limit of zero or an empty key disables limiting.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error) {
	if l == nil || l.client == nil || limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	second := now.Unix()
	reset := time.Unix(second+1, 0).UTC()

	raw, errRun := countScript.Run(ctx, l.client, []string{l.windowKey(key, second)}, redisKeyTTLSeconds).Result()
	if errRun != nil {
		return Result{}, fmt.Errorf("ratelimit: redis count: %w", errRun)
	}
	hits, errReply := coerceReplyInt(raw)
	if errReply != nil {
		return Result{}, errReply
	}
	if hits > int64(limit) {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	remaining := limit - int(hits)
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, Reset: reset}, nil
}

// windowKey builds "<prefix>:<key>:<second>", omitting an empty prefix.
func (l *RedisLimiter) windowKey(key string, second int64) string {
	parts := []string{key, strconv.FormatInt(second, 10)}
	if l.prefix != "" {
		parts = append([]string{l.prefix}, parts...)
	}
	return strings.Join(parts, ":")
}

// coerceReplyInt narrows the script reply, which go-redis may hand back
// under more than one integer type.
func coerceReplyInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("ratelimit: unexpected redis reply type %T", raw)
	}
}
