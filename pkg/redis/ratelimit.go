package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// slidingWindowScript implements a sliding window counter over a sorted set.
// Request timestamps are the scores; entries older than the window are
// dropped before counting. Returns {allowed, remaining, oldest_ms} where
// oldest_ms is only meaningful on a denied request.
var slidingWindowScript = goredis.NewScript(`
	local cutoff = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", cutoff)

	local used = redis.call("ZCARD", KEYS[1])
	if used >= limit then
		local oldest = redis.call("ZRANGE", KEYS[1], 0, 0, "WITHSCORES")
		if #oldest == 2 then
			return {0, 0, tonumber(oldest[2])}
		end
		return {0, 0, 0}
	end

	redis.call("ZADD", KEYS[1], now, now .. ":" .. math.random())
	redis.call("PEXPIRE", KEYS[1], ttl)
	return {1, limit - used - 1, 0}
`)

// RateLimitResult reports the outcome of a single Allow call.
type RateLimitResult struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
	// RetryIn is how long until a slot frees up. Zero when Allowed.
	RetryIn time.Duration
}

// RateLimiter is a sliding window rate limiter backed by Redis. Every
// instance sharing a key prefix counts against the same limits.
type RateLimiter struct {
	client    *Client
	keyPrefix string
}

// NewRateLimiter creates a rate limiter. An empty keyPrefix defaults to
// "ratelimit:".
func NewRateLimiter(client *Client, keyPrefix string) *RateLimiter {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}
	return &RateLimiter{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Allow records a request against the key and reports whether it fits
// within limit requests per window.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error) {
	now := time.Now()

	raw, err := slidingWindowScript.Run(ctx, r.client.rdb, []string{r.keyPrefix + key},
		now.Add(-window).UnixMilli(),
		now.UnixMilli(),
		limit,
		window.Milliseconds(),
	).Slice()
	if err != nil {
		return nil, err
	}

	vals, err := scriptInts(raw)
	if err != nil {
		return nil, err
	}
	if len(vals) != 3 {
		return nil, fmt.Errorf("rate limit script returned %d values, want 3", len(vals))
	}

	result := &RateLimitResult{
		Allowed:   vals[0] == 1,
		Remaining: vals[1],
		ResetAt:   now.Add(window),
	}
	if !result.Allowed && vals[2] > 0 {
		result.RetryIn = time.UnixMilli(vals[2]).Add(window).Sub(now)
	}
	return result, nil
}

// Reset clears the counted requests for a key.
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	return r.client.rdb.Del(ctx, r.keyPrefix+key).Err()
}

// scriptInts converts a Lua script reply to int64s. Integer replies arrive
// as int64, but numbers that pass through Lua strings come back as strings.
func scriptInts(raw []any) ([]int64, error) {
	out := make([]int64, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case int64:
			out = append(out, n)
		case string:
			parsed, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unexpected script reply %q: %w", n, err)
			}
			out = append(out, parsed)
		default:
			return nil, fmt.Errorf("unexpected script reply type %T", v)
		}
	}
	return out, nil
}
