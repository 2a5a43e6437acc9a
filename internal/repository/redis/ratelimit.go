package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "ratelimit:"

// tokenBucket refills KEYS[1] at ARGV[1] tokens per millisecond up to ARGV[2]
// and takes one token when available. Returns {allowed, tokens left * 1000}.
var tokenBucket = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now

tokens = math.min(burst, tokens + math.max(0, now - ts) * rate)
local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", now)
local ttl = 60000
if rate > 0 then ttl = math.ceil(burst / rate) end
redis.call("PEXPIRE", KEYS[1], ttl)
return {allowed, math.floor(tokens * 1000)}
`)

// RateLimiter is a token bucket kept in Redis so every server instance
// shares the budget. It mirrors the in-process limiter: requestsPerMinute
// on average with bursts of up to burst requests.
type RateLimiter struct {
	client      *Client
	perMilli    float64
	burst       int
	refillEvery time.Duration
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, requestsPerMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	r := &RateLimiter{
		client:   client,
		perMilli: float64(requestsPerMinute) / float64(time.Minute/time.Millisecond),
		burst:    burst,
	}
	if requestsPerMinute > 0 {
		r.refillEvery = time.Minute / time.Duration(requestsPerMinute)
	}
	return r
}

// Allow takes a token for key.
// Returns (allowed, remaining, resetTime, error) where resetTime is when the next token arrives.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()

	res, err := tokenBucket.Run(ctx, r.client.rdb,
		[]string{r.client.key(rateLimitPrefix, key)},
		r.perMilli, r.burst, now.UnixMilli(),
	).Int64Slice()
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}
	if len(res) != 2 {
		return false, 0, time.Time{}, fmt.Errorf("unexpected rate limit reply: %v", res)
	}

	remaining := int(res[1] / 1000)
	reset := now
	if remaining == 0 {
		reset = now.Add(r.refillEvery)
	}
	return res[0] == 1, remaining, reset, nil
}
