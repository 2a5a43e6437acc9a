package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const minIdleTTL = time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is an in-process token bucket per key, used when no Redis is configured.
// Buckets idle long enough to have refilled completely are dropped, which is
// indistinguishable from keeping them.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter allows requestsPerMinute on average with the given burst
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	r := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(requestsPerMinute) / 60),
		burst:   burst,
		idleTTL: minIdleTTL,
		now:     time.Now,
	}
	if r.limit > 0 {
		if refill := time.Duration(float64(burst) / float64(r.limit) * float64(time.Second)); refill > r.idleTTL {
			r.idleTTL = refill
		}
	}
	r.lastSweep = r.now()
	return r
}

// Allow reports whether a request for key may proceed.
// Returns (allowed, remaining, resetTime, error) like the Redis limiter.
func (r *RateLimiter) Allow(_ context.Context, key string) (bool, int, time.Time, error) {
	now := r.now()

	r.mu.Lock()
	r.sweepLocked(now)
	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.buckets[key] = b
	}
	b.lastSeen = now
	r.mu.Unlock()

	allowed := b.limiter.AllowN(now, 1)
	remaining := int(b.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	reset := now
	if r.limit > 0 && remaining == 0 {
		reset = now.Add(time.Duration(float64(time.Second) / float64(r.limit)))
	}
	return allowed, remaining, reset, nil
}

// sweepLocked drops idle buckets, at most once per idleTTL
func (r *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(r.lastSweep) < r.idleTTL {
		return
	}
	for key, b := range r.buckets {
		if now.Sub(b.lastSeen) >= r.idleTTL {
			delete(r.buckets, key)
		}
	}
	r.lastSweep = now
}
