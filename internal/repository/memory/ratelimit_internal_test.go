package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	limiter := NewRateLimiter(60, 5)
	limiter.now = func() time.Time { return clock }
	limiter.lastSweep = clock
	require.Equal(t, time.Minute, limiter.idleTTL)

	for i := 0; i < 100; i++ {
		_, _, _, err := limiter.Allow(ctx, fmt.Sprintf("10.0.0.%d", i))
		require.NoError(t, err)
	}
	assert.Len(t, limiter.buckets, 100)

	clock = clock.Add(30 * time.Second)
	_, _, _, _ = limiter.Allow(ctx, "10.0.0.1")
	assert.Len(t, limiter.buckets, 100, "nothing is idle yet")

	clock = clock.Add(45 * time.Second)
	allowed, _, _, _ := limiter.Allow(ctx, "10.0.0.200")
	assert.True(t, allowed)
	assert.Len(t, limiter.buckets, 2, "only the recently seen keys survive")
	assert.Contains(t, limiter.buckets, "10.0.0.1")
	assert.Contains(t, limiter.buckets, "10.0.0.200")
}

func TestRateLimiter_IdleTTLCoversRefill(t *testing.T) {
	// 5 tokens at 1 per 30s take 150s to refill
	limiter := NewRateLimiter(2, 5)
	assert.Equal(t, 150*time.Second, limiter.idleTTL)
}
