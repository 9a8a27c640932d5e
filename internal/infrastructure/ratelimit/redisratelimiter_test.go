package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T) (*RedisRateLimiter, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	limiter := NewRedisRateLimiter(client)
	limiter.now = func() time.Time { return now }
	return limiter, &now
}

func TestRedisRateLimiter_Allow_PerMinute(t *testing.T) {
	limiter, now := setupLimiter(t)
	ctx := context.Background()
	config := RateLimitConfig{RequestsPerMinute: 5}

	for i := 0; i < 5; i++ {
		*now = now.Add(time.Millisecond)
		allowed, err := limiter.Allow(ctx, "tenant:7", config)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	*now = now.Add(time.Millisecond)
	allowed, err := limiter.Allow(ctx, "tenant:7", config)
	require.NoError(t, err)
	assert.False(t, allowed, "6th request should be denied")

	*now = now.Add(61 * time.Second)
	allowed, err = limiter.Allow(ctx, "tenant:7", config)
	require.NoError(t, err)
	assert.True(t, allowed, "window should slide")
}

func TestRedisRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter, now := setupLimiter(t)
	ctx := context.Background()
	config := RateLimitConfig{RequestsPerMinute: 1}

	allowed, err := limiter.Allow(ctx, "tenant:1", config)
	require.NoError(t, err)
	assert.True(t, allowed)

	*now = now.Add(time.Millisecond)
	allowed, err = limiter.Allow(ctx, "tenant:2", config)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_HourWindow(t *testing.T) {
	limiter, now := setupLimiter(t)
	ctx := context.Background()
	config := RateLimitConfig{RequestsPerMinute: 10, RequestsPerHour: 2}

	for i := 0; i < 2; i++ {
		*now = now.Add(2 * time.Minute)
		allowed, err := limiter.Allow(ctx, "k", config)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	*now = now.Add(2 * time.Minute)
	allowed, err := limiter.Allow(ctx, "k", config)
	require.NoError(t, err)
	assert.False(t, allowed)
}
