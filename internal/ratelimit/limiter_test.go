package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anish877/maintainer-dashboard-sub000/internal/monitoring"
)

func newFallbackLimiter(t *testing.T, config Config) *RateLimiter {
	t.Helper()

	// Empty addr yields a disabled client, forcing the in-memory path.
	redisClient, err := NewRedisClient("", "", 0)
	require.NoError(t, err)

	return NewRateLimiter(redisClient, config, monitoring.NewMetrics())
}

func TestAllowIPFallbackBurstThenBlock(t *testing.T) {
	config := Config{IPLimitPerMin: 2, AnalyzeLimitPerHour: 1, BurstMultiplier: 1}
	rl := newFallbackLimiter(t, config)
	ctx := context.Background()

	// Burst floor is 5, so the first five requests pass.
	for i := 0; i < 5; i++ {
		result, err := rl.AllowIP(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 2, result.Limit)
	}

	result, err := rl.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Positive(t, result.RetryAfter)
}

func TestAllowIPIsolatesClients(t *testing.T) {
	config := Config{IPLimitPerMin: 2, AnalyzeLimitPerHour: 1, BurstMultiplier: 1}
	rl := newFallbackLimiter(t, config)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		rl.AllowIP(ctx, "10.0.0.1")
	}

	// A different IP has its own bucket.
	result, err := rl.AllowIP(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestAllowAnalyzeSeparateFromIPLimit(t *testing.T) {
	config := Config{IPLimitPerMin: 100, AnalyzeLimitPerHour: 2, BurstMultiplier: 1}
	rl := newFallbackLimiter(t, config)
	ctx := context.Background()

	// Exhaust the analyze allowance (burst floor 5).
	for i := 0; i < 5; i++ {
		result, err := rl.AllowAnalyze(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
	result, err := rl.AllowAnalyze(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	// The general IP limit for the same client is untouched.
	result, err = rl.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestInvalidateIPResetsFallbackBuckets(t *testing.T) {
	config := Config{IPLimitPerMin: 1, AnalyzeLimitPerHour: 1, BurstMultiplier: 1}
	rl := newFallbackLimiter(t, config)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		rl.AllowIP(ctx, "10.0.0.1")
	}
	result, err := rl.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, result.Allowed)

	require.NoError(t, rl.InvalidateIP(ctx, "10.0.0.1"))

	result, err = rl.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestGetKeyCountFallback(t *testing.T) {
	rl := newFallbackLimiter(t, DefaultConfig())
	ctx := context.Background()

	count, err := rl.GetKeyCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	rl.AllowIP(ctx, "10.0.0.1")
	rl.AllowIP(ctx, "10.0.0.2")
	rl.AllowAnalyze(ctx, "10.0.0.1")

	count, err = rl.GetKeyCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestInvalidateAllFallback(t *testing.T) {
	rl := newFallbackLimiter(t, DefaultConfig())
	ctx := context.Background()

	rl.AllowIP(ctx, "10.0.0.1")
	rl.AllowAnalyze(ctx, "10.0.0.2")

	require.NoError(t, rl.InvalidateAll(ctx))

	count, err := rl.GetKeyCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGetStatsReportsFallbackMode(t *testing.T) {
	rl := newFallbackLimiter(t, DefaultConfig())
	rl.AllowIP(context.Background(), "10.0.0.1")

	stats := rl.GetStats()
	assert.Equal(t, false, stats["redis_enabled"])
	assert.Equal(t, 1, stats["fallback_limiters"])
}

func TestResultResetTimes(t *testing.T) {
	rl := newFallbackLimiter(t, DefaultConfig())

	before := time.Now()
	result, err := rl.AllowIP(context.Background(), "10.0.0.1")
	require.NoError(t, err)

	// Reset for the per-minute bucket lands about a minute out.
	assert.WithinDuration(t, before.Add(time.Minute), result.ResetAt, 2*time.Second)
}
