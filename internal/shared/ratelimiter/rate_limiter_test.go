package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsBurstUpToLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)

	start := time.Now()
	for range 3 {
		require.NoError(t, rl.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimiter_SleepsWhenExceeded(t *testing.T) {
	rl := NewRateLimiter(1, 50*time.Millisecond)

	require.NoError(t, rl.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, rl.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRateLimiter_Refills(t *testing.T) {
	rl := NewRateLimiter(2, 100*time.Millisecond)

	for range 2 {
		require.NoError(t, rl.Wait(context.Background()))
	}
	time.Sleep(120 * time.Millisecond)

	start := time.Now()
	require.NoError(t, rl.Wait(context.Background()))
	assert.Less(t, time.Since(start), 30*time.Millisecond)
}

func TestRateLimiter_CanceledWhileWaiting(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, rl.Wait(ctx))
}

func TestRateLimiter_Disabled(t *testing.T) {
	for _, rl := range []*RateLimiter{NewRateLimiter(0, time.Hour), NewRateLimiter(5, 0)} {
		for range 10 {
			require.NoError(t, rl.Wait(context.Background()))
		}
	}
}

func TestRateLimiter_DisabledStillHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, NewRateLimiter(0, time.Hour).Wait(ctx))
}
