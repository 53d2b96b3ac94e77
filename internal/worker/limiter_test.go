package worker

import (
	"context"
	"testing"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_New(t *testing.T) {
	assert.Equal(t, 5, NewLimiter(10, 5).defaultBurst)
	assert.Equal(t, 5, NewLimiter(10, -1).defaultBurst)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewLimiter(0.001, 1)

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, limiter.Allow("10.0.0.2"), "other client has its own bucket")
	assert.Equal(t, 2, limiter.Len())
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)

	start := time.Now()
	require.NoError(t, limiter.WaitWithDelay(context.Background(), "example.com", 50*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	require.True(t, limiter.Allow("example.com"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, limiter.Wait(ctx, "example.com"))
}

func TestLimiter_IdleBucketsExpire(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	limiter.buckets = gocache.New(20*time.Millisecond, 10*time.Millisecond)

	for _, key := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		assert.True(t, limiter.Allow(key))
	}
	assert.Equal(t, 3, limiter.Len())

	assert.Eventually(t, func() bool { return limiter.Len() == 0 }, time.Second, 10*time.Millisecond)
	assert.True(t, limiter.Allow("10.0.0.1"), "expired bucket starts full again")
}

func TestIdleTTL(t *testing.T) {
	assert.Equal(t, minIdleTTL, idleTTL(2, 5))
	assert.Equal(t, 2000*time.Second, idleTTL(0.001, 2))
	assert.Equal(t, maxIdleTTL, idleTTL(0, 5))
	assert.Equal(t, maxIdleTTL, idleTTL(0.00001, 5))
}

func TestHostKey(t *testing.T) {
	tests := map[string]string{
		"https://catalog.example.org/species.json": "catalog.example.org",
		"http://localhost:8080/x":                  "localhost:8080",
		"not a url":                                "not a url",
	}
	for in, want := range tests {
		assert.Equal(t, want, HostKey(in), in)
	}
}
