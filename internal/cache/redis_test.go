package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/wildaware/internal/model"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCache(RedisOptions{Address: mr.Addr(), DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_GetSet(t *testing.T) {
	c, mr := newTestRedis(t)
	key := CacheKey("https://example.org/species.json")

	_, ok := c.Get(key)
	assert.False(t, ok)

	require.NoError(t, c.Set(key, []byte(`[{"id":1}]`), 0))
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(got))
	assert.Equal(t, time.Minute, mr.TTL(key), "ttl 0 uses the default")

	other := CacheKey("https://example.org/rescue_orgs.json")
	require.NoError(t, c.Set(other, []byte("[]"), 5*time.Second))
	assert.Equal(t, 5*time.Second, mr.TTL(other))

	mr.FastForward(2 * time.Minute)
	_, ok = c.Get(key)
	assert.False(t, ok, "expired")
}

func TestRedisCache_Delete(t *testing.T) {
	c, _ := newTestRedis(t)
	key := CacheKey("https://example.org/species.json")

	require.NoError(t, c.Delete(key), "missing key is not an error")

	require.NoError(t, c.Set(key, []byte("x"), 0))
	require.NoError(t, c.Delete(key))
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestRedisCache_ClearKeepsForeignKeys(t *testing.T) {
	c, mr := newTestRedis(t)

	ours := []string{
		CacheKey("https://example.org/species.json"),
		CacheKey("https://example.org/safety_guidelines.json"),
		CacheKey("https://example.org/rescue_orgs.json"),
	}
	for _, k := range ours {
		require.NoError(t, c.Set(k, []byte("doc"), 0))
	}
	require.NoError(t, mr.Set("session:42", "alive"))
	require.NoError(t, mr.Set("wildawareness", "not ours"))

	require.NoError(t, c.Clear())

	for _, k := range ours {
		assert.False(t, mr.Exists(k), k)
	}
	assert.True(t, mr.Exists("session:42"))
	assert.True(t, mr.Exists("wildawareness"))
}

func TestRedisCache_Unreachable(t *testing.T) {
	c, mr := newTestRedis(t)
	require.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))

	_, ok := c.Get(CacheKey("https://example.org/species.json"))
	assert.False(t, ok, "connection errors count as a miss")
}

func TestNew_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := New(model.CacheConfig{Backend: "redis", RedisAddr: mr.Addr()}, 10*time.Minute)
	require.NoError(t, err)
	rc, ok := c.(*RedisCache)
	require.True(t, ok)
	t.Cleanup(func() { _ = rc.Close() })

	require.NoError(t, rc.Set("wildaware:v1:x", []byte("y"), 0))
	assert.Equal(t, 10*time.Minute, mr.TTL("wildaware:v1:x"))
}
