package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStatsCache_SetGet(t *testing.T) {
	cache := NewInMemoryStatsCache()
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "dashboard:stats:t1", []byte(`{"orders":5}`), time.Minute))

	payload, ok, err := cache.Get(ctx, "dashboard:stats:t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"orders":5}`), payload)

	_, ok, err = cache.Get(ctx, "dashboard:stats:other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemoryStatsCache_Expiry(t *testing.T) {
	cache := NewInMemoryStatsCache()
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "k", []byte("v"), 10*time.Millisecond))

	time.Sleep(20 * time.Millisecond)

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries are a miss")
}

func TestInMemoryStatsCache_Overwrite(t *testing.T) {
	cache := NewInMemoryStatsCache()
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "k", []byte("old"), time.Minute))
	require.NoError(t, cache.Set(ctx, "k", []byte("new"), time.Minute))

	payload, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), payload)
}

func TestInMemoryStatsCache_CloseIsIdempotent(t *testing.T) {
	cache := NewInMemoryStatsCache()
	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())
}

func TestInMemoryStatsCache_Cleanup(t *testing.T) {
	cache := NewInMemoryStatsCache()
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "expired", []byte("v"), time.Millisecond))
	require.NoError(t, cache.Set(ctx, "fresh", []byte("v"), time.Hour))

	time.Sleep(5 * time.Millisecond)
	cache.cleanup()

	cache.mu.RLock()
	defer cache.mu.RUnlock()
	assert.NotContains(t, cache.entries, "expired")
	assert.Contains(t, cache.entries, "fresh")
}
