package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stokcast/backend/internal/domain"
)

func TestMemoryRecommendationCacheExpiry(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)
	c := NewMemoryRecommendationCache()
	c.now = func() time.Time { return clock }

	rec := &domain.Recommendation{ProductID: "prd_kopi", OrderQuantity: 12}
	require.NoError(t, c.Set(ctx, "k", rec, time.Minute))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 12, got.OrderQuantity)

	// returned values are copies
	got.OrderQuantity = 99
	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, 12, again.OrderQuantity)

	clock = clock.Add(time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestNoopRecommendationCacheNeverHits(t *testing.T) {
	ctx := context.Background()
	var c RecommendationCache = NoopRecommendationCache{}
	require.NoError(t, c.Set(ctx, "k", &domain.Recommendation{}, time.Minute))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRecommendationCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("STOKCAST_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STOKCAST_TEST_REDIS_ADDR is not set")
	}
	ctx := context.Background()
	c := NewRedisRecommendationCache(addr, "", 0)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(ctx))

	key := "stokcast:test:" + time.Now().Format(time.RFC3339Nano)
	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	want := &domain.Recommendation{ProductID: "prd_kopi", Forecast: 15, SafetyStock: 4, OrderQuantity: 16}
	require.NoError(t, c.Set(ctx, key, want, 30*time.Second))
	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, *want, *got)
}
