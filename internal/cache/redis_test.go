//go:build integration

package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"sportsviz/etl/internal/ranking"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for the redis cache.
// Run with: go test -v -tags=integration ./internal/cache/...
// Requires redis on localhost:6379; skipped otherwise.

func setupTestCache(t *testing.T) *RedisCache {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping integration test")
	}

	c := NewRedisCacheWithClient(client, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()
	ns := "test-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	defer c.Invalidate(ctx, ns)

	histories := map[ranking.EntityID][]ranking.Snapshot{
		"83950": {snap("83950", "2024-01-02", 12), snap("83950", "2024-01-09", 11)},
		"1-2":   nil,
	}
	require.NoError(t, c.SetHistories(ctx, ns, histories))

	got, err := c.GetHistories(ctx, ns, []ranking.EntityID{"83950", "1-2", "404"})
	require.NoError(t, err)
	require.Len(t, got, 2, "Unknown entity is a miss")
	assert.Equal(t, histories["83950"], got["83950"])

	empty, ok := got["1-2"]
	assert.True(t, ok, "Cached empty history is a hit")
	assert.Empty(t, empty)
}

func TestRedisCache_Invalidate(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()
	ns := "test-" + strconv.FormatInt(time.Now().UnixNano(), 10)

	require.NoError(t, c.SetHistories(ctx, ns, map[ranking.EntityID][]ranking.Snapshot{
		"1": {snap("1", "2024-01-02", 5)},
		"2": {snap("2", "2024-01-02", 6)},
	}))

	n, err := c.Invalidate(ctx, ns)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := c.GetHistories(ctx, ns, []ranking.EntityID{"1", "2"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, c.Health(ctx))
}
