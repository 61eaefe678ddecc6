package catalog

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	p := Product{ID: uuid.New(), Code: "GLO-001", Name: "Globos", RetailPrice: 650}
	require.NoError(t, cache.SetJSON(ctx, "catalog:product:x", p))

	var got Product
	ok, err := cache.GetJSON(ctx, "catalog:product:x", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, p, got)

	ok, err = cache.GetJSON(ctx, "catalog:product:missing", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheInvalidateByPrefix(t *testing.T) {
	cache, mr := testCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, "catalog:search:a", "one"))
	require.NoError(t, cache.SetJSON(ctx, "catalog:search:b", "two"))
	require.NoError(t, cache.SetJSON(ctx, "catalog:product:c", "keep"))

	require.NoError(t, cache.Invalidate(ctx, "catalog:search:"))
	require.Equal(t, []string{"catalog:product:c"}, mr.Keys())
}

func TestNilCacheIsPassThrough(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, "k", "v"))
	var got string
	ok, err := cache.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, cache.Invalidate(ctx, "k"))
}
