package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCache(rdb, time.Minute), mr
}

func TestCache_SetGetInvalidate(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	key := EventsKey("u1")

	var got []cachedEvent
	assert.False(t, cache.Get(ctx, key, &got))

	cache.Set(ctx, key, []cachedEvent{{ID: "e1", Name: "Gala"}})
	require.True(t, cache.Get(ctx, key, &got))
	assert.Equal(t, []cachedEvent{{ID: "e1", Name: "Gala"}}, got)
	assert.Equal(t, time.Minute, mr.TTL(key))

	cache.Invalidate(ctx, key)
	assert.False(t, mr.Exists(key))
}

func TestCache_Expires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	key := BudgetKey("u1", "e1")

	cache.Set(ctx, key, cachedEvent{ID: "b1"})
	mr.FastForward(2 * time.Minute)

	var got cachedEvent
	assert.False(t, cache.Get(ctx, key, &got))
}

func TestCache_CorruptValueIsMiss(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set("events:user:u1", "{not json"))

	var got []cachedEvent
	assert.False(t, cache.Get(context.Background(), EventsKey("u1"), &got))
}

func TestCache_NilIsNoop(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	cache.Set(ctx, "k", 1)
	cache.Invalidate(ctx, "k")
	var v int
	assert.False(t, cache.Get(ctx, "k", &v))
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "events:user:u1", EventsKey("u1"))
	assert.Equal(t, "budget:event:e1:user:u1", BudgetKey("u1", "e1"))
}
