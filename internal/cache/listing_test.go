package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/swiftbrowser/internal/config"
	"github.com/andresuchdata/swiftbrowser/internal/domain"
)

func newTestCache(t *testing.T) (ListingCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisListingCache(client, time.Minute), mr
}

func TestListingCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	scope := Scope{Account: "AUTH_test", Token: "tk1"}

	_, ok, err := c.GetObjects(ctx, scope, "photos", "a/")
	require.NoError(t, err)
	assert.False(t, ok)

	objects := []domain.Object{{Name: "a/b.jpg", Bytes: 3}, {Name: "a/c/", Subdir: "a/c/"}}
	require.NoError(t, c.SetObjects(ctx, scope, "photos", "a/", objects))

	got, ok, err := c.GetObjects(ctx, scope, "photos", "a/")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, objects, got)

	_, ok, err = c.GetObjects(ctx, Scope{Account: "AUTH_test", Token: "tk2"}, "photos", "a/")
	require.NoError(t, err)
	assert.False(t, ok, "other tokens must not see the listing")

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.GetObjects(ctx, scope, "photos", "a/")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidateContainer(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	one := Scope{Account: "AUTH_test", Token: "tk1"}
	two := Scope{Account: "AUTH_test", Token: "tk2"}

	require.NoError(t, c.SetObjects(ctx, one, "photos", "", []domain.Object{{Name: "x"}}))
	require.NoError(t, c.SetObjects(ctx, two, "photos", "a/", []domain.Object{{Name: "a/y"}}))
	require.NoError(t, c.SetObjects(ctx, one, "docs", "", []domain.Object{{Name: "z"}}))
	require.NoError(t, c.SetContainers(ctx, one, []domain.Container{{Name: "photos"}}))

	require.NoError(t, c.InvalidateContainer(ctx, "AUTH_test", "photos"))

	_, ok, _ := c.GetObjects(ctx, one, "photos", "")
	assert.False(t, ok)
	_, ok, _ = c.GetObjects(ctx, two, "photos", "a/")
	assert.False(t, ok)
	_, ok, _ = c.GetContainers(ctx, one)
	assert.False(t, ok)
	_, ok, _ = c.GetObjects(ctx, one, "docs", "")
	assert.True(t, ok)

	require.NoError(t, c.SetObjects(ctx, two, "docs", "", []domain.Object{{Name: "z"}}))
	require.NoError(t, c.InvalidateScope(ctx, one))
	_, ok, _ = c.GetObjects(ctx, one, "docs", "")
	assert.False(t, ok)
	_, ok, _ = c.GetObjects(ctx, two, "docs", "")
	assert.True(t, ok)
}

func TestNewListingCacheDisabled(t *testing.T) {
	c, err := NewListingCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	require.NoError(t, c.SetContainers(context.Background(), Scope{}, []domain.Container{{Name: "a"}}))
	_, ok, err := c.GetContainers(context.Background(), Scope{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewListingCacheRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewListingCache(config.CacheConfig{Enabled: true, RedisURL: "redis://" + mr.Addr() + "/0", TTLSeconds: 5})
	require.NoError(t, err)
	require.IsType(t, &redisListingCache{}, c)
	assert.Equal(t, 5*time.Second, c.(*redisListingCache).ttl)
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "://bad"})
	assert.Error(t, err)
}
