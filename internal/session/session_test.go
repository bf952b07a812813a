package session

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
	"github.com/andresuchdata/swiftbrowser/internal/swift"
)

func TestLoginRotatesIdentifiers(t *testing.T) {
	s := New()
	id := s.ID
	assert.False(t, s.Authenticated())
	assert.True(t, s.Empty())

	s.Logout()
	assert.Equal(t, id, s.ID, "logging out an anonymous session is a no-op")

	s.Login(swift.Credentials{Username: "test:tester", StorageURL: "http://swift/v1/AUTH_test", Token: "tk"})
	assert.True(t, s.Authenticated())
	assert.False(t, s.Empty())
	assert.NotEqual(t, id, s.ID)
	assert.Equal(t, id, s.PreviousID())
	assert.Equal(t, "tk", s.Credentials().Token)

	s.Saved()
	loggedIn := s.ID
	s.Logout()
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Username)
	assert.NotEqual(t, loggedIn, s.ID)
	assert.Equal(t, loggedIn, s.PreviousID())
	assert.True(t, s.Empty())
}

func TestWithIDKeepsID(t *testing.T) {
	s := WithID("0b6f1a44-3d52-4c1e-9a0e-3f1b2c4d5e6f")
	assert.Equal(t, "0b6f1a44-3d52-4c1e-9a0e-3f1b2c4d5e6f", s.ID)
	assert.True(t, s.Empty())
}

func TestFlashes(t *testing.T) {
	s := New()
	s.AddFlash(domain.FlashSuccess, "Container created.")
	s.AddFlashLink(domain.FlashInfo, "Share link", "http://x")

	flashes := s.PopFlashes()
	require.Len(t, flashes, 2)
	assert.Equal(t, "http://x", flashes[1].Link)
	assert.Empty(t, s.PopFlashes())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	s := New()
	s.AddFlash(domain.FlashError, "boom")
	require.NoError(t, store.Save(ctx, s, 0))

	loaded, err := store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, loaded.Dirty())
	assert.Equal(t, s.CreatedAt, loaded.CreatedAt)

	loaded.PopFlashes()
	again, err := store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, again.Flashes, 1, "loaded copies must not alias the store")

	now = now.Add(2 * time.Hour)
	_, err = store.Load(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, New(), 0))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreTTLAndSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	short := New()
	require.NoError(t, store.Save(ctx, short, 5*time.Minute))
	long := New()
	require.NoError(t, store.Save(ctx, long, 0))

	now = now.Add(10 * time.Minute)
	_, err := store.Load(ctx, short.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Load(ctx, long.ID)
	assert.NoError(t, err)

	// expired entries stay until the next sweep is due
	expiring := New()
	require.NoError(t, store.Save(ctx, expiring, time.Second))
	now = now.Add(2 * time.Second)
	require.NoError(t, store.Save(ctx, New(), 0))
	assert.Equal(t, 3, store.Len())

	now = now.Add(sweepInterval)
	require.NoError(t, store.Save(ctx, long, 0))
	assert.Equal(t, 2, store.Len())
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, time.Minute)

	s := New()
	s.Login(swift.Credentials{Username: "u", StorageURL: "http://swift/v1/AUTH_u", Token: "tk"})
	require.NoError(t, store.Save(ctx, s, 0))

	loaded, err := store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "tk", loaded.AuthToken)
	assert.Equal(t, s.CreatedAt.Unix(), loaded.CreatedAt.Unix())

	mr.FastForward(2 * time.Minute)
	_, err = store.Load(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, s, 10*time.Second))
	assert.Equal(t, 10*time.Second, mr.TTL(redisKeyPrefix+s.ID))
	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Load(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewStore(t *testing.T) {
	store, err := NewStore(config.SessionConfig{Store: "memory", TTL: time.Hour}, config.CacheConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	mr := miniredis.RunT(t)
	store, err = NewStore(config.SessionConfig{Store: "redis", TTL: time.Hour}, config.CacheConfig{RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, store)

	_, err = NewStore(config.SessionConfig{Store: "cookie"}, config.CacheConfig{})
	assert.Error(t, err)
}
