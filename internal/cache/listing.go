package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/swiftbrowser/internal/config"
	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/redis/go-redis/v9"
)

const listingKeyPrefix = "listing"

// Scope isolates cached listings per account and token, so a listing is
// never served to a session that could not have fetched it itself
type Scope struct {
	Account string
	Token   string
}

// ListingCache keeps recent container and object listings
type ListingCache interface {
	GetContainers(ctx context.Context, scope Scope) ([]domain.Container, bool, error)
	SetContainers(ctx context.Context, scope Scope, containers []domain.Container) error
	GetObjects(ctx context.Context, scope Scope, container, prefix string) ([]domain.Object, bool, error)
	SetObjects(ctx context.Context, scope Scope, container, prefix string, objects []domain.Object) error
	InvalidateContainer(ctx context.Context, account, container string) error
	InvalidateScope(ctx context.Context, scope Scope) error
}

type redisListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopListingCache struct{}

// NewListingCache returns a Redis backed cache, or a no-op cache when disabled
func NewListingCache(cfg config.CacheConfig) (ListingCache, error) {
	if !cfg.Enabled {
		return &noopListingCache{}, nil
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisListingCache(client, cacheTTL(cfg)), nil
}

// NewRedisListingCache wraps an existing client
func NewRedisListingCache(client *redis.Client, ttl time.Duration) ListingCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisListingCache{client: client, ttl: ttl}
}

func NewNoopListingCache() ListingCache {
	return &noopListingCache{}
}

func (c *redisListingCache) GetContainers(ctx context.Context, scope Scope) ([]domain.Container, bool, error) {
	var containers []domain.Container
	ok, err := c.get(ctx, containersKey(scope), &containers)
	return containers, ok, err
}

func (c *redisListingCache) SetContainers(ctx context.Context, scope Scope, containers []domain.Container) error {
	return c.set(ctx, containersKey(scope), containers)
}

func (c *redisListingCache) GetObjects(ctx context.Context, scope Scope, container, prefix string) ([]domain.Object, bool, error) {
	var objects []domain.Object
	ok, err := c.get(ctx, objectsKey(scope, container, prefix), &objects)
	return objects, ok, err
}

func (c *redisListingCache) SetObjects(ctx context.Context, scope Scope, container, prefix string, objects []domain.Object) error {
	return c.set(ctx, objectsKey(scope, container, prefix), objects)
}

// InvalidateContainer drops the object listings of one container for every
// session, plus the container listings of the account since counts changed
func (c *redisListingCache) InvalidateContainer(ctx context.Context, account, container string) error {
	acct := digest(account)
	if err := deleteKeysMatching(ctx, c.client, fmt.Sprintf("%s:%s:*:o:%s:*", listingKeyPrefix, acct, digest(container)), scanBatchSize); err != nil {
		return err
	}
	return deleteKeysMatching(ctx, c.client, fmt.Sprintf("%s:%s:*:c", listingKeyPrefix, acct), scanBatchSize)
}

// InvalidateScope drops every listing cached for one token
func (c *redisListingCache) InvalidateScope(ctx context.Context, scope Scope) error {
	return deleteKeysMatching(ctx, c.client, fmt.Sprintf("%s:%s:%s:*", listingKeyPrefix, digest(scope.Account), digest(scope.Token)), scanBatchSize)
}

func (c *redisListingCache) get(ctx context.Context, key string, out interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode listing cache: %w", err)
	}
	return true, nil
}

func (c *redisListingCache) set(ctx context.Context, key string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode listing cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopListingCache) GetContainers(ctx context.Context, scope Scope) ([]domain.Container, bool, error) {
	return nil, false, nil
}

func (n *noopListingCache) SetContainers(ctx context.Context, scope Scope, containers []domain.Container) error {
	return nil
}

func (n *noopListingCache) GetObjects(ctx context.Context, scope Scope, container, prefix string) ([]domain.Object, bool, error) {
	return nil, false, nil
}

func (n *noopListingCache) SetObjects(ctx context.Context, scope Scope, container, prefix string, objects []domain.Object) error {
	return nil
}

func (n *noopListingCache) InvalidateContainer(ctx context.Context, account, container string) error {
	return nil
}

func (n *noopListingCache) InvalidateScope(ctx context.Context, scope Scope) error {
	return nil
}

func containersKey(scope Scope) string {
	return fmt.Sprintf("%s:%s:%s:c", listingKeyPrefix, digest(scope.Account), digest(scope.Token))
}

func objectsKey(scope Scope, container, prefix string) string {
	return fmt.Sprintf("%s:%s:%s:o:%s:%s", listingKeyPrefix, digest(scope.Account), digest(scope.Token), digest(container), digest(prefix))
}

// digest keeps user supplied names out of key patterns
func digest(s string) string {
	hash := sha1.Sum([]byte(s))
	return hex.EncodeToString(hash[:8])
}
