package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/transferledger/internal/usecase"
)

const defaultCachePrefix = "ledger:cache:"

// namespace prefixes every key an adapter touches so that cache entries and
// idempotency claims can share one Redis database.
type namespace string

func (n namespace) key(k string) string { return string(n) + k }

// Cache implements usecase.Cache on Redis strings.
type Cache struct {
	client *redis.Client
	ns     namespace
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCachePrefix overrides the key prefix, "ledger:cache:" by default.
func WithCachePrefix(prefix string) CacheOption {
	return func(c *Cache) { c.ns = namespace(prefix) }
}

// NewCache creates a new Cache.
func NewCache(client *redis.Client, opts ...CacheOption) *Cache {
	c := &Cache{client: client, ns: defaultCachePrefix}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns usecase.ErrCacheMiss for absent or expired keys.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.ns.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", usecase.ErrCacheMiss
	}
	return val, err
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.ns.key(key), value, ttl).Err()
}
