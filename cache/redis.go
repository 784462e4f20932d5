package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClient is the slice of the go-redis API the page cache needs.
// *redis.Client satisfies it; tests may substitute a fake.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Redis is a PageCache backed by a Redis instance, for apps that want
// rendered pages shared across processes. Entry lifetime is enforced by
// Redis key expiry; there is no capacity bound beyond what the server
// applies.
type Redis struct {
	client RedisClient
	ttl    time.Duration
	prefix string
}

var _ PageCache = (*Redis)(nil)

// RedisOption configures a Redis page cache.
type RedisOption func(*Redis)

// WithRedisTTL overrides the default entry lifetime.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(c *Redis) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces the cache keys, default "pancakes:page:".
func WithKeyPrefix(prefix string) RedisOption {
	return func(c *Redis) { c.prefix = prefix }
}

// NewRedis creates a Redis-backed page cache.
func NewRedis(client RedisClient, opts ...RedisOption) *Redis {
	c := &Redis{
		client: client,
		ttl:    DefaultTTL,
		prefix: "pancakes:page:",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key; a missing key is a miss, not an
// error.
func (c *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("page cache get: %w", err)
	}
	return value, true, nil
}

// Set stores value under key with the configured TTL.
func (c *Redis) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("page cache set: %w", err)
	}
	return nil
}
