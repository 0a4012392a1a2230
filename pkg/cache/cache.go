package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"campus-market.backend/pkg/redis"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a key/value store with per-entry TTL. It is injected as a
// collaborator so call sites never reach for a shared global and tests can
// substitute their own implementation.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// RedisCache implements Cache on the shared Redis client, storing values as
// JSON.
type RedisCache struct {
	prefix string
}

// NewRedisCache creates a cache namespaced under the given prefix.
func NewRedisCache(prefix string) *RedisCache {
	return &RedisCache{prefix: prefix}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + ":" + k
}

// Get unmarshals the cached JSON value into dest, or returns ErrMiss.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := redis.Get(ctx, c.key(key))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return ErrMiss
		}
		return err
	}
	return json.Unmarshal([]byte(raw), dest)
}

// Set stores the value as JSON with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return redis.Set(ctx, c.key(key), string(raw), ttl)
}

// Invalidate removes a key.
func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	return redis.Del(ctx, c.key(key))
}
