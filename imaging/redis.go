package imaging

import (
	"context"
	"errors"
	"time"

	lowimpl "github.com/redis/go-redis/v9"
)

// RedisCache keeps fetched images in Redis so that several generator
// processes share downloads.
type RedisCache struct {
	client *lowimpl.Client
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)

// NewRedisCache connects to the server at addr.
func NewRedisCache(addr, password string, db int) *RedisCache {
	return &RedisCache{client: lowimpl.NewClient(&lowimpl.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, lowimpl.Nil) {
		return nil, false, nil // redis.Nil -> found: false, err: nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
