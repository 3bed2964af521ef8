// Package cache holds short-lived copies of lawyer directory results.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DirectoryCache stores serialized search results. Invalidate drops every
// entry at once; it is called whenever a lawyer profile changes.
type DirectoryCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Invalidate(ctx context.Context) error
}

// RedisDirectoryCache namespaces entries under a version counter. Bumping the
// counter orphans all earlier entries, which then expire by TTL.
type RedisDirectoryCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisDirectoryCache(redisURL string, ttl time.Duration) (*RedisDirectoryCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisDirectoryCacheWithClient(client, ttl), nil
}

func NewRedisDirectoryCacheWithClient(client *redis.Client, ttl time.Duration) *RedisDirectoryCache {
	return &RedisDirectoryCache{client: client, prefix: "lawyers:", ttl: ttl}
}

func (c *RedisDirectoryCache) versionKey() string {
	return c.prefix + "version"
}

func (c *RedisDirectoryCache) version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, c.versionKey()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

func (c *RedisDirectoryCache) entryKey(ctx context.Context, key string) (string, error) {
	v, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%sv%d:%s", c.prefix, v, key), nil
}

func (c *RedisDirectoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	k, err := c.entryKey(ctx, key)
	if err != nil {
		return nil, false, err
	}
	b, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisDirectoryCache) Set(ctx context.Context, key string, value []byte) error {
	k, err := c.entryKey(ctx, key)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, k, value, c.ttl).Err()
}

func (c *RedisDirectoryCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.versionKey()).Err()
}

func (c *RedisDirectoryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisDirectoryCache) Close() error {
	return c.client.Close()
}

// Noop never hits. It stands in when no Redis is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte) error { return nil }
func (Noop) Invalidate(context.Context) error { return nil }
