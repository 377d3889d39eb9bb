// Package cache holds the Redis-backed credential cache, classification
// search cache and registration rate limiter.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// Options tunes the Redis client pool.
type Options struct {
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultOptions suits a single API instance.
func DefaultOptions() Options {
	return Options{
		PoolSize:        10,
		MinIdleConns:    2,
		PoolTimeout:     4 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// Cache wraps a Redis client.
type Cache struct {
	client *redis.Client
}

// New connects with DefaultOptions.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	return NewWithOptions(ctx, redisURL, DefaultOptions())
}

// NewWithOptions connects and pings. The URL is kept out of errors.
func NewWithOptions(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.New("parse redis URL: invalid URL")
	}
	if opts.PoolSize > 0 {
		opt.PoolSize = opts.PoolSize
	}
	if opts.MinIdleConns > 0 {
		opt.MinIdleConns = opts.MinIdleConns
	}
	if opts.PoolTimeout > 0 {
		opt.PoolTimeout = opts.PoolTimeout
	}
	if opts.ConnMaxIdleTime > 0 {
		opt.ConnMaxIdleTime = opts.ConnMaxIdleTime
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Ping reports whether Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the raw client to test helpers.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// setJSON stores value under key as JSON.
func setJSON(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// getJSON decodes the value at key into dest. found is false on a miss.
// A value that no longer decodes is reported as a miss so callers refill it.
func getJSON[T any](ctx context.Context, rdb *redis.Client, key string, dest *T) (found bool, err error) {
	b, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, nil //nolint:nilerr
	}
	return true, nil
}
