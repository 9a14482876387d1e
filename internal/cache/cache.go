// Package cache holds the Redis client behind the user and supplier read
// caches and the request throttle.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is optional infrastructure: every cache method treats an
// unreachable Redis as a miss, and a nil *Client (REDIS_ADDR unset) is an
// always-empty cache. Only Incr reports errors, for the throttle to decide.
type Client struct {
	client *redis.Client
}

// New connects to the Redis configured by REDIS_ADDR, REDIS_PASSWORD and REDIS_DB.
func New(addr, password string, db int) *Client {
	return &Client{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (c *Client) ready() bool {
	return c != nil && c.client != nil
}

// Get returns the cached payload for key, or nil on a miss.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.ready() {
		return nil, nil
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		slog.Debug("cache read skipped", "key", key, "error", err)
		return nil, nil
	}
	return payload, nil
}

// Set caches payload under key for ttl.
func (c *Client) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if !c.ready() {
		return nil
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		slog.Debug("cache write skipped", "key", key, "error", err)
	}
	return nil
}

// Delete invalidates key after a write to the record it caches.
func (c *Client) Delete(ctx context.Context, key string) error {
	if !c.ready() {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		slog.Debug("cache invalidation skipped", "key", key, "error", err)
	}
	return nil
}

// Incr counts a hit in a throttle window. The window starts with the first
// hit and lasts ttl.
func (c *Client) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if !c.ready() {
		return 0, nil
	}
	hits, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if hits == 1 {
		if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
			return hits, err
		}
	}
	return hits, nil
}

// Close releases the connection pool at shutdown.
func (c *Client) Close() error {
	if !c.ready() {
		return nil
	}
	return c.client.Close()
}
