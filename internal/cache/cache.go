// Package cache wraps a Redis client with the degraded-mode policy the
// catalog requires: the cache is disposable, so no operation here ever
// returns an error. A disconnected or failing backend reads as a miss
// and writes as a refused set, and the caller falls through to the
// store.
package cache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is a capability-checked Redis client. The zero-value-like
// client returned for an empty URL is permanently disconnected and
// still safe to use.
type Client struct {
	rdb       *redis.Client
	connected atomic.Bool
}

// New creates a Client for the given Redis URL and pings it once.
// Connection failure is not fatal: the client starts disconnected and
// every operation degrades to a miss. An empty URL disables caching
// entirely.
func New(ctx context.Context, url string) *Client {
	c := &Client{}
	if url == "" {
		slog.Info("cache disabled: no redis url configured")
		return c
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		slog.Warn("cache disabled: invalid redis url", "error", err)
		return c
	}

	c.rdb = redis.NewClient(opts)
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("cache unavailable, continuing without it", "error", err)
		return c
	}

	c.connected.Store(true)
	slog.Info("cache connected", "addr", opts.Addr)
	return c
}

// IsConnected reports whether the backend answered the startup ping.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Get returns the cached value for key. Any failure, including a
// disconnected backend, is reported as a miss.
func (c *Client) Get(ctx context.Context, key string) (string, bool) {
	if !c.IsConnected() {
		return "", false
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("cache get failed", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

// Set stores value under key with the given expiry. Returns false when
// the write was refused; callers treat that as a no-op.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	if !c.IsConnected() {
		return false
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Debug("cache set failed", "key", key, "error", err)
		return false
	}
	return true
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
