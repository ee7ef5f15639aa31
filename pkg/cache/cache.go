// Package cache provides a small Redis-backed TTL cache for backend
// responses that change slowly: the model catalogue and per-user analytics
// snapshots. A nil *Cache is valid and behaves as always-miss, so callers
// never branch on whether caching is configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/postflow-dev/postflow/pkg/observability"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// ErrCacheClosed is returned when operating on a closed cache.
var ErrCacheClosed = errors.New("cache is closed")

const defaultPrefix = "postflow:"

// Config holds Redis connection configuration.
type Config struct {
	// Addr is the Redis server address (host:port).
	Addr string
	// Password is the Redis password (optional).
	Password string
	// DB is the Redis database number.
	DB int
	// Prefix is the key prefix for all cache keys (default: "postflow:").
	Prefix string
	// TTL is the default entry lifetime (default: 5m).
	TTL time.Duration
}

// Cache is a Redis-backed JSON cache.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	mu     sync.RWMutex
	closed bool
}

// New connects to Redis and verifies the connection.
func New(cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Cache{client: client, prefix: prefix, ttl: ttl}, nil
}

// NewFromClient creates a cache from an existing client.
// This is useful for testing with miniredis.
func NewFromClient(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

func (c *Cache) key(kind, id string) string {
	if id == "" {
		return c.prefix + kind
	}
	return c.prefix + kind + ":" + id
}

// Get retrieves and unmarshals a cached value into v.
// Returns ErrCacheMiss when absent; a nil cache always misses.
func (c *Cache) Get(ctx context.Context, kind, id string, v any) error {
	if c == nil {
		return ErrCacheMiss
	}

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrCacheClosed
	}
	c.mu.RUnlock()

	data, err := c.client.Get(ctx, c.key(kind, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			observability.RecordCacheLookup(kind, "miss")
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal cached value: %w", err)
	}

	observability.RecordCacheLookup(kind, "hit")
	return nil
}

// Set stores a value under the default TTL. A nil cache is a no-op.
func (c *Cache) Set(ctx context.Context, kind, id string, v any) error {
	if c == nil {
		return nil
	}

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrCacheClosed
	}
	c.mu.RUnlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, c.key(kind, id), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate removes a cached value. A nil cache is a no-op.
func (c *Cache) Invalidate(ctx context.Context, kind, id string) error {
	if c == nil {
		return nil
	}

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrCacheClosed
	}
	c.mu.RUnlock()

	if err := c.client.Del(ctx, c.key(kind, id)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrCacheClosed
	}
	c.mu.RUnlock()

	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}
