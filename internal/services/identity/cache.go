package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/omnigram/internal/dependencies/clock"
	"github.com/mcoot/omnigram/internal/model"
)

// Cache remembers recent resolutions
type Cache interface {
	Get(ctx context.Context, key string) (model.PlayerID, bool, error)
	Set(ctx context.Context, key string, id model.PlayerID) error
}

// MemoryCache is a process-local cache with a fixed TTL
type MemoryCache struct {
	ttl   time.Duration
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	id        model.PlayerID
	expiresAt time.Time
}

// NewMemoryCache creates an in-process cache
func NewMemoryCache(ttl time.Duration, clock clock.Clock) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]cacheEntry),
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (model.PlayerID, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		return "", false, nil
	}
	return e.id, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, id model.PlayerID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	// Expired entries are swept on write
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{id: id, expiresAt: now.Add(c.ttl)}
	return nil
}

// RedisCache shares resolutions across server instances
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a cache storing keys under prefix with the given TTL
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(key string) string {
	return fmt.Sprintf("%s:identity:%s", c.prefix, key)
}

func (c *RedisCache) Get(ctx context.Context, key string) (model.PlayerID, bool, error) {
	id, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.PlayerID(id), true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, id model.PlayerID) error {
	return c.client.Set(ctx, c.key(key), string(id), c.ttl).Err()
}
