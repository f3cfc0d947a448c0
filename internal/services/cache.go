package services

import (
	"context"
	"fmt"
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache is a small byte cache used to reuse analytics/overview results for a
// short TTL instead of re-running the aggregation on every request.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// NewCache returns a Redis-backed cache when redisURL is set and reachable,
// otherwise an in-process cache. A nil return means caching is disabled.
func NewCache(redisURL string, ttl time.Duration) Cache {
	if ttl <= 0 {
		return nil
	}
	if redisURL != "" {
		cache, err := newRedisCache(redisURL)
		if err != nil {
			log.Printf("⚠️ Redis cache unavailable, falling back to memory: %v", err)
		} else {
			log.Println("✅ Redis cache connected")
			return cache
		}
	}
	return newMemoryCache(ttl)
}

type redisCache struct {
	client *redis.Client
}

func newRedisCache(redisURL string) (*redisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisCache{client: client}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return value, true
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("⚠️ Failed to cache %s: %v", key, err)
	}
}

type memoryCache struct {
	store *gocache.Cache
}

func newMemoryCache(defaultTTL time.Duration) *memoryCache {
	return &memoryCache{store: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	value, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	bytes, ok := value.([]byte)
	return bytes, ok
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}
