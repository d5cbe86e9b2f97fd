package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStatsCache implements report.StatsCache using Redis. This is suitable
// for distributed deployments where multiple instances serve dashboards over
// the same data.
type RedisStatsCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisCacheConfig holds Redis connection configuration
type RedisCacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisStatsCache creates a new Redis-backed cache and verifies the
// connection.
func NewRedisStatsCache(cfg RedisCacheConfig) (*RedisStatsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStatsCache{
		client:    client,
		keyPrefix: "shopsync:",
	}, nil
}

// NewRedisStatsCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisStatsCacheWithClient(client *redis.Client, keyPrefix string) *RedisStatsCache {
	if keyPrefix == "" {
		keyPrefix = "shopsync:"
	}
	return &RedisStatsCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached payload for the key
func (c *RedisStatsCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return payload, true, nil
}

// Set stores the payload under the key with the given TTL
func (c *RedisStatsCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Close releases the Redis connection
func (c *RedisStatsCache) Close() error {
	return c.client.Close()
}
