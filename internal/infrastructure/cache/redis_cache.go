package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// defaultScanBatchSize bounds each SCAN page during pattern deletes so bulk
// invalidation never blocks Redis the way KEYS would.
const defaultScanBatchSize = 100

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisCache implements Cache using Redis. It is suitable for multi-instance
// deployments where all instances share one cache.
type RedisCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	logger     *zap.Logger
}

// RedisCacheOption is a functional option for configuring the cache
type RedisCacheOption func(*RedisCache)

// WithLogger sets the logger for the cache
func WithLogger(logger *zap.Logger) RedisCacheOption {
	return func(c *RedisCache) {
		c.logger = logger
	}
}

// NewRedisCache creates a Redis-backed cache and verifies connectivity.
func NewRedisCache(cfg RedisConfig, opts ...RedisCacheOption) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := &RedisCache{
		client:     client,
		ownsClient: true,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewRedisCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisCacheWithClient(client *redis.Client, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{
		client:     client,
		ownsClient: false,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get retrieves the raw bytes stored under key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("cache miss", zap.String("key", key))
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("cache read failed",
			zap.String("key", key),
			zap.Error(err))
		return nil, false, fmt.Errorf("cache: failed to get key: %w", err)
	}

	c.logger.Debug("cache hit", zap.String("key", key))
	return data, true, nil
}

// Set stores value under key with the given expiry.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Error("cache write failed",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("cache: failed to set key: %w", err)
	}

	c.logger.Debug("cached entry",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return nil
}

// Del removes the given keys.
func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("cache delete failed",
			zap.Strings("keys", keys),
			zap.Error(err))
		return fmt.Errorf("cache: failed to delete keys: %w", err)
	}
	return nil
}

// DelPattern removes all keys matching a glob pattern using SCAN batches.
func (c *RedisCache) DelPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	var deletedCount int64

	for {
		var keys []string
		var err error
		keys, cursor, err = c.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			c.logger.Error("cache scan failed",
				zap.String("pattern", pattern),
				zap.Error(err))
			return fmt.Errorf("cache: failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			deleted, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				c.logger.Error("cache batch delete failed",
					zap.String("pattern", pattern),
					zap.Error(err))
				return fmt.Errorf("cache: failed to delete keys: %w", err)
			}
			deletedCount += deleted
		}

		if cursor == 0 {
			break
		}
	}

	c.logger.Debug("invalidated cache pattern",
		zap.String("pattern", pattern),
		zap.Int64("deleted_count", deletedCount))
	return nil
}

// Ping checks that the Redis backend is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client if this cache owns it.
func (c *RedisCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisCache implements Cache
var _ Cache = (*RedisCache)(nil)
