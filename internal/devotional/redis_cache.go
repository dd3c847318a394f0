package devotional

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ontheway/internal/models"
)

const redisKeyPrefix = "otw:devotional:"

// RedisCache keeps devotionals in Redis with a TTL
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a client with short timeouts so a slow Redis degrades to the next tier
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// NewRedisCache creates a cache over client
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached devotional or ErrCacheMiss
func (c *RedisCache) Get(ctx context.Context, date string) (*models.Devotional, error) {
	value, err := c.client.Get(ctx, redisKeyPrefix+date).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read devotional from redis: %w", err)
	}

	var d models.Devotional
	if err := json.Unmarshal(value, &d); err != nil {
		return nil, fmt.Errorf("failed to decode cached devotional: %w", err)
	}
	return &d, nil
}

// Put stores d if no entry exists yet for its date
func (c *RedisCache) Put(ctx context.Context, d *models.Devotional) error {
	value, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if err := c.client.SetNX(ctx, redisKeyPrefix+d.Date, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write devotional to redis: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
