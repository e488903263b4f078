// Package cache stores external search results in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements the aggregator's search cache on a Redis client.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache connects to the server at rawURL (redis://[user:pass@]host:port/db).
func NewRedisCache(rawURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: redis url: %v", shared.ErrInvalidConfig, err)
	}
	return NewRedisCacheWithClient(redis.NewClient(opt)), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get returns the tracks stored under key. A missing key is not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]models.Track, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var tracks []models.Track
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil, false, fmt.Errorf("decode cached tracks: %w", err)
	}
	return tracks, true, nil
}

// Set stores tracks under key. A zero ttl keeps the entry until evicted.
func (c *RedisCache) Set(ctx context.Context, key string, tracks []models.Track, ttl time.Duration) error {
	raw, err := json.Marshal(tracks)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
