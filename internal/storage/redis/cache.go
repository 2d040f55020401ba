package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace    = "fb"
	compositePrefix = "rating:composite"
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RatingCache keeps composite donor ratings in Redis.
type RatingCache struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

var newRedisClient = func(opts *redis.Options) *redis.Client {
	return redis.NewClient(opts)
}

// New connects to Redis at url and verifies connectivity.
func New(ctx context.Context, url string, ttl time.Duration) (*RatingCache, error) {
	if url == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := newRedisClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RatingCache{store: raw, raw: raw, ttl: ttl}, nil
}

// CompositeKey returns the cache key of a donor's composite rating.
func (c *RatingCache) CompositeKey(donorID int64) string {
	return fmt.Sprintf("%s:%s:%d", keyNamespace, compositePrefix, donorID)
}

// Get returns the cached composite rating. A missing key is reported with ok=false.
func (c *RatingCache) Get(ctx context.Context, donorID int64) (float64, bool, error) {
	if c.store == nil {
		return 0, false, errors.New("redis client not initialized")
	}
	raw, err := c.store.Get(ctx, c.CompositeKey(donorID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("decode cached rating %q: %w", raw, err)
	}
	return v, true, nil
}

// Set stores a composite rating for the configured TTL.
func (c *RatingCache) Set(ctx context.Context, donorID int64, composite float64) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	value := strconv.FormatFloat(composite, 'f', -1, 64)
	return c.store.Set(ctx, c.CompositeKey(donorID), value, c.ttl).Err()
}

// Invalidate drops the cached rating of a donor.
func (c *RatingCache) Invalidate(ctx context.Context, donorID int64) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Del(ctx, c.CompositeKey(donorID)).Err()
}

// Ping checks the connection.
func (c *RatingCache) Ping(ctx context.Context) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *RatingCache) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
