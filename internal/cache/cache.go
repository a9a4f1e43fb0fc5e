// Package cache is the best-effort accelerator in front of the record
// store. It maps short keys to target URLs with a TTL. Every operation
// runs under its own short deadline; callers treat any error the same
// as a miss, so a degraded Redis adds at most that deadline to a
// request and never fails it.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL is how long a key -> target URL entry stays cached.
const DefaultTTL = 24 * time.Hour

const (
	readTimeout  = 250 * time.Millisecond
	writeTimeout = 750 * time.Millisecond
	pingTimeout  = 2 * time.Second
)

// ErrMiss is returned by Get when the key is not cached. Callers that
// only care about degradation can treat every error as a miss; ErrMiss
// lets them skip the warning log for the ordinary case.
var ErrMiss = errors.New("cache miss")

// Cache is the key -> target URL store consulted before the database.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, targetURL string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisCache implements Cache on a go-redis client.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// New builds a Redis-backed cache and pings it once. A failed ping is
// logged and tolerated: the cache is an accelerator, the process must
// come up without it.
func New(addr string, logger *zap.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  pingTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, serving from store only", zap.String("addr", addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", addr))
	}

	return &RedisCache{
		client: client,
		logger: logger,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key, targetURL string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return c.client.Set(ctx, key, targetURL, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return c.client.Del(ctx, key).Err()
}

// Disabled is the Cache used when no Redis address is configured.
// Get always misses, writes succeed silently.
type Disabled struct{}

func (Disabled) Get(ctx context.Context, key string) (string, error) {
	return "", ErrMiss
}

func (Disabled) Set(ctx context.Context, key, targetURL string, ttl time.Duration) error {
	return nil
}

func (Disabled) Delete(ctx context.Context, key string) error {
	return nil
}
