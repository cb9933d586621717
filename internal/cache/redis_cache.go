// Package cache provides a Redis-backed store for fetched FPL payloads so
// repeated optimization requests do not hammer the upstream API.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "fpl:"

// RedisCache caches raw payloads with a TTL. Errors degrade to cache misses;
// the caller falls back to fetching.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Entry
}

// NewRedisCache wraps an already connected Redis client.
func NewRedisCache(client *redis.Client, ttl time.Duration, log *logrus.Logger) *RedisCache {
	c := &RedisCache{
		client: client,
		ttl:    ttl,
		logger: log.WithField("component", "payload_cache"),
	}
	c.logger.WithFields(logrus.Fields{
		"ttl": ttl,
	}).Info("Payload cache initialized")
	return c
}

// Get returns the cached payload for key, or false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache read failed, treating as miss")
		return nil, false
	}
	return val, true
}

// Set stores the payload under key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, keyPrefix+key, value, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
