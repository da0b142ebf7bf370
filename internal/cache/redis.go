package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"inventory/internal/log"
)

// RedisCache stores JSON-encoded values under namespace:key. Entries expire
// through Redis TTLs, so it needs no Manager.
type RedisCache[T any] struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
	logger    *log.Logger
}

var _ Cache[int] = (*RedisCache[int])(nil)

// NewRedisClient connects to a single Redis node and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func NewRedisCache[T any](client redis.UniversalClient, namespace string, ttl time.Duration, logger *log.Logger) *RedisCache[T] {
	return &RedisCache[T]{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
		logger:    logger.WithComponent(log.ComponentCache),
	}
}

func (c *RedisCache[T]) key(k string) string {
	return c.namespace + ":" + k
}

// Get treats every Redis or decoding failure as a miss.
func (c *RedisCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "Redis get failed", log.FieldCacheKey, key, log.FieldError, err)
		}
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.WarnContext(ctx, "Cached value is not decodable", log.FieldCacheKey, key, log.FieldError, err)
		return zero, false
	}
	return v, true
}

func (c *RedisCache[T]) Set(ctx context.Context, key string, data T) {
	raw, err := json.Marshal(data)
	if err != nil {
		c.logger.WarnContext(ctx, "Value is not encodable", log.FieldCacheKey, key, log.FieldError, err)
		return
	}
	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Redis set failed", log.FieldCacheKey, key, log.FieldError, err)
	}
}

func (c *RedisCache[T]) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.logger.WarnContext(ctx, "Redis delete failed", log.FieldCacheKey, key, log.FieldError, err)
	}
}

// Purge removes every key of the namespace with SCAN, never KEYS.
func (c *RedisCache[T]) Purge(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, c.namespace+":*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			c.del(ctx, batch)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.WarnContext(ctx, "Redis scan failed", log.FieldError, err)
	}
	if len(batch) > 0 {
		c.del(ctx, batch)
	}
}

func (c *RedisCache[T]) del(ctx context.Context, keys []string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "Redis purge failed", log.FieldError, err)
	}
}
