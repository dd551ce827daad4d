package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			slog.DebugContext(ctx, "redis cache get failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return "", false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	err := c.rdb.Set(ctx, key, value, ttl).Err()
	if err != nil {
		slog.DebugContext(ctx, "redis cache set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	_ = c.rdb.Del(ctx, key).Err()
}
