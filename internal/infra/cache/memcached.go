package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

type MemcachedCache struct {
	mc *memcache.Client
}

func NewMemcachedCache(mc *memcache.Client) *MemcachedCache {
	return &MemcachedCache{mc: mc}
}

func (c *MemcachedCache) Get(ctx context.Context, key string) (string, bool) {
	item, err := c.mc.Get(key)
	if err != nil {
		if err != memcache.ErrCacheMiss {
			slog.DebugContext(ctx, "memcached get failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return "", false
	}
	return string(item.Value), true
}

func (c *MemcachedCache) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	err := c.mc.Set(&memcache.Item{
		Key:        key,
		Value:      []byte(value),
		Expiration: int32(ttl / time.Second),
	})
	if err != nil {
		slog.DebugContext(ctx, "memcached set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func (c *MemcachedCache) Delete(ctx context.Context, key string) {
	_ = c.mc.Delete(key)
}
