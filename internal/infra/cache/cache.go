// Package cache provides a minimal TTL key-value contract used to keep hot
// auth lookups off the database. Backed by redis or memcached depending on
// server configuration.
package cache

import (
	"context"
	"time"
)

// Cache is a best-effort TTL store. A miss and a backend failure look the
// same to callers; auth falls back to the database either way.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}
