// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"

	"course_backend/internal/platform/cache"
)

// NewCacheStore creates the Store behind the memo.
// If Redis is available, it returns a Redis-backed implementation shared by
// every process. Otherwise, it falls back to the in-process store.
func NewCacheStore(rdb *redis.Client, ttl time.Duration) cache.Store {
	if rdb != nil {
		return cache.NewRedisStore(rdb, ttl, "course")
	}
	return cache.NewMemoryStore(ttl)
}
