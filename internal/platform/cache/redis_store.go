package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis so several processes can share cached reads.
// Each tag is a Redis set holding the value keys stored under it.
type RedisStore struct {
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ Store = (*RedisStore)(nil)

// invalidateScript deletes every member of the tag set KEYS[1] and the set
// itself in one step, so a concurrent Set either lands before it and is
// deleted, or after it with its tag membership intact.
var invalidateScript = redis.NewScript(`
local members = redis.call('SMEMBERS', KEYS[1])
for i = 1, #members, 500 do
	redis.call('DEL', unpack(members, i, math.min(i + 499, #members)))
end
redis.call('DEL', KEYS[1])
return #members
`)

// NewRedisStore creates a RedisStore.
// If ttl is 0, it defaults to DefaultTTL. If namespace is empty, it uses "cache".
func NewRedisStore(rdb *redis.Client, ttl time.Duration, namespace string) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "cache"
	}
	return &RedisStore{rdb: rdb, ttl: ttl, namespace: namespace}
}

// Get returns the cached value for key. A missing key is not an error.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, s.valueKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set stores value and registers key in the set of every tag.
// Tag sets get the same TTL so abandoned sets expire with their values.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, tags []Tag) error {
	vk := s.valueKey(key)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, vk, value, s.ttl)
		for _, t := range tags {
			tk := s.tagKey(t)
			pipe.SAdd(ctx, tk, vk)
			pipe.Expire(ctx, tk, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// Invalidate deletes every value registered under the tags, then the tag sets themselves.
func (s *RedisStore) Invalidate(ctx context.Context, tags ...Tag) error {
	for _, t := range tags {
		if err := invalidateScript.Run(ctx, s.rdb, []string{s.tagKey(t)}).Err(); err != nil {
			return fmt.Errorf("cache: invalidate tag %s: %w", t, err)
		}
	}
	return nil
}

func (s *RedisStore) valueKey(key string) string {
	return s.namespace + ":v:" + safe(key)
}

func (s *RedisStore) tagKey(t Tag) string {
	return s.namespace + ":t:" + safe(t.String())
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
