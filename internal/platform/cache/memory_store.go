package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is the process-local Store backed by go-cache.
// Values live in go-cache with a TTL; the tag index is kept alongside so that
// an invalidation can find every key stored under a tag.
type MemoryStore struct {
	mu      sync.Mutex
	entries *gocache.Cache
	byTag   map[string]map[string]struct{}
	keyTags map[string][]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore. If ttl is 0, it defaults to DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: gocache.New(ttl, 2*ttl),
		byTag:   make(map[string]map[string]struct{}),
		keyTags: make(map[string][]string),
	}
}

// Get returns the value stored under key, if it has not expired or been invalidated.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

// Set stores value under key and associates it with tags, replacing any
// previous tag association of the key.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, tags []Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unindex(key)
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		name := t.String()
		keys, ok := s.byTag[name]
		if !ok {
			keys = make(map[string]struct{})
			s.byTag[name] = keys
		}
		keys[key] = struct{}{}
		names = append(names, name)
	}
	s.keyTags[key] = names
	s.entries.Set(key, value, gocache.DefaultExpiration)
	return nil
}

// Invalidate evicts every entry stored with any of the given tags.
func (s *MemoryStore) Invalidate(_ context.Context, tags ...Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range tags {
		keys := s.byTag[t.String()]
		for key := range keys {
			s.unindex(key)
			s.entries.Delete(key)
		}
		delete(s.byTag, t.String())
	}
	return nil
}

// Len reports the number of live entries.
func (s *MemoryStore) Len() int {
	return s.entries.ItemCount()
}

// unindex drops key from every tag set it belongs to. Callers hold s.mu.
func (s *MemoryStore) unindex(key string) {
	for _, name := range s.keyTags[key] {
		if keys, ok := s.byTag[name]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(s.byTag, name)
			}
		}
	}
	delete(s.keyTags, key)
}
