// Package cache provides the tag-invalidated read-through cache that sits in
// front of the relational repositories.
package cache

import (
	"context"
	"time"
)

// DefaultTTL bounds how long an entry may live when nothing invalidates it.
const DefaultTTL = 10 * time.Minute

// Store holds serialized results keyed by string and indexed by tag.
// Invalidating a tag evicts every entry that was stored with it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, tags []Tag) error
	Invalidate(ctx context.Context, tags ...Tag) error
}

// NoopStore never retains anything; every read goes to the loader.
type NoopStore struct{}

var _ Store = NoopStore{}

func (NoopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NoopStore) Set(context.Context, string, []byte, []Tag) error  { return nil }
func (NoopStore) Invalidate(context.Context, ...Tag) error          { return nil }
