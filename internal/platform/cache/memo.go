package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Recorder receives cache outcome counts.
// Following Go convention: interfaces are defined by the consumer (cache), not the provider (metrics).
type Recorder interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheFillSkipped()
	RecordCacheInvalidation(tags int)
}

type nopRecorder struct{}

func (nopRecorder) RecordCacheHit()             {}
func (nopRecorder) RecordCacheMiss()            {}
func (nopRecorder) RecordCacheFillSkipped()     {}
func (nopRecorder) RecordCacheInvalidation(int) {}

// DefaultLoadTimeout bounds a shared load once it no longer follows the
// context of the caller that started it.
const DefaultLoadTimeout = 30 * time.Second

// Memo is the read-through layer over a Store.
//
// Concurrent misses for the same key share one load. A value loaded while an
// invalidation ran in this process is returned to the caller but not stored,
// so a slow read can never put pre-mutation data back after the mutation's
// invalidation already fired.
type Memo struct {
	store       Store
	rec         Recorder
	group       singleflight.Group
	loadTimeout time.Duration

	mu    sync.RWMutex
	epoch atomic.Uint64
}

// NewMemo creates a Memo over store. A nil recorder discards metrics.
func NewMemo(store Store, rec Recorder) *Memo {
	if store == nil {
		store = NoopStore{}
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Memo{store: store, rec: rec, loadTimeout: DefaultLoadTimeout}
}

// Invalidate evicts every entry stored under the tags.
// Failures are logged and swallowed: the relational write already committed.
func (m *Memo) Invalidate(ctx context.Context, tags ...Tag) {
	if len(tags) == 0 {
		return
	}
	m.mu.Lock()
	m.epoch.Add(1)
	m.mu.Unlock()

	m.rec.RecordCacheInvalidation(len(tags))
	if err := m.store.Invalidate(ctx, tags...); err != nil {
		slog.Error("cache invalidation failed", "tags", tagNames(tags), "error", err)
	}
}

// Fetch returns the value cached under key, or runs load, caches its result
// under tags and returns it. Errors from load are returned and never cached.
func Fetch[T any](ctx context.Context, m *Memo, key string, tags []Tag, load func(context.Context) (T, error)) (T, error) {
	var zero T

	// 1) Check cache
	b, ok, err := m.store.Get(ctx, key)
	if err != nil {
		slog.Warn("cache read failed", "key", key, "error", err)
	}
	if ok {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			m.rec.RecordCacheHit()
			return out, nil
		}
		slog.Warn("discarding corrupted cache entry", "key", key)
	}
	m.rec.RecordCacheMiss()

	// 2) Fallback to the loader, one load per key at a time.
	// The load is shared, so it runs detached from the first caller's cancellation.
	ch := m.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.loadTimeout)
		defer cancel()

		start := m.epoch.Load()
		out, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}

		// 3) Store in cache unless an invalidation raced the load (best effort)
		m.mu.RLock()
		defer m.mu.RUnlock()
		if m.epoch.Load() != start {
			m.rec.RecordCacheFillSkipped()
			return b, nil
		}
		if err := m.store.Set(loadCtx, key, b, tags); err != nil {
			slog.Warn("cache write failed", "key", key, "error", err)
		}
		return b, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return zero, res.Err
	}

	var out T
	if err := json.Unmarshal(res.Val.([]byte), &out); err != nil {
		return zero, err
	}
	return out, nil
}

func tagNames(tags []Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.String())
	}
	return names
}
