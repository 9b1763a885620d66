// Package cache is a process-local TTL cache with single-flight loading.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     any
	expiresAt time.Time
}

type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	flight  singleflight.Group
	now     func() time.Time
}

// NewStore keeps entries for ttl. A ttl <= 0 keeps them until overwritten.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(s.now()) {
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (s *Store) Set(key string, value any) {
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: expiresAt}
	s.mu.Unlock()
}

// GetOrLoad returns the cached value or runs loader once per key across
// concurrent callers. The shared load is detached from the first caller's
// cancellation; each caller still stops waiting when its own ctx ends.
// Errors are never cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if value, ok := s.Get(key); ok {
		return value, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) {
		if cached, ok := s.Get(key); ok {
			return cached, nil
		}
		loaded, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}
		s.Set(key, loaded)
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

type lookup[T any] struct {
	value  T
	exists bool
}

// Lookup caches a repository-style (value, exists, error) read, including
// misses.
func Lookup[T any](ctx context.Context, s *Store, key string, load func(context.Context) (T, bool, error)) (T, bool, error) {
	v, err := s.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		value, exists, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return lookup[T]{value: value, exists: exists}, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}

	found, ok := v.(lookup[T])
	if !ok {
		var zero T
		return zero, false, fmt.Errorf("cache key %q holds %T", key, v)
	}
	return found.value, found.exists, nil
}
