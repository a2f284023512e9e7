package console

import (
	"context"
	"sync"
)

// ListStore holds the in-memory snapshot of one resource collection. It is
// the single source of truth for the list view: Load replaces the snapshot
// atomically and never merges partially, so a failed fetch leaves the prior
// snapshot visible. Items keep the order the backend returned them in.
type ListStore[T any] struct {
	mu     sync.RWMutex
	items  []T
	loaded bool
	fetch  func(context.Context) ([]T, error)
}

// NewListStore creates a store backed by the given fetch function.
func NewListStore[T any](fetch func(context.Context) ([]T, error)) *ListStore[T] {
	return &ListStore[T]{fetch: fetch}
}

// Load fetches the full collection and replaces the snapshot. It is
// idempotent and safe to call after every mutation. On failure the existing
// snapshot is left unchanged and the error is returned for the caller to
// surface.
func (s *ListStore[T]) Load(ctx context.Context) error {
	items, err := s.fetch(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current item list.
func (s *ListStore[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Loaded reports whether any load has ever succeeded. The list view shows a
// loading state until then, and an empty state afterwards.
func (s *ListStore[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Len returns the current snapshot size.
func (s *ListStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Find returns the first item matching the predicate.
func (s *ListStore[T]) Find(match func(T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}
