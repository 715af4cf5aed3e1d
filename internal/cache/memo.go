// Package cache provides a small thread-safe memo store for derived engine
// state. Derived values are always recomputable from the immutable dataset,
// so there is no TTL or eviction pressure: entries are keyed by the filter
// inputs that produced them and the store is bounded by dropping everything
// when it grows past a limit.
package cache

import (
	"context"
	"sync"

	"github.com/dpup/prefab/logging"
)

// maxEntries bounds the store; the composite keys span a small input space
// (buffer values, view modes), so hitting the bound means keys are being
// built incorrectly
const maxEntries = 256

// Memo is a keyed store of derived values of type T
type Memo[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

// NewMemo creates an empty memo store
func NewMemo[T any]() *Memo[T] {
	return &Memo[T]{entries: make(map[string]T)}
}

// Get retrieves the value derived for key
func (m *Memo[T]) Get(key string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// Set stores the value derived for key
func (m *Memo[T]) Set(ctx context.Context, key string, value T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) >= maxEntries {
		logging.Warnw(ctx, "Memo store overflow, resetting",
			"entries", len(m.entries), "key", key)
		m.entries = make(map[string]T)
	}
	m.entries[key] = value
}

// Len returns the number of stored entries
func (m *Memo[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
