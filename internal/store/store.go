// SPDX-License-Identifier: MPL-2.0

// Package store provides the key-value persistence capability consumed by the
// update cache. The Store interface keeps the cache mockable; the default
// implementation is SQLite-backed (sqlite.go) and an in-memory implementation
// (MemStore) backs tests.
package store

import (
	"context"
	"sync"
)

// Store is an injectable key-value capability. Get reports absence through
// its boolean rather than an error, so "no record yet" never reads as a
// failure. Set is allowed to fail; callers decide whether that matters.
type Store interface {
	// Get returns the value for key, or found=false when no value exists.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases any resources held by the store.
	Close() error
}

// MemStore is an in-memory Store for tests and ephemeral runs.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

// Get implements Store.
func (m *MemStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	// Copy so callers cannot mutate the stored value.
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set implements Store.
func (m *MemStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

// Close implements Store. It is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
