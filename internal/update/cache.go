// SPDX-License-Identifier: MPL-2.0

package update

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/schl3ck/scriptup/internal/store"
)

// cacheKeyPrefix namespaces cache records in the shared key-value store so
// several managed scripts can coexist in one database.
const cacheKeyPrefix = "update-cache/"

type (
	// StorageData is the persisted record of the last manifest check.
	// LastChecked is monotonically non-decreasing across successful
	// refreshes; Versions always reflects the most recent successful fetch
	// wholesale (full replacement, never a merge).
	StorageData struct {
		LastChecked int64         `json:"lastChecked"` // epoch millis, 0 = never checked
		Versions    []VersionData `json:"versions"`
	}

	// Cache reads and writes StorageData through an injected store,
	// scoped by script name. Losing the cache costs a redundant fetch, not
	// correctness, so Save failures are reported but never escalated by the
	// callers in this package.
	Cache struct {
		store store.Store
		key   string
	}
)

// NewCache creates a Cache for the named script backed by s.
func NewCache(s store.Store, scriptName string) *Cache {
	return &Cache{
		store: s,
		key:   cacheKeyPrefix + scriptName,
	}
}

// Load returns the stored record, or the zero record {LastChecked: 0} when no
// record exists yet. A corrupt stored payload is treated the same as an
// absent one: the next successful refresh overwrites it. Only a store read
// failure is surfaced as an error.
func (c *Cache) Load(ctx context.Context) (StorageData, error) {
	raw, found, err := c.store.Get(ctx, c.key)
	if err != nil {
		return StorageData{}, fmt.Errorf("loading update cache: %w", err)
	}
	if !found {
		return StorageData{}, nil
	}

	var data StorageData
	if err := json.Unmarshal(raw, &data); err != nil {
		return StorageData{}, nil
	}
	return data, nil
}

// Save persists data, replacing any previous record. The returned error is
// advisory: callers log it and proceed with the in-memory record.
func (c *Cache) Save(ctx context.Context, data StorageData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding update cache: %w", err)
	}
	if err := c.store.Set(ctx, c.key, raw); err != nil {
		return fmt.Errorf("saving update cache: %w", err)
	}
	return nil
}

// Key returns the store key this cache writes to.
func (c *Cache) Key() string {
	return c.key
}
