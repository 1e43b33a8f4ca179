// Package cache stores computed rankings, layouts and trend lines so that
// repeated requests for the same dataset and view skip the work.
//
// Three backends are provided:
//
//   - file: one JSON file per entry under a directory, for the CLI
//   - redis: a shared store for multi-instance servers
//   - null: stores nothing
//
// Keys come from a Keyer, which hashes the inputs that determine a result.
// Wrap a backend with Instrument to report hits and misses to the
// observability cache hooks.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Default entry lifetimes.
const (
	RanksTTL  = 24 * time.Hour
	LayoutTTL = 24 * time.Hour
	TrendTTL  = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// GetJSON decodes the entry for key into v. An entry that no longer
// decodes is reported as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
