// Package cache stores rosters, layouts and rendered artifacts keyed by
// content hash.
//
// # Backends
//
//   - [FileCache]: JSON entries under a directory, used by the CLI
//   - [MemoryCache]: in-process map, used by a single server instance
//   - [RedisCache]: shared cache for several server instances
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] derives keys from content, never from names: a layout key
// includes the hash of the roster it was computed from, and an artifact key
// the hash of its layout. Refreshing a roster therefore never serves a stale
// chart. [ScopedKeyer] prefixes keys to share one backend between tenants.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Default entry lifetimes.
const (
	TTLRoster   = 5 * time.Minute
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
