// Package cache stores the output of sketch runs so that repeating a run on
// the same document with the same options is a lookup instead of a rewrite.
//
// Backends:
//   - [NullCache]: stores nothing (--no-cache)
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for server deployments
//   - [MongoCache]: shared cache with a TTL index
//
// [Open] picks a backend from a spec string such as "redis://localhost:6379/0".
//
// Keys are built by a [Keyer] from a content hash of the input document and
// every option that affects the output, so a changed seed or scale never hits
// a stale entry.
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	// SketchTTL is how long a sketched document stays cached.
	SketchTTL = 7 * 24 * time.Hour

	// FontTTL is how long a font family lookup stays cached.
	FontTTL = 30 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiration. Implementations are safe
// for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
