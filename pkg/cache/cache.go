// Package cache provides pluggable byte caches for registry responses.
//
// Three backends are provided:
//   - FileCache: per-entry JSON files under a directory, for CLI usage
//   - RedisCache: shared cache for server deployments
//   - NullCache: no-op backend for tests or --refresh runs
//
// Keys are opaque strings; callers should namespace them (e.g. "pypi:flask")
// to avoid collisions between data sources.
package cache

import (
	"context"
	"time"
)

// Cache stores raw byte values under string keys with per-entry TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the backend.
	Close() error
}
