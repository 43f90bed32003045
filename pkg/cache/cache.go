// Package cache provides result caching for scan and fit pipelines.
//
// Three backends are available:
//   - FileCache: JSON entries under a directory, for CLI usage
//   - RedisCache: shared cache for server deployments
//   - NullCache: disables caching
//
// Keys are produced by a [Keyer] so CLI and server agree on key layout.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry type. Scan results go stale when texture files
// change, so they expire fastest; plans and sheets are derived from a
// scan fingerprint and can live longer.
const (
	TTLScan  = 24 * time.Hour
	TTLPlan  = 7 * 24 * time.Hour
	TTLSheet = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NullCache is a no-op cache that never stores anything.
// Useful for testing or when caching should be disabled.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always returns a cache miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

// Ensure NullCache implements Cache.
var _ Cache = (*NullCache)(nil)
