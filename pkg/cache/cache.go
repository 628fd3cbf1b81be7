// Package cache provides byte caches used to memoize rendered badges.
//
// Rendering is deterministic, so a rasterized PNG can be cached under a hash
// of everything that went into it (see [Key]). Backends:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [MemoryCache]: in-process, cost-bounded, backed by ristretto
//   - [FileCache]: one file per entry under a directory
//   - [RedisCache]: shared between server replicas
//
// All backends treat an expired or unreadable entry as a miss.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Key builds a cache key of the form prefix:sha256(parts...).
func Key(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
