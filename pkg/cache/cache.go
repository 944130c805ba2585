// Package cache stores computed schedule previews.
//
// A preview is a pure function of the project's anchor dates, its task list
// and the criticality epsilon, so it can be served again until any of those
// change. Entries are keyed per project and carry the hash of their inputs;
// a caller compares that hash before trusting an entry, and apply-mode runs
// delete the project's entry outright.
//
// Backends:
//   - [NullCache]: caching disabled
//   - [FileCache]: a directory of JSON entries, for the CLI
//   - [RedisCache]: a shared Redis server, for the HTTP service
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// DefaultTTL is the lifetime of a preview entry.
const DefaultTTL = 10 * time.Minute

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value and true, or false on a miss. An expired entry
	// is a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// DefaultDir returns the CLI cache directory, ~/.cache/critpath on Linux.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "critpath"), nil
}
