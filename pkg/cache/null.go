package cache

import (
	"context"
	"time"
)

// NullCache disables preview caching: every lookup misses, so each preview
// run recomputes the schedule from the repository. It is the Runner default
// and what the CLI uses with --no-cache.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete succeeds, so invalidation after an apply run never fails.
func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
