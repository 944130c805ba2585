// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about scheduling runs, cache operations, and project locks.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The Prometheus implementation lives in the promhooks subpackage and is
// registered by the HTTP server command.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetScheduleHooks(promhooks.New(prometheus.DefaultRegisterer))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Schedule().OnRunStart(ctx, projectID, mode)
//	// ... compute ...
//	observability.Schedule().OnRunComplete(ctx, projectID, mode, outcome, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Schedule Hooks
// =============================================================================

// ScheduleHooks receives events from scheduling runs.
type ScheduleHooks interface {
	// OnRunStart records the start of a run in the given mode.
	OnRunStart(ctx context.Context, projectID, mode string)

	// OnRunComplete records the end of a run. Outcome is "done", "blocked"
	// or "error".
	OnRunComplete(ctx context.Context, projectID, mode, outcome string, duration time.Duration)

	// OnBlocked records a run refused because of dependency cycles.
	OnBlocked(ctx context.Context, projectID string, cycles int)

	// OnPersist records a batch write and its outcome.
	OnPersist(ctx context.Context, projectID string, tasks int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Lock Hooks
// =============================================================================

// LockHooks receives events from per-project locking.
type LockHooks interface {
	// OnAcquire records a lock acquired after waiting.
	OnAcquire(ctx context.Context, projectID string, wait time.Duration)

	// OnContention records a lock that could not be acquired.
	OnContention(ctx context.Context, projectID string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopScheduleHooks is a no-op implementation of ScheduleHooks.
type NoopScheduleHooks struct{}

func (NoopScheduleHooks) OnRunStart(context.Context, string, string)                           {}
func (NoopScheduleHooks) OnRunComplete(context.Context, string, string, string, time.Duration) {}
func (NoopScheduleHooks) OnBlocked(context.Context, string, int)                               {}
func (NoopScheduleHooks) OnPersist(context.Context, string, int, time.Duration, error)         {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopLockHooks is a no-op implementation of LockHooks.
type NoopLockHooks struct{}

func (NoopLockHooks) OnAcquire(context.Context, string, time.Duration) {}
func (NoopLockHooks) OnContention(context.Context, string)             {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	scheduleHooks ScheduleHooks = NoopScheduleHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	lockHooks     LockHooks     = NoopLockHooks{}
	hooksMu       sync.RWMutex
)

// SetScheduleHooks registers custom schedule hooks.
// This should be called once at application startup before any runs.
func SetScheduleHooks(h ScheduleHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		scheduleHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetLockHooks registers custom lock hooks.
func SetLockHooks(h LockHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		lockHooks = h
	}
}

// Schedule returns the registered schedule hooks.
func Schedule() ScheduleHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return scheduleHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Lock returns the registered lock hooks.
func Lock() LockHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return lockHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	scheduleHooks = NoopScheduleHooks{}
	cacheHooks = NoopCacheHooks{}
	lockHooks = NoopLockHooks{}
}
