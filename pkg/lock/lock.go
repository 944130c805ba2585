// Package lock serialises scheduling runs per project.
//
// At most one read-compute-write cycle may be in flight for a project at a
// time, otherwise two runs could both read the same task set and the later
// write would silently discard the earlier one. Different projects never
// contend.
//
// Two implementations are provided: [Memory] for a single process and
// [Redis] for several server instances sharing one task store.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrLocked is returned when a project lock could not be acquired before
// the context ended.
var ErrLocked = errors.New("project is locked by another run")

// Lease is a held project lock.
type Lease interface {
	// Release gives the lock up. Releasing twice is a no-op.
	Release(ctx context.Context) error
}

// Locker hands out per-project leases.
type Locker interface {
	// Acquire blocks until the project's lock is held or ctx ends, in which
	// case it returns an error wrapping ErrLocked.
	Acquire(ctx context.Context, projectID string) (Lease, error)
}

// DefaultWait bounds how long Acquire waits when the caller's context has
// no deadline.
const DefaultWait = 30 * time.Second

func withDefaultWait(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, DefaultWait)
}
