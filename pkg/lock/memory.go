package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matzehuels/critpath/pkg/observability"
)

// Memory is an in-process Locker backed by one semaphore per project.
//
// A project's slot exists only while a run holds or waits for it, so a
// long-running server does not accumulate one entry per project it has
// ever scheduled.
type Memory struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// slot is a one-token semaphore. refs counts the holder plus the waiters.
type slot struct {
	ch   chan struct{}
	refs int
}

// NewMemory creates an in-process locker.
func NewMemory() *Memory {
	return &Memory{slots: make(map[string]*slot)}
}

func (m *Memory) ref(projectID string) *slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[projectID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[projectID] = s
	}
	s.refs++
	return s
}

func (m *Memory) unref(projectID string, s *slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(m.slots, projectID)
	}
}

// active returns the number of projects currently held or waited on.
func (m *Memory) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}

func (m *Memory) Acquire(ctx context.Context, projectID string) (Lease, error) {
	ctx, cancel := withDefaultWait(ctx)
	defer cancel()

	start := time.Now()
	s := m.ref(projectID)
	select {
	case s.ch <- struct{}{}:
		observability.Lock().OnAcquire(ctx, projectID, time.Since(start))
		return &memoryLease{owner: m, projectID: projectID, slot: s}, nil
	case <-ctx.Done():
		m.unref(projectID, s)
		observability.Lock().OnContention(ctx, projectID)
		return nil, fmt.Errorf("project %s: %w", projectID, ErrLocked)
	}
}

type memoryLease struct {
	once      sync.Once
	owner     *Memory
	projectID string
	slot      *slot
}

func (l *memoryLease) Release(context.Context) error {
	l.once.Do(func() {
		<-l.slot.ch
		l.owner.unref(l.projectID, l.slot)
	})
	return nil
}

var _ Locker = (*Memory)(nil)
