package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/matzehuels/critpath/pkg/schedule"
)

// MemoryStore keeps projects in process memory. Records are copied on the
// way in and out, so callers never share task slices with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]schedule.Project
	tasks    map[string][]schedule.Task
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[string]schedule.Project),
		tasks:    make(map[string][]schedule.Task),
	}
}

func (s *MemoryStore) Get(ctx context.Context, projectID string) (*schedule.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return &p, nil
}

func (s *MemoryStore) List(ctx context.Context, projectID string) ([]schedule.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schedule.CloneTasks(s.tasks[projectID]), nil
}

// BatchUpdate validates the whole batch before touching any task, so a
// rejected batch leaves the project unchanged.
func (s *MemoryStore) BatchUpdate(ctx context.Context, projectID string, updates []schedule.TaskUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.tasks[projectID]
	index, err := validateBatch(tasks, updates)
	if err != nil {
		return err
	}
	for _, u := range updates {
		u.Apply(&tasks[index[u.ID]])
	}
	return nil
}

func (s *MemoryStore) SaveTask(ctx context.Context, task schedule.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.tasks[task.ProjectID]
	for i := range tasks {
		if tasks[i].ID == task.ID {
			tasks[i] = task.Clone()
			return nil
		}
	}
	return fmt.Errorf("task %s: %w", task.ID, ErrNotFound)
}

func (s *MemoryStore) Put(ctx context.Context, project schedule.Project, tasks []schedule.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := schedule.CloneTasks(tasks)
	for i := range stored {
		if stored[i].ProjectID == "" {
			stored[i].ProjectID = project.ID
		}
	}
	s.projects[project.ID] = project
	s.tasks[project.ID] = stored
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
