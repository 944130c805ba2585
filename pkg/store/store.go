// Package store defines the repository boundary of the scheduling engine and
// its storage backends.
//
// The engine reads a project's anchor dates and task list, computes, and
// writes back one batch of date updates. Every backend must apply a batch
// atomically: either every update in it is stored or none is.
//
// Backends:
//   - memory: in-process maps, for tests and the HTTP server's demo mode
//   - file: one JSON project file per project, for the CLI
//   - mongo (subpackage): MongoDB collections with transactional batches
//
// Transient read failures are wrapped with [Retryable] so callers can use
// [RetryWithBackoff]. Writes are never retried.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/critpath/pkg/schedule"
)

// Sentinel errors for repository operations.
var (
	// ErrNotFound is returned when a project or task does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a batch references a task that is not
	// part of the project. The whole batch is rejected.
	ErrConflict = errors.New("batch conflicts with stored tasks")
)

// TaskRepository reads and writes the tasks of a project.
type TaskRepository interface {
	// List returns the project's tasks in stored order. An unknown project
	// yields an empty list.
	List(ctx context.Context, projectID string) ([]schedule.Task, error)

	// BatchUpdate writes the engine-owned fields of several tasks in one
	// atomic operation.
	BatchUpdate(ctx context.Context, projectID string, updates []schedule.TaskUpdate) error

	// SaveTask replaces one task record, keeping its position in the list.
	// Returns ErrNotFound if the task does not exist.
	SaveTask(ctx context.Context, task schedule.Task) error
}

// ProjectRepository reads project anchor dates.
type ProjectRepository interface {
	// Get returns the project or ErrNotFound.
	Get(ctx context.Context, projectID string) (*schedule.Project, error)
}

// Store combines both repositories over one backend.
type Store interface {
	TaskRepository
	ProjectRepository

	// Put stores a whole project, replacing any previous tasks.
	Put(ctx context.Context, project schedule.Project, tasks []schedule.Task) error

	Close() error
}

// validateBatch checks that every update targets a known task.
func validateBatch(tasks []schedule.Task, updates []schedule.TaskUpdate) (map[string]int, error) {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}
	for _, u := range updates {
		if _, ok := index[u.ID]; !ok {
			return nil, fmt.Errorf("%w: unknown task %s", ErrConflict, u.ID)
		}
	}
	return index, nil
}
