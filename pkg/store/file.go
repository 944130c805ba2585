package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	cperrors "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/io"
	"github.com/matzehuels/critpath/pkg/schedule"
)

// FileStore keeps each project as a JSON project file in a directory.
// Writes replace the whole file atomically, which makes every batch
// all-or-nothing.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	pinned  map[string]string // projectID -> explicit file path
}

// NewFileStore creates a file-backed store.
// If baseDir is empty, defaults to ~/.config/critpath/projects/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "critpath", "projects")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// OpenProjectFile returns a store serving the project in a single file,
// whatever the file is named, along with that project's ID. Updates are
// written back to the same file.
func OpenProjectFile(path string) (*FileStore, string, error) {
	pf, err := io.ImportJSON(path)
	if err != nil {
		return nil, "", err
	}
	s := &FileStore{
		baseDir: filepath.Dir(path),
		pinned:  map[string]string{pf.Project.ID: path},
	}
	return s, pf.Project.ID, nil
}

func (s *FileStore) projectPath(projectID string) (string, error) {
	if err := cperrors.ValidateProjectID(projectID); err != nil {
		return "", err
	}
	if path, ok := s.pinned[projectID]; ok {
		return path, nil
	}
	return filepath.Join(s.baseDir, projectID+".json"), nil
}

// load reads a project file. The caller holds s.mu.
func (s *FileStore) load(projectID string) (*io.ProjectFile, string, error) {
	path, err := s.projectPath(projectID)
	if err != nil {
		return nil, "", err
	}
	pf, err := io.ImportJSON(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, path, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return nil, path, err
	}
	return pf, path, nil
}

func (s *FileStore) Get(ctx context.Context, projectID string) (*schedule.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pf, _, err := s.load(projectID)
	if err != nil {
		return nil, err
	}
	return &pf.Project, nil
}

func (s *FileStore) List(ctx context.Context, projectID string) ([]schedule.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pf, _, err := s.load(projectID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return pf.Tasks, nil
}

func (s *FileStore) BatchUpdate(ctx context.Context, projectID string, updates []schedule.TaskUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pf, path, err := s.load(projectID)
	if err != nil {
		return err
	}
	index, err := validateBatch(pf.Tasks, updates)
	if err != nil {
		return err
	}
	for _, u := range updates {
		u.Apply(&pf.Tasks[index[u.ID]])
	}
	return io.ExportJSON(pf, path)
}

func (s *FileStore) SaveTask(ctx context.Context, task schedule.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pf, path, err := s.load(task.ProjectID)
	if err != nil {
		return err
	}
	for i := range pf.Tasks {
		if pf.Tasks[i].ID == task.ID {
			pf.Tasks[i] = task.Clone()
			return io.ExportJSON(pf, path)
		}
	}
	return fmt.Errorf("task %s: %w", task.ID, ErrNotFound)
}

func (s *FileStore) Put(ctx context.Context, project schedule.Project, tasks []schedule.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.projectPath(project.ID)
	if err != nil {
		return err
	}
	pf := &io.ProjectFile{Project: project, Tasks: schedule.CloneTasks(tasks)}
	for i := range pf.Tasks {
		if pf.Tasks[i].ProjectID == "" {
			pf.Tasks[i].ProjectID = project.ID
		}
	}
	return io.ExportJSON(pf, path)
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for project files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
