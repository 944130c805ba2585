// Package schedule defines the records the scheduling engine reads and writes:
// tasks, their typed and lagged dependencies, projects and batch updates.
//
// Records are validated once, at graph-build time, so that the pass
// algorithms in package cpm can assume well-formed input.
package schedule

import (
	"errors"
	"fmt"
)

// DependencyType is the relation a dependency edge imposes between the
// predecessor and the successor.
type DependencyType string

const (
	// FinishToStart: the successor starts after the predecessor finishes.
	FinishToStart DependencyType = "FS"
	// StartToStart: the successor starts after the predecessor starts.
	StartToStart DependencyType = "SS"
	// FinishToFinish: the successor finishes after the predecessor finishes.
	FinishToFinish DependencyType = "FF"
	// StartToFinish: the successor finishes after the predecessor starts.
	StartToFinish DependencyType = "SF"
)

// String returns the two-letter code.
func (t DependencyType) String() string { return string(t) }

// IsValid reports whether t is one of the four known types.
func (t DependencyType) IsValid() bool {
	switch t {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	default:
		return false
	}
}

// Validation errors returned by Task.Validate.
var (
	ErrMissingID          = errors.New("task id must not be empty")
	ErrNegativeDuration   = errors.New("duration must not be negative")
	ErrInvalidDependency  = errors.New("invalid dependency type")
	ErrMissingPredecessor = errors.New("predecessor id must not be empty")
	ErrInvertedDates      = errors.New("start date is after end date")
)

// Dependency is one entry of a task's predecessor configuration.
type Dependency struct {
	PredecessorID string         `json:"predecessor_id"`
	Type          DependencyType `json:"type"`
	LagDays       int            `json:"lag_days"`
}

// Task is a schedulable unit of work.
//
// IsCritical and FloatDays are derived by the engine. StartDate and EndDate
// are written by the engine in apply mode, or by a direct user edit.
type Task struct {
	ID            string       `json:"id"`
	ProjectID     string       `json:"project_id"`
	Name          string       `json:"name,omitempty"`
	Duration      int          `json:"duration"`
	StartDate     Date         `json:"start_date"`
	EndDate       Date         `json:"end_date"`
	BaselineStart Date         `json:"baseline_start,omitzero"`
	BaselineEnd   Date         `json:"baseline_end,omitzero"`
	Predecessors  []Dependency `json:"predecessor_configs,omitempty"`
	IsCritical    bool         `json:"is_critical"`
	FloatDays     int          `json:"float_days"`
}

// Normalize fills defaults in place: an empty dependency type means FS.
func (t *Task) Normalize() {
	for i := range t.Predecessors {
		if t.Predecessors[i].Type == "" {
			t.Predecessors[i].Type = FinishToStart
		}
	}
}

// Validate checks the record shape. It does not check references to other
// tasks; that needs the whole project and happens in package dag.
func (t Task) Validate() error {
	if t.ID == "" {
		return ErrMissingID
	}
	if t.Duration < 0 {
		return fmt.Errorf("task %s: %w (%d)", t.ID, ErrNegativeDuration, t.Duration)
	}
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.StartDate.After(t.EndDate) {
		return fmt.Errorf("task %s: %w (%s > %s)", t.ID, ErrInvertedDates, t.StartDate, t.EndDate)
	}
	for i, dep := range t.Predecessors {
		if dep.PredecessorID == "" {
			return fmt.Errorf("task %s: dependency %d: %w", t.ID, i, ErrMissingPredecessor)
		}
		if !dep.Type.IsValid() {
			return fmt.Errorf("task %s: dependency on %s: %w %q", t.ID, dep.PredecessorID, ErrInvalidDependency, dep.Type)
		}
	}
	return nil
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	if t.Predecessors != nil {
		c.Predecessors = append([]Dependency(nil), t.Predecessors...)
	}
	return c
}

// CloneTasks deep-copies a task slice.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// Project holds the anchor dates of a project.
type Project struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	StartDate        Date   `json:"start_date"`
	TargetCompletion Date   `json:"target_completion,omitzero"`
}

// TaskUpdate is the unit of a batch write: the engine-owned fields of one task.
type TaskUpdate struct {
	ID         string `json:"id"`
	StartDate  Date   `json:"start_date"`
	EndDate    Date   `json:"end_date"`
	IsCritical bool   `json:"is_critical"`
	FloatDays  int    `json:"float_days"`
}

// Apply copies the update's fields onto t.
func (u TaskUpdate) Apply(t *Task) {
	t.StartDate = u.StartDate
	t.EndDate = u.EndDate
	t.IsCritical = u.IsCritical
	t.FloatDays = u.FloatDays
}

// Changes reports whether applying u would modify t.
func (u TaskUpdate) Changes(t Task) bool {
	return !u.StartDate.Equal(t.StartDate) ||
		!u.EndDate.Equal(t.EndDate) ||
		u.IsCritical != t.IsCritical ||
		u.FloatDays != t.FloatDays
}
