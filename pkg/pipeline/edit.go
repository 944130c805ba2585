package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/critpath/pkg/dag"
	cperrors "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/schedule"
	"github.com/matzehuels/critpath/pkg/store"
)

// TaskEdit is a direct user change to one task.
//
// An unset StartDate or EndDate leaves the stored value. A nil Duration
// leaves the stored duration. When only the start moves, the end follows
// it so the duration is kept. A new end date changes the duration instead,
// and a Duration given with it must match the dates.
type TaskEdit struct {
	TaskID    string        `json:"task_id"`
	StartDate schedule.Date `json:"start_date"`
	EndDate   schedule.Date `json:"end_date"`
	Duration  *int          `json:"duration,omitempty"`

	// Reschedule runs an apply-mode adjustment after a verified edit.
	Reschedule bool `json:"reschedule,omitempty"`
}

// EditResult is the outcome of EditTask.
type EditResult struct {
	Task schedule.Task `json:"task"`

	// Unverified is set when the project has a dependency cycle: the edit
	// was saved, but no schedule check could be run against it.
	Unverified bool               `json:"unverified"`
	Cycles     [][]string         `json:"cycles,omitempty"`
	Warnings   []cperrors.Warning `json:"warnings,omitempty"`

	// Run is the follow-up adjustment, when one was requested and the edit
	// was verified.
	Run *Result `json:"run,omitempty"`
}

// EditTask saves a direct user edit to one task.
//
// Edits stay permitted while the project has a dependency cycle, but are
// flagged as unverified. The save is a single write and is not retried.
func (r *Runner) EditTask(ctx context.Context, projectID string, edit TaskEdit) (*EditResult, error) {
	if err := cperrors.ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	if err := cperrors.ValidateTaskID(edit.TaskID); err != nil {
		return nil, err
	}
	logger := r.Logger.With("project", projectID, "task", edit.TaskID)

	res, err := r.saveEdit(ctx, projectID, edit)
	if err != nil {
		logger.Error("edit failed", "err", err)
		return nil, err
	}
	if res.Unverified {
		logger.Warn("edit saved unverified", "cycles", len(res.Cycles))
	} else {
		logger.Info("edit saved", "start", res.Task.StartDate, "end", res.Task.EndDate)
	}

	if edit.Reschedule && !res.Unverified {
		run, err := r.Orchestrate(ctx, projectID, ModeApply)
		if err != nil {
			return nil, err
		}
		res.Run = run
		for _, t := range run.Tasks {
			if t.ID == edit.TaskID {
				res.Task = t
			}
		}
	}
	return res, nil
}

func (r *Runner) saveEdit(ctx context.Context, projectID string, edit TaskEdit) (*EditResult, error) {
	lease, err := r.Locker.Acquire(ctx, projectID)
	if err != nil {
		return nil, cperrors.Wrap(cperrors.ErrCodeLocked, err, "acquire project lock")
	}
	defer func() { _ = lease.Release(context.WithoutCancel(ctx)) }()

	var tasks []schedule.Task
	err = r.Backoff.Retry(ctx, func() error {
		var err error
		tasks, err = r.Tasks.List(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, cperrors.Wrap(cperrors.ErrCodeStorage, err, "list tasks of %s", projectID)
	}

	idx := -1
	for i, t := range tasks {
		if t.ID == edit.TaskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, cperrors.New(cperrors.ErrCodeTaskNotFound, "task %s not found in project %s", edit.TaskID, projectID)
	}

	task := tasks[idx].Clone()
	if task.ProjectID == "" {
		task.ProjectID = projectID
	}
	if err := applyEdit(&task, edit); err != nil {
		return nil, cperrors.Wrap(cperrors.ErrCodeInvalidTask, err, "edit of task %s", edit.TaskID)
	}
	if err := task.Validate(); err != nil {
		return nil, cperrors.Wrap(cperrors.ErrCodeInvalidTask, err, "edit of task %s", edit.TaskID)
	}

	edited := schedule.CloneTasks(tasks)
	edited[idx] = task
	res := &EditResult{Task: task}
	g, warnings, err := dag.Build(edited)
	if err != nil {
		return nil, cperrors.Wrap(cperrors.ErrCodeInvalidInput, err, "build task graph")
	}
	res.Warnings = warnings
	if report := g.DetectCycles(); report.HasCycle {
		res.Unverified = true
		res.Cycles = report.Cycles
		res.Warnings = append(res.Warnings, cperrors.Warn(cperrors.ErrCodeUnverifiedEdit, task.ID,
			"project has a dependency cycle; edit saved without a schedule check"))
	}

	if err := r.Tasks.SaveTask(ctx, task); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, cperrors.Wrap(cperrors.ErrCodeTaskNotFound, err, "save task %s", task.ID)
		}
		return nil, cperrors.Wrap(cperrors.ErrCodePersistence, err, "save task %s", task.ID)
	}
	if err := r.Cache.Delete(ctx, r.Keyer.PreviewKey(projectID)); err != nil {
		r.Logger.Warn("invalidate preview", "project", projectID, "err", err)
	}
	return res, nil
}

// errDurationMismatch rejects an edit whose dates and duration disagree.
var errDurationMismatch = errors.New("duration does not match start and end date")

// applyEdit keeps end = start + duration on the edited task. An explicit
// end date sets the duration; without a known start, the start is placed
// duration days before the end.
func applyEdit(t *schedule.Task, edit TaskEdit) error {
	if edit.Duration != nil {
		t.Duration = *edit.Duration
	}
	if !edit.StartDate.IsZero() {
		t.StartDate = edit.StartDate
	}

	if edit.EndDate.IsZero() {
		if !t.StartDate.IsZero() && (!edit.StartDate.IsZero() || edit.Duration != nil) {
			t.EndDate = t.StartDate.AddDays(t.Duration)
		}
		return nil
	}

	t.EndDate = edit.EndDate
	if t.StartDate.IsZero() {
		t.StartDate = edit.EndDate.AddDays(-t.Duration)
		return nil
	}
	if t.StartDate.After(t.EndDate) {
		return fmt.Errorf("%w (%s > %s)", schedule.ErrInvertedDates, t.StartDate, t.EndDate)
	}
	days := t.EndDate.DaysSince(t.StartDate)
	if edit.Duration != nil && *edit.Duration != days {
		return fmt.Errorf("%w: %d day(s) from %s to %s, duration %d",
			errDurationMismatch, days, t.StartDate, t.EndDate, *edit.Duration)
	}
	t.Duration = days
	return nil
}
