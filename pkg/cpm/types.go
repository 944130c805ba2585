package cpm

import (
	cperrors "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/schedule"
)

// Options tunes the analysis.
type Options struct {
	// Epsilon is the float, in days, at or below which a task counts as
	// critical. Zero means strictly zero float.
	Epsilon int
}

// Validate returns an INVALID_INPUT error for a negative epsilon.
func (o Options) Validate() error {
	if o.Epsilon < 0 {
		return cperrors.New(cperrors.ErrCodeInvalidInput, "criticality epsilon must not be negative")
	}
	return nil
}

// Schedule holds the computed dates of one task. ES, EF, LS and LF are day
// offsets from the project start; the Date fields carry the same values as
// calendar days.
type Schedule struct {
	TaskID   string
	Duration int

	ES, EF int
	LS, LF int
	Float  int

	Critical bool
	Wave     int

	EarlyStart, EarlyFinish schedule.Date
	LateStart, LateFinish   schedule.Date
}

// Wave is a group of tasks sharing the same earliest start.
type Wave struct {
	Index      int
	Day        int
	Start      schedule.Date
	TaskIDs    []string
	IsCritical bool
}

// Result is the immutable output of one analysis. Nothing in it aliases the
// task records it was computed from.
type Result struct {
	ProjectStart  schedule.Date
	ProjectFinish schedule.Date
	// Anchor is the end date the backward pass was anchored to.
	Anchor   schedule.Date
	Duration int

	Tasks         map[string]*Schedule
	TopoOrder     []string
	CriticalPaths [][]string
	Waves         []Wave
	Warnings      []cperrors.Warning
}

// Schedule returns the computed schedule of a task, or nil.
func (r *Result) Schedule(id string) *Schedule {
	return r.Tasks[id]
}

// CriticalTasks returns the IDs of critical tasks in topological order.
func (r *Result) CriticalTasks() []string {
	var ids []string
	for _, id := range r.TopoOrder {
		if r.Tasks[id].Critical {
			ids = append(ids, id)
		}
	}
	return ids
}

// Updates returns one batch-write record per scheduled task, in topological
// order.
func (r *Result) Updates() []schedule.TaskUpdate {
	updates := make([]schedule.TaskUpdate, 0, len(r.TopoOrder))
	for _, id := range r.TopoOrder {
		s := r.Tasks[id]
		updates = append(updates, schedule.TaskUpdate{
			ID:         id,
			StartDate:  s.EarlyStart,
			EndDate:    s.EarlyFinish,
			IsCritical: s.Critical,
			FloatDays:  s.Float,
		})
	}
	return updates
}

// Apply returns copies of tasks with the computed dates, criticality and
// float written onto them. Tasks absent from the result are copied
// unchanged. The input slice is not modified.
func (r *Result) Apply(tasks []schedule.Task) []schedule.Task {
	out := schedule.CloneTasks(tasks)
	for i := range out {
		s, ok := r.Tasks[out[i].ID]
		if !ok {
			continue
		}
		out[i].StartDate = s.EarlyStart
		out[i].EndDate = s.EarlyFinish
		out[i].IsCritical = s.Critical
		out[i].FloatDays = s.Float
	}
	return out
}
