package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/critpath/pkg/schedule"
)

// Documents store dates as BSON datetimes at UTC midnight; unset dates are
// omitted.

type projectDoc struct {
	ID               string     `bson:"_id"`
	Name             string     `bson:"name,omitempty"`
	StartDate        *time.Time `bson:"start_date,omitempty"`
	TargetCompletion *time.Time `bson:"target_completion,omitempty"`
}

type dependencyDoc struct {
	PredecessorID string `bson:"predecessor_id"`
	Type          string `bson:"type"`
	LagDays       int    `bson:"lag_days"`
}

type taskDoc struct {
	ProjectID     string          `bson:"project_id"`
	TaskID        string          `bson:"task_id"`
	Seq           int             `bson:"seq"`
	Name          string          `bson:"name,omitempty"`
	Duration      int             `bson:"duration"`
	StartDate     *time.Time      `bson:"start_date,omitempty"`
	EndDate       *time.Time      `bson:"end_date,omitempty"`
	BaselineStart *time.Time      `bson:"baseline_start,omitempty"`
	BaselineEnd   *time.Time      `bson:"baseline_end,omitempty"`
	Predecessors  []dependencyDoc `bson:"predecessor_configs"`
	IsCritical    bool            `bson:"is_critical"`
	FloatDays     int             `bson:"float_days"`
}

func timeOf(d schedule.Date) *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time()
	return &t
}

func dateOf(t *time.Time) schedule.Date {
	if t == nil {
		return schedule.Date{}
	}
	return schedule.DateOf(t.UTC())
}

func newProjectDoc(p schedule.Project) projectDoc {
	return projectDoc{
		ID:               p.ID,
		Name:             p.Name,
		StartDate:        timeOf(p.StartDate),
		TargetCompletion: timeOf(p.TargetCompletion),
	}
}

func (d projectDoc) toProject() schedule.Project {
	return schedule.Project{
		ID:               d.ID,
		Name:             d.Name,
		StartDate:        dateOf(d.StartDate),
		TargetCompletion: dateOf(d.TargetCompletion),
	}
}

func newTaskDoc(t schedule.Task, seq int) taskDoc {
	deps := make([]dependencyDoc, len(t.Predecessors))
	for i, p := range t.Predecessors {
		deps[i] = dependencyDoc{PredecessorID: p.PredecessorID, Type: string(p.Type), LagDays: p.LagDays}
	}
	return taskDoc{
		ProjectID:     t.ProjectID,
		TaskID:        t.ID,
		Seq:           seq,
		Name:          t.Name,
		Duration:      t.Duration,
		StartDate:     timeOf(t.StartDate),
		EndDate:       timeOf(t.EndDate),
		BaselineStart: timeOf(t.BaselineStart),
		BaselineEnd:   timeOf(t.BaselineEnd),
		Predecessors:  deps,
		IsCritical:    t.IsCritical,
		FloatDays:     t.FloatDays,
	}
}

func (d taskDoc) toTask() schedule.Task {
	var deps []schedule.Dependency
	for _, p := range d.Predecessors {
		deps = append(deps, schedule.Dependency{
			PredecessorID: p.PredecessorID,
			Type:          schedule.DependencyType(p.Type),
			LagDays:       p.LagDays,
		})
	}
	return schedule.Task{
		ID:            d.TaskID,
		ProjectID:     d.ProjectID,
		Name:          d.Name,
		Duration:      d.Duration,
		StartDate:     dateOf(d.StartDate),
		EndDate:       dateOf(d.EndDate),
		BaselineStart: dateOf(d.BaselineStart),
		BaselineEnd:   dateOf(d.BaselineEnd),
		Predecessors:  deps,
		IsCritical:    d.IsCritical,
		FloatDays:     d.FloatDays,
	}
}

// updateFields is the $set document of a batch update. Unset dates are
// stored as null.
func updateFields(u schedule.TaskUpdate) bson.M {
	return bson.M{
		"start_date":  timeOf(u.StartDate),
		"end_date":    timeOf(u.EndDate),
		"is_critical": u.IsCritical,
		"float_days":  u.FloatDays,
	}
}
