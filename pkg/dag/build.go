package dag

import (
	"fmt"

	cperrors "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/schedule"
)

// Build constructs the dependency graph of one project.
//
// Duplicate task IDs are an input-shape error and fail the build. Every other
// problem is reported as a warning and the offending task is left out of the
// graph so the rest of the project can still be scheduled:
//   - a record that fails [schedule.Task.Validate] (INVALID_TASK)
//   - a predecessor that is unknown, belongs to another project, or was
//     itself excluded (DANGLING_REFERENCE)
//
// Exclusion cascades: a task whose predecessor was excluded is excluded in
// turn, until no dangling reference remains. Input tasks are not modified;
// the graph holds normalized copies.
func Build(tasks []schedule.Task) (*DAG, []cperrors.Warning, error) {
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			continue
		}
		if seen[t.ID] {
			return nil, nil, fmt.Errorf("task %s: %w", t.ID, ErrDuplicateNodeID)
		}
		seen[t.ID] = true
	}

	var warnings []cperrors.Warning
	byID := make(map[string]schedule.Task, len(tasks))
	excluded := make(map[string]bool)
	candidates := make([]schedule.Task, 0, len(tasks))

	for _, raw := range tasks {
		t := raw.Clone()
		t.Normalize()
		if err := t.Validate(); err != nil {
			warnings = append(warnings, cperrors.Warn(cperrors.ErrCodeInvalidTask, t.ID, "%v", err))
			if t.ID != "" {
				excluded[t.ID] = true
			}
			continue
		}
		byID[t.ID] = t
		candidates = append(candidates, t)
	}

	for changed := true; changed; {
		changed = false
		for _, t := range candidates {
			if excluded[t.ID] {
				continue
			}
			if reason := danglingReason(t, byID, excluded); reason != "" {
				warnings = append(warnings, cperrors.Warn(cperrors.ErrCodeDanglingReference, t.ID, "%s; task excluded from scheduling", reason))
				excluded[t.ID] = true
				changed = true
			}
		}
	}

	g := New()
	for _, t := range candidates {
		if excluded[t.ID] {
			continue
		}
		if err := g.AddNode(Node{ID: t.ID, Task: t}); err != nil {
			return nil, nil, fmt.Errorf("task %s: %w", t.ID, err)
		}
	}
	for _, t := range candidates {
		if excluded[t.ID] {
			continue
		}
		for _, dep := range t.Predecessors {
			e := Edge{From: dep.PredecessorID, To: t.ID, Type: dep.Type, Lag: dep.LagDays}
			if err := g.AddEdge(e); err != nil {
				return nil, nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
			}
		}
	}

	return g, warnings, nil
}

func danglingReason(t schedule.Task, byID map[string]schedule.Task, excluded map[string]bool) string {
	for _, dep := range t.Predecessors {
		pred, ok := byID[dep.PredecessorID]
		switch {
		case excluded[dep.PredecessorID]:
			return fmt.Sprintf("predecessor %s was excluded", dep.PredecessorID)
		case !ok:
			return fmt.Sprintf("predecessor %s does not exist", dep.PredecessorID)
		case t.ProjectID != "" && pred.ProjectID != "" && t.ProjectID != pred.ProjectID:
			return fmt.Sprintf("predecessor %s belongs to project %s", dep.PredecessorID, pred.ProjectID)
		}
	}
	return ""
}
