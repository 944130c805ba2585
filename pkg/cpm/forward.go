package cpm

import (
	"fmt"

	"github.com/matzehuels/critpath/pkg/dag"
	cperrors "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/schedule"
)

// ForwardPass computes earliest start and finish for every task of an
// acyclic graph, relative to projectStart.
//
// Tasks are visited in topological order. A task with predecessors starts at
// the MAX of the constraints its incoming edges impose; the most restrictive
// edge always wins. A task without predecessors keeps its own start date,
// or starts on projectStart if it has none. EF is always ES + duration.
//
// Any earliest start before projectStart is kept as computed and reported
// as a CONSTRAINT_UNDERFLOW warning.
//
// The returned Result carries ES/EF only; [BackwardPass] completes it. The
// graph and its task records are not modified.
func ForwardPass(g *dag.DAG, projectStart schedule.Date) (*Result, error) {
	if projectStart.IsZero() {
		return nil, cperrors.New(cperrors.ErrCodeInvalidInput, "project start date is required")
	}
	order, err := g.TopoOrder()
	if err != nil {
		return nil, fmt.Errorf("forward pass: %w", err)
	}

	r := &Result{
		ProjectStart: projectStart,
		Tasks:        make(map[string]*Schedule, len(order)),
		TopoOrder:    order,
	}

	finish := 0
	for _, id := range order {
		node, _ := g.Node(id)
		s := &Schedule{TaskID: id, Duration: node.Duration()}

		preds := g.Predecessors(id)
		if len(preds) == 0 {
			if start := node.Task.StartDate; !start.IsZero() {
				s.ES = start.DaysSince(projectStart)
			}
		} else {
			for i, e := range preds {
				p := r.Tasks[e.From]
				es := EarliestStart(e.Type, p.ES, p.EF, e.Lag, s.Duration)
				if i == 0 || es > s.ES {
					s.ES = es
				}
			}
		}
		s.EF = s.ES + s.Duration
		s.EarlyStart = projectStart.AddDays(s.ES)
		s.EarlyFinish = projectStart.AddDays(s.EF)

		if s.ES < 0 {
			r.Warnings = append(r.Warnings, cperrors.Warn(cperrors.ErrCodeConstraintUnderflow, id,
				"earliest start %s is %d day(s) before project start %s", s.EarlyStart, -s.ES, projectStart))
		}
		if s.EF > finish {
			finish = s.EF
		}
		r.Tasks[id] = s
	}

	r.Duration = finish
	r.ProjectFinish = projectStart.AddDays(finish)
	return r, nil
}
