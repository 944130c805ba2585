package cpm

import (
	"fmt"

	"github.com/matzehuels/critpath/pkg/dag"
	cperrors "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/schedule"
)

// BackwardPass completes a forward-pass result with latest dates, float and
// criticality.
//
// The end anchor is the project finish (max EF), or target if target is set
// and not earlier than that. An earlier target cannot be met by the network:
// the pass anchors to the finish instead and reports TARGET_BEFORE_FINISH.
//
// Tasks are visited in reverse topological order. LF is the MIN of the
// anchor and the backward constraint of every outgoing edge; sinks get the
// anchor. LS = LF - duration and float = LS - ES. A task is critical when
// its float is at most opts.Epsilon.
func BackwardPass(g *dag.DAG, r *Result, target schedule.Date, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if len(r.TopoOrder) != g.NodeCount() {
		return fmt.Errorf("backward pass: result covers %d of %d tasks", len(r.TopoOrder), g.NodeCount())
	}

	anchor := r.Duration
	if !target.IsZero() {
		t := target.DaysSince(r.ProjectStart)
		if t >= anchor {
			anchor = t
		} else {
			r.Warnings = append(r.Warnings, cperrors.Warn(cperrors.ErrCodeTargetBeforeFinish, "",
				"target completion %s is before the earliest project finish %s", target, r.ProjectFinish))
		}
	}
	r.Anchor = r.ProjectStart.AddDays(anchor)

	for i := len(r.TopoOrder) - 1; i >= 0; i-- {
		id := r.TopoOrder[i]
		s := r.Tasks[id]

		s.LF = anchor
		for _, e := range g.Successors(id) {
			succ := r.Tasks[e.To]
			if lf := LatestFinish(e.Type, succ.LS, succ.LF, e.Lag, s.Duration); lf < s.LF {
				s.LF = lf
			}
		}
		s.LS = s.LF - s.Duration
		s.Float = s.LS - s.ES
		s.Critical = s.Float <= opts.Epsilon
		s.LateStart = r.ProjectStart.AddDays(s.LS)
		s.LateFinish = r.ProjectStart.AddDays(s.LF)
	}
	return nil
}
