// Package cpm implements the Critical Path Method over a task graph.
//
// An analysis is a pure computation: [ForwardPass] derives earliest dates in
// topological order, [BackwardPass] derives latest dates, float and
// criticality in reverse order, and [CriticalPaths] reports the zero-slack
// chains. [Analyze] runs all three. Nothing here reads or writes storage;
// the [Result] is applied to task records only by the caller.
//
// Dates are handled as integer day offsets from the project start and
// converted back to calendar days in the result. A graph must be checked
// for cycles before analysis; a cyclic graph is rejected with
// [dag.ErrGraphHasCycle].
package cpm

import (
	"github.com/matzehuels/critpath/pkg/dag"
	"github.com/matzehuels/critpath/pkg/schedule"
)

// Analyze runs the forward pass, the backward pass and the critical path
// resolver on g for the given project.
func Analyze(g *dag.DAG, project schedule.Project, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r, err := ForwardPass(g, project.StartDate)
	if err != nil {
		return nil, err
	}
	if err := BackwardPass(g, r, project.TargetCompletion, opts); err != nil {
		return nil, err
	}
	Resolve(g, r)
	return r, nil
}

// Resolve fills the critical paths and waves of a result whose forward and
// backward passes have run.
func Resolve(g *dag.DAG, r *Result) {
	r.CriticalPaths = CriticalPaths(g, r)
	r.Waves = computeWaves(r)
}
