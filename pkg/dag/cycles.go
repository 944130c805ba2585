package dag

import "slices"

// CycleReport is the outcome of cycle detection.
//
// HasCycle and CyclePath describe the first cycle found. Cycles lists every
// node-disjoint cycle found in the same pass, so a project with several
// independent loops can be fixed in one round of edits. Overlapping cycles
// (sharing a task with one already reported) are not listed separately;
// they surface on the next check once the reported cycle is broken.
type CycleReport struct {
	HasCycle  bool
	CyclePath []string
	Cycles    [][]string
}

// DetectCycles runs a depth-first search with white/gray/black coloring and
// an explicit recursion stack. On reaching a gray node, the cycle is the
// stack slice from that node to the top, so the full path is returned in
// traversal order rather than a bare boolean.
//
// Roots are visited in input order and successors in edge order, which makes
// the reported paths deterministic. For A→B→C→A with A first in the input,
// the path is [A B C].
//
// Time complexity is O(V + E).
func (d *DAG) DetectCycles() CycleReport {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	stackPos := make(map[string]int)
	var stack []string
	inCycle := make(map[string]bool)
	var report CycleReport

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		stackPos[id] = len(stack)
		stack = append(stack, id)

		for _, ei := range d.outgoing[id] {
			next := d.edges[ei].To
			switch color[next] {
			case white:
				dfs(next)
			case gray:
				path := slices.Clone(stack[stackPos[next]:])
				if disjoint(path, inCycle) {
					for _, n := range path {
						inCycle[n] = true
					}
					report.Cycles = append(report.Cycles, path)
				}
			}
		}

		stack = stack[:len(stack)-1]
		delete(stackPos, id)
		color[id] = black
	}

	for _, id := range d.order {
		if color[id] == white {
			dfs(id)
		}
	}

	if len(report.Cycles) > 0 {
		report.HasCycle = true
		report.CyclePath = report.Cycles[0]
	}
	return report
}

// HasCycle reports whether the graph contains at least one cycle.
func (d *DAG) HasCycle() bool {
	return d.DetectCycles().HasCycle
}

func disjoint(path []string, taken map[string]bool) bool {
	for _, n := range path {
		if taken[n] {
			return false
		}
	}
	return true
}
