package cpm

import (
	"sort"

	"github.com/matzehuels/critpath/pkg/dag"
)

// CriticalPaths walks the critical network of a completed result.
//
// A path starts at every critical source task, in input order. At each step
// it follows the first outgoing edge, in edge order, whose successor is
// critical and whose constraint is binding (zero slack). The walk stops at a
// task with no such edge, normally a sink. Parallel critical chains yield
// separate paths; the branch choice only affects which path is reported,
// never the float values.
func CriticalPaths(g *dag.DAG, r *Result) [][]string {
	var paths [][]string
	for _, src := range g.Sources() {
		s := r.Tasks[src.ID]
		if s == nil || !s.Critical {
			continue
		}
		path := []string{src.ID}
		for curr := src.ID; ; {
			next, ok := nextCritical(g, r, curr)
			if !ok {
				break
			}
			path = append(path, next)
			curr = next
		}
		paths = append(paths, path)
	}
	return paths
}

func nextCritical(g *dag.DAG, r *Result, id string) (string, bool) {
	pred := r.Tasks[id]
	for _, e := range g.Successors(id) {
		succ := r.Tasks[e.To]
		if succ.Critical && Slack(e.Type, pred, succ, e.Lag) == 0 {
			return e.To, true
		}
	}
	return "", false
}

// computeWaves groups tasks by earliest start. Within a wave, critical tasks
// come first and ties keep topological order.
func computeWaves(r *Result) []Wave {
	groups := make(map[int][]string)
	for _, id := range r.TopoOrder {
		es := r.Tasks[id].ES
		groups[es] = append(groups[es], id)
	}

	days := make([]int, 0, len(groups))
	for es := range groups {
		days = append(days, es)
	}
	sort.Ints(days)

	waves := make([]Wave, len(days))
	for i, day := range days {
		ids := groups[day]
		sort.SliceStable(ids, func(a, b int) bool {
			return r.Tasks[ids[a]].Critical && !r.Tasks[ids[b]].Critical
		})

		hasCritical := false
		for _, id := range ids {
			r.Tasks[id].Wave = i
			hasCritical = hasCritical || r.Tasks[id].Critical
		}
		waves[i] = Wave{
			Index:      i,
			Day:        day,
			Start:      r.ProjectStart.AddDays(day),
			TaskIDs:    ids,
			IsCritical: hasCritical,
		}
	}
	return waves
}
