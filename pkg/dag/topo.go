package dag

import (
	"fmt"
	"sort"
)

// TopoOrder returns the node IDs in topological order using Kahn's
// algorithm: every predecessor appears before each of its successors.
//
// Ties are broken by input order. Nodes that become ready together are
// queued by their Index, so the same task list always yields the same order.
//
// Returns ErrGraphHasCycle, wrapped with the number of nodes that could be
// ordered, if the graph is cyclic.
func (d *DAG) TopoOrder() ([]string, error) {
	inDegree := make(map[string]int, len(d.nodes))
	var queue []string
	for _, id := range d.order {
		inDegree[id] = len(d.incoming[id])
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(d.nodes))
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		order = append(order, curr)

		var ready []string
		for _, ei := range d.outgoing[curr] {
			next := d.edges[ei].To
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = append(ready, next)
			}
		}
		sort.Slice(ready, func(i, j int) bool {
			return d.nodes[ready[i]].Index < d.nodes[ready[j]].Index
		})
		queue = append(queue, ready...)
	}

	if len(order) != len(d.nodes) {
		return nil, fmt.Errorf("%w: ordered %d of %d tasks", ErrGraphHasCycle, len(order), len(d.nodes))
	}
	return order, nil
}

// Levels groups nodes by their longest-path depth from a source: sources are
// at level 0 and every node sits one level below its deepest predecessor.
// Within a level, nodes keep topological order.
func (d *DAG) Levels() ([][]string, error) {
	order, err := d.TopoOrder()
	if err != nil {
		return nil, err
	}
	depth := make(map[string]int, len(order))
	maxDepth := 0
	for _, id := range order {
		for _, ei := range d.incoming[id] {
			if v := depth[d.edges[ei].From] + 1; v > depth[id] {
				depth[id] = v
			}
		}
		if depth[id] > maxDepth {
			maxDepth = depth[id]
		}
	}
	if len(order) == 0 {
		return nil, nil
	}
	levels := make([][]string, maxDepth+1)
	for _, id := range order {
		levels[depth[id]] = append(levels[depth[id]], id)
	}
	return levels, nil
}
