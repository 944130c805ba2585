// Package dag provides the task dependency graph the scheduling engine runs on.
//
// # Overview
//
// A project's tasks form a directed graph: each edge runs from a predecessor
// to a successor and carries a dependency type (FS, SS, FF, SF) and a signed
// lag in days. Date computation is only defined on an acyclic graph, so this
// package also owns cycle detection and topological ordering.
//
// # Representation
//
// The graph is stored as id-keyed adjacency maps over an edge arena rather
// than as tasks holding pointers to each other. Nodes remember their input
// position, edges keep the order of the predecessor configuration, and every
// traversal breaks ties by that order. Rebuilding a graph from the same task
// list therefore always yields the same structure, which is what makes
// repeated scheduling runs comparable.
//
// # Building
//
// [Build] validates task records and resolves predecessor references:
//
//	g, warnings, err := dag.Build(tasks)
//	if err != nil {
//	    return err // duplicate task IDs
//	}
//	for _, w := range warnings {
//	    log.Warn(w.String()) // excluded tasks
//	}
//
// # Cycles
//
// [DAG.DetectCycles] returns the full path of every node-disjoint cycle found
// in a single depth-first pass. A caller must refuse to compute dates for a
// project whose report has HasCycle set.
//
// # Ordering
//
// [DAG.TopoOrder] returns Kahn's order with input-order tie-breaking.
// [DAG.Levels] groups tasks by longest-path depth for display.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. A graph is built per
// scheduling run and discarded afterwards, so independent projects never
// share one.
package dag
