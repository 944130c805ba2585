package dag

import (
	"errors"
	"slices"

	"github.com/matzehuels/critpath/pkg/schedule"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	// All tasks must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] and [Build] when a task
	// with the same ID already exists. Task IDs must be unique per project.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the predecessor
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the successor
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrGraphHasCycle is returned by [DAG.Validate] and [DAG.TopoOrder] when
	// a cycle is detected. No dates may be computed on such a graph.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Node is a task vertex. Index is the task's position in the input list and
// is the tie-breaker wherever a deterministic order is needed.
type Node struct {
	ID    string
	Index int
	Task  schedule.Task
}

// Duration returns the task duration in days.
func (n Node) Duration() int { return n.Task.Duration }

// Edge is a typed, lagged dependency from a predecessor (From) to a
// successor (To). Edges keep the order of the successor's predecessor
// configuration.
type Edge struct {
	From string
	To   string
	Type schedule.DependencyType
	Lag  int
}

// DAG is a task dependency graph stored as id-keyed adjacency maps over an
// edge arena. Rebuilding it from the same task list always yields the same
// node, edge and adjacency order.
//
// The zero value is not usable - use New or Build.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	order    []string         // node IDs in input order
	edges    []Edge           // edge arena
	outgoing map[string][]int // nodeID -> indices of edges leaving it
	incoming map[string][]int // nodeID -> indices of edges entering it
}

// New creates an empty graph.
func New() *DAG {
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]int),
		incoming: make(map[string][]int),
	}
}

// AddNode adds a node. Its Index is assigned from insertion order.
// Returns ErrInvalidNodeID if the ID is empty, or ErrDuplicateNodeID if a
// node with the same ID already exists.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	n.Index = len(d.order)
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node.ID)
	return nil
}

// AddEdge adds a dependency between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if an endpoint is
// missing. Self-loops and parallel edges are accepted; a self-loop is a
// one-task cycle that [DAG.DetectCycles] reports.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Type == "" {
		e.Type = schedule.FinishToStart
	}
	idx := len(d.edges)
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], idx)
	d.incoming[e.To] = append(d.incoming[e.To], idx)
	return nil
}

// Node returns the node with the given ID and true, or nil and false.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Nodes returns all nodes in input order.
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, len(d.order))
	for i, id := range d.order {
		nodes[i] = d.nodes[id]
	}
	return nodes
}

// IDs returns all node IDs in input order.
func (d *DAG) IDs() []string { return slices.Clone(d.order) }

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Successors returns the edges leaving id, in insertion order.
func (d *DAG) Successors(id string) []Edge { return d.collect(d.outgoing[id]) }

// Predecessors returns the edges entering id, in the order of the task's
// predecessor configuration.
func (d *DAG) Predecessors(id string) []Edge { return d.collect(d.incoming[id]) }

func (d *DAG) collect(idx []int) []Edge {
	if len(idx) == 0 {
		return nil
	}
	out := make([]Edge, len(idx))
	for i, ei := range idx {
		out[i] = d.edges[ei]
	}
	return out
}

// OutDegree returns the number of edges leaving the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of edges entering the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Sources returns nodes without predecessors, in input order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, d.nodes[id])
		}
	}
	return sources
}

// Sinks returns nodes without successors, in input order.
func (d *DAG) Sinks() []*Node {
	var sinks []*Node
	for _, id := range d.order {
		if len(d.outgoing[id]) == 0 {
			sinks = append(sinks, d.nodes[id])
		}
	}
	return sinks
}

// Tasks returns copies of the graph's task records in input order.
func (d *DAG) Tasks() []schedule.Task {
	tasks := make([]schedule.Task, len(d.order))
	for i, id := range d.order {
		tasks[i] = d.nodes[id].Task.Clone()
	}
	return tasks
}

// Validate checks graph integrity and returns nil if valid.
// Returns ErrInvalidEdgeEndpoint if an edge references a missing node, or
// ErrGraphHasCycle if the graph is cyclic.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		_, okS := d.nodes[e.From]
		_, okD := d.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
	}
	if d.DetectCycles().HasCycle {
		return ErrGraphHasCycle
	}
	return nil
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
