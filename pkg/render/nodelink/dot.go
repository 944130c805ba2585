package nodelink

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/critpath/pkg/cpm"
	"github.com/matzehuels/critpath/pkg/dag"
	"github.com/matzehuels/critpath/pkg/schedule"
)

// Colours used for highlighting.
const (
	criticalFill  = "#fde0dc"
	criticalLine  = "#c0392b"
	cycleFill     = "#fff3cd"
	cycleLine     = "#e67e22"
	excludedColor = "#7f8c8d"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds the computed dates and float to node labels.
	Detailed bool

	// TopDown lays the network out top to bottom instead of left to right.
	TopDown bool

	// Cycles are highlighted when the schedule could not be computed.
	Cycles [][]string
}

// ToDOT converts a task graph to Graphviz DOT.
//
// With a result, critical tasks are filled red and binding edges between
// them drawn bold, and tasks sharing an earliest start are placed on the same
// rank. Without one (a blocked project), nodes are ranked by dependency
// depth where possible and the edges of opts.Cycles are highlighted so the
// user can see which dependency to remove.
//
// Edges are labelled with their type and lag unless they are plain FS
// edges without lag.
func ToDOT(g *dag.DAG, r *cpm.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph schedule {\n")
	if opts.TopDown {
		buf.WriteString("  rankdir=TB;\n")
	} else {
		buf.WriteString("  rankdir=LR;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10, color=\"#555555\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	inCycle, cycleEdges := cycleMembers(opts.Cycles)
	for _, n := range g.Nodes() {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, r, opts.Detailed))}
		attrs = append(attrs, nodeStyle(n.ID, r, inCycle)...)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		attrs := edgeStyle(e, r, cycleEdges[[2]string{e.From, e.To}])
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	if ranks := rankGroups(g, r); len(ranks) > 0 {
		buf.WriteString("\n")
		for _, ids := range ranks {
			quoted := make([]string, len(ids))
			for i, id := range ids {
				quoted[i] = fmt.Sprintf("%q", id)
			}
			fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(quoted, "; "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *dag.Node, r *cpm.Result, detailed bool) string {
	title := n.ID
	if n.Task.Name != "" {
		title = n.Task.Name
	}
	if !detailed {
		return title
	}

	lines := []string{title, fmt.Sprintf("%dd", n.Task.Duration)}
	if r != nil {
		if s := r.Schedule(n.ID); s != nil {
			lines = append(lines,
				fmt.Sprintf("%s → %s", s.EarlyStart, s.EarlyFinish),
				fmt.Sprintf("float %d", s.Float))
		}
	}
	return strings.Join(lines, "\n")
}

func nodeStyle(id string, r *cpm.Result, inCycle map[string]bool) []string {
	switch {
	case inCycle[id]:
		return []string{fmt.Sprintf("fillcolor=%q", cycleFill), fmt.Sprintf("color=%q", cycleLine), "penwidth=2"}
	case r == nil:
		return nil
	}
	s := r.Schedule(id)
	switch {
	case s == nil:
		return []string{"style=\"rounded,dashed\"", fmt.Sprintf("fontcolor=%q", excludedColor)}
	case s.Critical:
		return []string{fmt.Sprintf("fillcolor=%q", criticalFill), fmt.Sprintf("color=%q", criticalLine), "penwidth=2"}
	}
	return nil
}

func edgeStyle(e dag.Edge, r *cpm.Result, inCycle bool) []string {
	var attrs []string
	if e.Type != schedule.FinishToStart || e.Lag != 0 {
		attrs = append(attrs, fmt.Sprintf("label=%q", edgeLabel(e)))
	}
	switch {
	case inCycle:
		attrs = append(attrs, fmt.Sprintf("color=%q", cycleLine), "style=dashed", "penwidth=2")
	case r != nil && binding(e, r):
		attrs = append(attrs, fmt.Sprintf("color=%q", criticalLine), "penwidth=2.5")
	}
	return attrs
}

// edgeLabel renders "SS+2", "FS-1" or "FF".
func edgeLabel(e dag.Edge) string {
	switch {
	case e.Lag > 0:
		return fmt.Sprintf("%s+%d", e.Type, e.Lag)
	case e.Lag < 0:
		return fmt.Sprintf("%s%d", e.Type, e.Lag)
	default:
		return string(e.Type)
	}
}

// binding reports whether e joins two critical tasks with zero slack.
func binding(e dag.Edge, r *cpm.Result) bool {
	pred, succ := r.Schedule(e.From), r.Schedule(e.To)
	if pred == nil || succ == nil || !pred.Critical || !succ.Critical {
		return false
	}
	return cpm.Slack(e.Type, pred, succ, e.Lag) == 0
}

func cycleMembers(cycles [][]string) (map[string]bool, map[[2]string]bool) {
	nodes := make(map[string]bool)
	edges := make(map[[2]string]bool)
	for _, c := range cycles {
		for i, id := range c {
			nodes[id] = true
			edges[[2]string{id, c[(i+1)%len(c)]}] = true
		}
	}
	return nodes, edges
}

// rankGroups returns the node groups that share a rank: waves of a computed
// schedule, or dependency levels of an acyclic graph. A cyclic graph without
// a result is left to Graphviz.
// Groups of one task are dropped.
func rankGroups(g *dag.DAG, r *cpm.Result) [][]string {
	var groups [][]string
	if r != nil {
		for _, w := range r.Waves {
			groups = append(groups, w.TaskIDs)
		}
	} else if levels, err := g.Levels(); err == nil {
		groups = levels
	}
	return slices.DeleteFunc(groups, func(ids []string) bool { return len(ids) < 2 })
}
