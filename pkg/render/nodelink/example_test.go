package nodelink_test

import (
	"fmt"

	"github.com/matzehuels/critpath/pkg/cpm"
	"github.com/matzehuels/critpath/pkg/dag"
	"github.com/matzehuels/critpath/pkg/render/nodelink"
	"github.com/matzehuels/critpath/pkg/schedule"
)

func ExampleToDOT() {
	g, _, _ := dag.Build([]schedule.Task{
		{ID: "excavate", Duration: 5},
		{ID: "pour", Duration: 3, Predecessors: []schedule.Dependency{{PredecessorID: "excavate", Type: schedule.FinishToStart}}},
	})
	r, _ := cpm.Analyze(g, schedule.Project{StartDate: schedule.MustParseDate("2025-01-01")}, cpm.Options{})

	fmt.Print(nodelink.ToDOT(g, r, nodelink.Options{}))
	// Output:
	// digraph schedule {
	//   rankdir=LR;
	//   bgcolor="transparent";
	//   node [shape=box, style="rounded,filled", fillcolor=white, fontname="Helvetica", fontsize=14, margin="0.2,0.1"];
	//   edge [fontname="Helvetica", fontsize=10, color="#555555"];
	//   ranksep=0.6;
	//   nodesep=0.3;
	//
	//   "excavate" [label="excavate", fillcolor="#fde0dc", color="#c0392b", penwidth=2];
	//   "pour" [label="pour", fillcolor="#fde0dc", color="#c0392b", penwidth=2];
	//
	//   "excavate" -> "pour" [color="#c0392b", penwidth=2.5];
	// }
}
