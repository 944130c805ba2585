package dag_test

import (
	"fmt"

	"github.com/matzehuels/critpath/pkg/dag"
	"github.com/matzehuels/critpath/pkg/schedule"
)

func fs(pred string) schedule.Dependency {
	return schedule.Dependency{PredecessorID: pred, Type: schedule.FinishToStart}
}

func ExampleBuild() {
	// Foundation, then framing and plumbing in parallel, then drywall.
	tasks := []schedule.Task{
		{ID: "foundation", Duration: 5},
		{ID: "framing", Duration: 8, Predecessors: []schedule.Dependency{fs("foundation")}},
		{ID: "plumbing", Duration: 3, Predecessors: []schedule.Dependency{fs("foundation")}},
		{ID: "drywall", Duration: 4, Predecessors: []schedule.Dependency{fs("framing"), fs("plumbing")}},
	}
	g, warnings, err := dag.Build(tasks)
	if err != nil {
		panic(err)
	}

	fmt.Println("Tasks:", g.NodeCount())
	fmt.Println("Dependencies:", g.EdgeCount())
	fmt.Println("Warnings:", len(warnings))
	fmt.Println("Sources:", dag.NodeIDs(g.Sources()))
	// Output:
	// Tasks: 4
	// Dependencies: 4
	// Warnings: 0
	// Sources: [foundation]
}

func ExampleBuild_dangling() {
	tasks := []schedule.Task{
		{ID: "roof", Duration: 3, Predecessors: []schedule.Dependency{fs("walls")}},
		{ID: "paint", Duration: 2},
	}
	g, warnings, _ := dag.Build(tasks)

	fmt.Println("Scheduled:", g.IDs())
	for _, w := range warnings {
		fmt.Println(w)
	}
	// Output:
	// Scheduled: [paint]
	// DANGLING_REFERENCE: task roof: predecessor walls does not exist; task excluded from scheduling
}

func ExampleDAG_DetectCycles() {
	tasks := []schedule.Task{
		{ID: "A", Duration: 1, Predecessors: []schedule.Dependency{fs("C")}},
		{ID: "B", Duration: 1, Predecessors: []schedule.Dependency{fs("A")}},
		{ID: "C", Duration: 1, Predecessors: []schedule.Dependency{fs("B")}},
	}
	g, _, _ := dag.Build(tasks)

	report := g.DetectCycles()
	fmt.Println("Has cycle:", report.HasCycle)
	fmt.Println("Path:", report.CyclePath)
	// Output:
	// Has cycle: true
	// Path: [A B C]
}

func ExampleDAG_TopoOrder() {
	tasks := []schedule.Task{
		{ID: "finish", Duration: 1, Predecessors: []schedule.Dependency{fs("b"), fs("a")}},
		{ID: "b", Duration: 1},
		{ID: "a", Duration: 1},
	}
	g, _, _ := dag.Build(tasks)

	order, _ := g.TopoOrder()
	fmt.Println(order)
	// Output:
	// [b a finish]
}
