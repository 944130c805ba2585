package cpm_test

import (
	"fmt"

	"github.com/matzehuels/critpath/pkg/cpm"
	"github.com/matzehuels/critpath/pkg/dag"
	"github.com/matzehuels/critpath/pkg/schedule"
)

func ExampleAnalyze() {
	tasks := []schedule.Task{
		{ID: "excavate", Duration: 5},
		{ID: "pour", Duration: 3, Predecessors: []schedule.Dependency{
			{PredecessorID: "excavate", Type: schedule.FinishToStart},
		}},
		{ID: "survey", Duration: 2, Predecessors: []schedule.Dependency{
			{PredecessorID: "excavate", Type: schedule.StartToStart, LagDays: 2},
		}},
	}
	g, _, err := dag.Build(tasks)
	if err != nil {
		panic(err)
	}

	project := schedule.Project{ID: "site-7", StartDate: schedule.MustParseDate("2025-01-01")}
	result, err := cpm.Analyze(g, project, cpm.Options{})
	if err != nil {
		panic(err)
	}

	for _, id := range result.TopoOrder {
		s := result.Tasks[id]
		fmt.Printf("%-9s %s..%s float=%d critical=%v\n", id, s.EarlyStart, s.EarlyFinish, s.Float, s.Critical)
	}
	fmt.Println("finish:", result.ProjectFinish)
	fmt.Println("critical:", result.CriticalPaths)
	// Output:
	// excavate  2025-01-01..2025-01-06 float=0 critical=true
	// pour      2025-01-06..2025-01-09 float=0 critical=true
	// survey    2025-01-03..2025-01-05 float=4 critical=false
	// finish: 2025-01-09
	// critical: [[excavate pour]]
}

func ExampleEarliestStart() {
	// Predecessor runs days 0..5; successor lasts 2 days.
	for _, typ := range []schedule.DependencyType{
		schedule.FinishToStart, schedule.StartToStart, schedule.FinishToFinish, schedule.StartToFinish,
	} {
		fmt.Println(typ, cpm.EarliestStart(typ, 0, 5, 1, 2))
	}
	// Output:
	// FS 6
	// SS 1
	// FF 4
	// SF -1
}
