package io

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/critpath/pkg/cpm"
	"github.com/matzehuels/critpath/pkg/dag"
)

// The shipped example projects must stay loadable and keep their documented
// outcome.
func TestExampleProjects(t *testing.T) {
	dir := filepath.Join("..", "..", "examples", "projects")

	t.Run("warehouse", func(t *testing.T) {
		pf, err := ImportJSON(filepath.Join(dir, "warehouse.json"))
		if err != nil {
			t.Fatal(err)
		}
		g, warnings, err := dag.Build(pf.Tasks)
		if err != nil || len(warnings) != 0 {
			t.Fatalf("Build: err=%v warnings=%v", err, warnings)
		}
		res, err := cpm.Analyze(g, pf.Project, cpm.Options{})
		if err != nil {
			t.Fatal(err)
		}
		if got := res.ProjectFinish.String(); got != "2025-04-30" {
			t.Errorf("finish = %s, want 2025-04-30", got)
		}
		want := []string{"mobilize", "excavate", "footings", "steel", "roof", "electrical", "fitout", "inspection"}
		if len(res.CriticalPaths) != 1 || !slices.Equal(res.CriticalPaths[0], want) {
			t.Errorf("critical paths = %v, want [%v]", res.CriticalPaths, want)
		}
		if f := res.Schedule("cladding").Float; f != 2 {
			t.Errorf("cladding float = %d, want 2", f)
		}
	})

	t.Run("cyclic", func(t *testing.T) {
		pf, err := ImportJSON(filepath.Join(dir, "cyclic.json"))
		if err != nil {
			t.Fatal(err)
		}
		g, _, err := dag.Build(pf.Tasks)
		if err != nil {
			t.Fatal(err)
		}
		report := g.DetectCycles()
		if !report.HasCycle || len(report.CyclePath) != 3 {
			t.Errorf("cycle report = %+v", report)
		}
	})
}
