package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cperrors "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/io"
)

const sampleProject = `{
  "project": {"id": "site-7", "start_date": "2025-01-01"},
  "tasks": [
    {"id": "excavate", "duration": 5, "start_date": "2025-01-01"},
    {"id": "pour", "duration": 3, "predecessor_configs": [{"predecessor_id": "excavate", "type": "FS"}]},
    {"id": "survey", "duration": 2}
  ]
}`

const cyclicProject = `{
  "project": {"id": "loop", "start_date": "2025-01-01"},
  "tasks": [
    {"id": "A", "duration": 1, "predecessor_configs": [{"predecessor_id": "B"}]},
    {"id": "B", "duration": 1, "predecessor_configs": [{"predecessor_id": "A"}]}
  ]
}`

// isolate points config and cache lookups at empty temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func writeProject(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "project.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	root := New(os.Stderr, LogInfo).RootCommand()
	want := []string{"apply", "cache", "completion", "inspect", "render", "serve", "validate"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestValidateRequiresSource(t *testing.T) {
	isolate(t)
	err := execute(context.Background(), []string{"validate"})
	if err == nil || !strings.Contains(err.Error(), "--project") {
		t.Errorf("validate without source: err = %v", err)
	}
}

func TestValidateLeavesFileUntouched(t *testing.T) {
	dir := isolate(t)
	path := writeProject(t, dir, sampleProject)

	if err := execute(context.Background(), []string{"validate", "--no-cache", "--json", path}); err != nil {
		t.Fatal(err)
	}
	pf, err := io.ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if !pf.Tasks[1].StartDate.IsZero() {
		t.Errorf("validate wrote pour.start = %s", pf.Tasks[1].StartDate)
	}
}

func TestApplyWritesFile(t *testing.T) {
	dir := isolate(t)
	path := writeProject(t, dir, sampleProject)

	if err := execute(context.Background(), []string{"apply", "--no-cache", "--json", path}); err != nil {
		t.Fatal(err)
	}
	pf, err := io.ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	pour := pf.Tasks[1]
	if pour.StartDate.String() != "2025-01-06" || pour.EndDate.String() != "2025-01-09" || !pour.IsCritical {
		t.Errorf("pour = %+v", pour)
	}
	survey := pf.Tasks[2]
	if survey.IsCritical || survey.FloatDays != 6 {
		t.Errorf("survey = %+v", survey)
	}
}

func TestApplyBlockedByCycle(t *testing.T) {
	dir := isolate(t)
	path := writeProject(t, dir, cyclicProject)
	before, _ := os.ReadFile(path)

	err := execute(context.Background(), []string{"apply", "--no-cache", "--json", path})
	if !cperrors.Is(err, cperrors.ErrCodeGraphCycle) {
		t.Fatalf("err = %v, want GRAPH_CYCLE", err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("blocked apply modified the project file")
	}
}

func TestExitCode(t *testing.T) {
	cycle := cperrors.New(cperrors.ErrCodeGraphCycle, "dependency cycle: A -> B -> A")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"blocked", cycle, ExitBlocked},
		{"wrapped blocked", fmt.Errorf("apply: %w", cycle), ExitBlocked},
		{"interrupted", fmt.Errorf("orchestrate: %w", context.Canceled), ExitInterrupted},
		{"coded failure", cperrors.New(cperrors.ErrCodePersistence, "batch update failed"), ExitError},
		{"plain failure", errors.New("boom"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}

	dir := isolate(t)
	path := writeProject(t, dir, cyclicProject)
	err := execute(context.Background(), []string{"validate", "--no-cache", "--json", path})
	if got := ExitCode(err); got != ExitBlocked {
		t.Errorf("validate on a cyclic project: exit %d (%v), want %d", got, err, ExitBlocked)
	}
}

func TestRenderDOT(t *testing.T) {
	dir := isolate(t)
	path := writeProject(t, dir, sampleProject)
	out := filepath.Join(dir, "network.dot")

	if err := execute(context.Background(), []string{"render", "--no-cache", "-o", out, path}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph schedule") {
		t.Errorf("render output = %q", data)
	}
}

func TestConfigProjectStore(t *testing.T) {
	dir := isolate(t)
	storeDir := filepath.Join(dir, "projects")
	if err := os.MkdirAll(storeDir, 0o700); err != nil {
		t.Fatal(err)
	}
	writeProject(t, storeDir, sampleProject)
	if err := os.Rename(filepath.Join(storeDir, "project.json"), filepath.Join(storeDir, "site-7.json")); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CRITPATH_STORAGE_DIR", storeDir)

	if err := execute(context.Background(), []string{"apply", "--no-cache", "--json", "--project", "site-7"}); err != nil {
		t.Fatal(err)
	}
	pf, err := io.ImportJSON(filepath.Join(storeDir, "site-7.json"))
	if err != nil {
		t.Fatal(err)
	}
	if pf.Tasks[1].StartDate.String() != "2025-01-06" {
		t.Errorf("pour.start = %s", pf.Tasks[1].StartDate)
	}
}

func TestFormatStats(t *testing.T) {
	got := formatStats(3, 1, true)
	for _, want := range []string{"3 tasks", "1 dependencies", iconCached} {
		if !strings.Contains(got, want) {
			t.Errorf("formatStats() = %q, missing %q", got, want)
		}
	}
	if strings.Contains(formatStats(2, 0, false), "dependencies") {
		t.Error("zero dependencies should be omitted")
	}
}
