package io

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	cperrors "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/schedule"
)

const sample = `{
  "project": {"id": "site-7", "start_date": "2025-01-01", "target_completion": null},
  "tasks": [
    {"id": "excavate", "duration": 5, "start_date": "2025-01-01", "end_date": null},
    {"id": "pour", "duration": 3, "predecessor_configs": [
      {"predecessor_id": "excavate", "type": "SS", "lag_days": -2}
    ]},
    {"id": "other", "project_id": "site-8", "duration": 1}
  ]
}`

func TestReadJSON(t *testing.T) {
	pf, err := ReadJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}

	if pf.Project.ID != "site-7" || pf.Project.StartDate.String() != "2025-01-01" {
		t.Errorf("project = %+v", pf.Project)
	}
	if !pf.Project.TargetCompletion.IsZero() {
		t.Errorf("target completion = %s, want unset", pf.Project.TargetCompletion)
	}
	if len(pf.Tasks) != 3 {
		t.Fatalf("len(Tasks) = %d, want 3", len(pf.Tasks))
	}

	pour := pf.Tasks[1]
	want := []schedule.Dependency{{PredecessorID: "excavate", Type: schedule.StartToStart, LagDays: -2}}
	if !reflect.DeepEqual(pour.Predecessors, want) {
		t.Errorf("pour predecessors = %+v, want %+v", pour.Predecessors, want)
	}
	if pour.ProjectID != "site-7" {
		t.Errorf("pour project = %q, want site-7", pour.ProjectID)
	}
	if pf.Tasks[2].ProjectID != "site-8" {
		t.Errorf("explicit project_id overwritten: %q", pf.Tasks[2].ProjectID)
	}
}

func TestReadJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"project": `},
		{"bad date", `{"project": {"id": "p", "start_date": "01/02/2025"}, "tasks": []}`},
		{"missing project id", `{"project": {"start_date": "2025-01-01"}, "tasks": []}`},
		{"unsafe project id", `{"project": {"id": "../etc"}, "tasks": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if code := cperrors.GetCode(err); code != cperrors.ErrCodeInvalidInput {
				t.Errorf("code = %q, want INVALID_INPUT (%v)", code, err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	pf, err := ReadJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(pf, &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	again, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("re-read error: %v", err)
	}
	if !reflect.DeepEqual(pf, again) {
		t.Errorf("round trip changed the file:\n%+v\n%+v", pf, again)
	}
}

func TestExportImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.json")
	pf := &ProjectFile{
		Project: schedule.Project{ID: "site", StartDate: schedule.MustParseDate("2025-02-01")},
		Tasks:   []schedule.Task{{ID: "a", ProjectID: "site", Duration: 2}},
	}

	if err := ExportJSON(pf, path); err != nil {
		t.Fatalf("ExportJSON() error: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	if !reflect.DeepEqual(pf, got) {
		t.Errorf("ImportJSON() = %+v, want %+v", got, pf)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestImportJSON_Missing(t *testing.T) {
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ImportJSON() error = %v, want not-exist", err)
	}
}
