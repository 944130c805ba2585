package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	cperrors "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/pipeline"
	"github.com/matzehuels/critpath/pkg/schedule"
	"github.com/matzehuels/critpath/pkg/store"
)

func dep(pred string) []schedule.Dependency {
	return []schedule.Dependency{{PredecessorID: pred, Type: schedule.FinishToStart}}
}

func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	ctx := context.Background()
	start := schedule.MustParseDate("2025-01-01")

	if err := s.Put(ctx, schedule.Project{ID: "site-7", StartDate: start}, []schedule.Task{
		{ID: "A", Duration: 5, StartDate: start},
		{ID: "B", Duration: 3, Predecessors: dep("A")},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, schedule.Project{ID: "loop", StartDate: start}, []schedule.Task{
		{ID: "A", Duration: 1, Predecessors: dep("C")},
		{ID: "B", Duration: 1, Predecessors: dep("A")},
		{ID: "C", Duration: 1, Predecessors: dep("B")},
	}); err != nil {
		t.Fatal(err)
	}

	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(s, s, pipeline.Options{
		Logger:  logger,
		Backoff: store.Backoff{Attempts: 1, Delay: time.Millisecond},
	})
	srv, err := NewServer(runner, logger, Config{Gatherer: prometheus.NewRegistry()})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, s
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestNewServerRequiresRunner(t *testing.T) {
	if _, err := NewServer(nil, nil, Config{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got HealthResponse
	decodeBody(t, resp, &got)
	if got.Status != "ok" || got.Build.Version == "" {
		t.Errorf("health = %+v", got)
	}
}

func TestMetrics(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestValidate(t *testing.T) {
	ts, s := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/api/v1/schedule/validate", `{"project_id":"site-7"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Run-ID") == "" {
		t.Error("missing X-Run-ID")
	}
	var got pipeline.Response
	decodeBody(t, resp, &got)
	if !got.Valid || got.Blocked || got.TasksAdjusted != 0 {
		t.Errorf("preview = %+v", got)
	}
	if len(got.CriticalPath) != 1 || strings.Join(got.CriticalPath[0], ",") != "A,B" {
		t.Errorf("critical path = %v", got.CriticalPath)
	}

	// Preview leaves storage untouched.
	tasks, _ := s.List(context.Background(), "site-7")
	if !tasks[1].StartDate.IsZero() {
		t.Errorf("preview wrote B.start = %s", tasks[1].StartDate)
	}

	resp = do(t, http.MethodPost, ts.URL+"/api/v1/schedule/validate", `{"project_id":"site-7","auto_adjust":true}`)
	decodeBody(t, resp, &got)
	if got.TasksAdjusted == 0 {
		t.Errorf("apply adjusted nothing: %+v", got)
	}
	tasks, _ = s.List(context.Background(), "site-7")
	if want := schedule.MustParseDate("2025-01-06"); !tasks[1].StartDate.Equal(want) {
		t.Errorf("B.start = %s, want %s", tasks[1].StartDate, want)
	}
}

func TestValidateBlocked(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := do(t, http.MethodPost, ts.URL+"/api/v1/schedule/validate", `{"project_id":"loop","auto_adjust":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got pipeline.Response
	decodeBody(t, resp, &got)
	if got.Valid || !got.Blocked || len(got.CircularDependencies) != 1 {
		t.Errorf("blocked = %+v", got)
	}
}

func TestErrors(t *testing.T) {
	ts, _ := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   cperrors.Code
	}{
		{"malformed body", http.MethodPost, "/api/v1/schedule/validate", `{`, http.StatusBadRequest, cperrors.ErrCodeInvalidInput},
		{"unknown field", http.MethodPost, "/api/v1/schedule/validate", `{"project":"x"}`, http.StatusBadRequest, cperrors.ErrCodeInvalidInput},
		{"missing project id", http.MethodPost, "/api/v1/schedule/validate", `{}`, http.StatusBadRequest, cperrors.ErrCodeInvalidInput},
		{"unknown project", http.MethodPost, "/api/v1/schedule/validate", `{"project_id":"nope"}`, http.StatusNotFound, cperrors.ErrCodeProjectNotFound},
		{"unknown task", http.MethodPatch, "/api/v1/projects/site-7/tasks/Z", `{"duration":2}`, http.StatusNotFound, cperrors.ErrCodeTaskNotFound},
		{"inverted dates", http.MethodPatch, "/api/v1/projects/site-7/tasks/A", `{"start_date":"2025-02-01","end_date":"2025-01-01"}`, http.StatusBadRequest, cperrors.ErrCodeInvalidTask},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, ts.URL+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var got ErrorResponse
			decodeBody(t, resp, &got)
			if got.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Error.Code, tt.code)
			}
			if got.Error.RequestID == "" {
				t.Error("missing request id")
			}
		})
	}
}

func TestSchedule(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/api/v1/projects/site-7/schedule", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got ScheduleResponse
	decodeBody(t, resp, &got)
	if got.ProjectID != "site-7" || len(got.Tasks) != 2 {
		t.Fatalf("schedule = %+v", got)
	}
	if got.Tasks[1].StartDate.String() != "2025-01-06" || !got.Tasks[1].IsCritical {
		t.Errorf("B = %+v", got.Tasks[1])
	}
	if strings.Join(got.Changed, ",") != "A,B" {
		t.Errorf("changed = %v", got.Changed)
	}
}

func TestNetworkSVG(t *testing.T) {
	ts, _ := newTestServer(t)
	for _, project := range []string{"site-7", "loop"} {
		resp := do(t, http.MethodGet, fmt.Sprintf("%s/api/v1/projects/%s/network.svg", ts.URL, project), "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status = %d", project, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
			t.Errorf("%s: content type = %q", project, ct)
		}
		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), "<svg") {
			t.Errorf("%s: body is not svg", project)
		}
	}
}

func TestEditTask(t *testing.T) {
	ts, s := newTestServer(t)

	resp := do(t, http.MethodPatch, ts.URL+"/api/v1/projects/site-7/tasks/A", `{"duration":7,"reschedule":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got pipeline.EditResult
	decodeBody(t, resp, &got)
	if got.Unverified || got.Run == nil {
		t.Fatalf("edit = %+v", got)
	}

	tasks, _ := s.List(context.Background(), "site-7")
	if want := schedule.MustParseDate("2025-01-08"); !tasks[1].StartDate.Equal(want) {
		t.Errorf("B.start = %s, want %s", tasks[1].StartDate, want)
	}

	resp = do(t, http.MethodPatch, ts.URL+"/api/v1/projects/loop/tasks/A", `{"duration":4}`)
	decodeBody(t, resp, &got)
	if !got.Unverified || got.Task.Duration != 4 {
		t.Errorf("cyclic edit = %+v", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{cperrors.New(cperrors.ErrCodeInvalidDate, "x"), http.StatusBadRequest},
		{cperrors.New(cperrors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{cperrors.New(cperrors.ErrCodeLocked, "x"), http.StatusConflict},
		{cperrors.New(cperrors.ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{cperrors.New(cperrors.ErrCodePersistence, "x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
