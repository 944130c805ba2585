package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/critpath/pkg/buildinfo"
	"github.com/matzehuels/critpath/pkg/dag"
	cperrors "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/pipeline"
	"github.com/matzehuels/critpath/pkg/render/nodelink"
	"github.com/matzehuels/critpath/pkg/schedule"
)

// ValidateRequest is the body of POST /api/v1/schedule/validate.
type ValidateRequest struct {
	ProjectID  string `json:"project_id"`
	AutoAdjust bool   `json:"auto_adjust"`
}

// ScheduleResponse is the body of GET /api/v1/projects/{projectID}/schedule.
type ScheduleResponse struct {
	pipeline.Response
	RunID     string          `json:"run_id"`
	ProjectID string          `json:"project_id"`
	Changed   []string        `json:"changed"`
	Tasks     []schedule.Task `json:"tasks"`
}

// EditRequest is the body of PATCH /api/v1/projects/{projectID}/tasks/{taskID}.
type EditRequest struct {
	StartDate  schedule.Date `json:"start_date"`
	EndDate    schedule.Date `json:"end_date"`
	Duration   *int          `json:"duration,omitempty"`
	Reschedule bool          `json:"reschedule"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ProjectID == "" {
		s.writeError(w, r, cperrors.New(cperrors.ErrCodeInvalidInput, "project_id is required"))
		return
	}

	res, err := s.orchestrate(r.Context(), req.ProjectID, pipeline.ModeFor(req.AutoAdjust))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Run-ID", res.RunID)
	writeJSON(w, http.StatusOK, res.Response())
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	res, err := s.orchestrate(r.Context(), chi.URLParam(r, "projectID"), pipeline.ModePreview)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	changed := res.Changed
	if changed == nil {
		changed = []string{}
	}
	w.Header().Set("X-Run-ID", res.RunID)
	writeJSON(w, http.StatusOK, ScheduleResponse{
		Response:  res.Response(),
		RunID:     res.RunID,
		ProjectID: res.ProjectID,
		Changed:   changed,
		Tasks:     res.Tasks,
	})
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	res, err := s.orchestrate(r.Context(), chi.URLParam(r, "projectID"), pipeline.ModePreview)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, _, err := dag.Build(res.Tasks)
	if err != nil {
		s.writeError(w, r, cperrors.Wrap(cperrors.ErrCodeInvalidInput, err, "build task graph"))
		return
	}

	dot := nodelink.ToDOT(g, res.Analysis, nodelink.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
		Cycles:   res.Cycles,
	})
	svg, err := nodelink.RenderSVG(r.Context(), dot)
	if err != nil {
		s.writeError(w, r, cperrors.Wrap(cperrors.ErrCodeInternal, err, "render network"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Run-ID", res.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

func (s *Server) handleEditTask(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()
	res, err := s.runner.EditTask(ctx, chi.URLParam(r, "projectID"), pipeline.TaskEdit{
		TaskID:     chi.URLParam(r, "taskID"),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Duration:   req.Duration,
		Reschedule: req.Reschedule,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) orchestrate(ctx context.Context, projectID string, mode pipeline.Mode) (*pipeline.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	return s.runner.Orchestrate(ctx, projectID, mode)
}

// decode reads a JSON body, rejecting unknown fields and oversized bodies.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return cperrors.Wrap(cperrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
