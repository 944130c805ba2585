package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/critpath/pkg/cache"
	"github.com/matzehuels/critpath/pkg/cpm"
	"github.com/matzehuels/critpath/pkg/dag"
	cperrors "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/lock"
	"github.com/matzehuels/critpath/pkg/observability"
	"github.com/matzehuels/critpath/pkg/schedule"
	"github.com/matzehuels/critpath/pkg/store"
)

// Options configures a Runner. Zero fields take the defaults noted.
type Options struct {
	Locker   lock.Locker   // default: lock.NewMemory()
	Cache    cache.Cache   // default: caching disabled
	Keyer    cache.Keyer   // default: cache.DefaultKeyer
	Logger   *log.Logger   // default: discard
	Backoff  store.Backoff // default: store.DefaultBackoff
	CacheTTL time.Duration // default: cache.DefaultTTL
	Schedule cpm.Options
}

// Runner executes scheduling runs against a task and a project repository.
//
// The Runner holds no per-run state. Any number of goroutines may call
// Orchestrate concurrently; runs on the same project are serialised by the
// Locker, runs on different projects proceed in parallel.
type Runner struct {
	Tasks    store.TaskRepository
	Projects store.ProjectRepository
	Locker   lock.Locker
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Backoff  store.Backoff
	CacheTTL time.Duration
	Schedule cpm.Options
}

// NewRunner creates a runner over the given repositories.
func NewRunner(tasks store.TaskRepository, projects store.ProjectRepository, opts Options) *Runner {
	if opts.Locker == nil {
		opts.Locker = lock.NewMemory()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Backoff.Attempts == 0 {
		opts.Backoff = store.DefaultBackoff
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = cache.DefaultTTL
	}
	return &Runner{
		Tasks:    tasks,
		Projects: projects,
		Locker:   opts.Locker,
		Cache:    opts.Cache,
		Keyer:    opts.Keyer,
		Logger:   opts.Logger,
		Backoff:  opts.Backoff,
		CacheTTL: opts.CacheTTL,
		Schedule: opts.Schedule,
	}
}

// Orchestrate runs the state machine for one project.
//
// A dependency cycle is not an error: the returned Result has Blocked set
// and carries the cycles. Errors are reserved for input-shape problems
// (INVALID_INPUT), unknown projects (PROJECT_NOT_FOUND), lock contention
// (LOCKED), read failures after retries (STORAGE_ERROR) and failed writes
// (PERSISTENCE_FAILURE). No partial result is returned with an error.
func (r *Runner) Orchestrate(ctx context.Context, projectID string, mode Mode) (*Result, error) {
	if err := cperrors.ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	if err := r.Schedule.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &Result{
		RunID:     uuid.NewString(),
		ProjectID: projectID,
		Mode:      mode,
		Trace:     []State{StateIdle},
	}
	logger := r.Logger.With("project", projectID, "run", res.RunID, "mode", mode)
	hooks := observability.Schedule()
	hooks.OnRunStart(ctx, projectID, string(mode))

	err = r.run(ctx, res, logger)
	hooks.OnRunComplete(ctx, projectID, string(mode), outcome(res, err), time.Since(start))
	if err != nil {
		logger.Error("run failed", "state", res.State(), "err", err)
		return nil, err
	}

	logger.Info("run finished",
		"state", res.State(),
		"tasks", len(res.Tasks),
		"adjusted", res.TasksAdjusted,
		"warnings", len(res.Warnings),
		"cached", res.CacheHit,
		"duration", time.Since(start).Round(time.Millisecond))
	return res, nil
}

func outcome(res *Result, err error) string {
	switch {
	case err != nil:
		return "error"
	case res.Blocked:
		return "blocked"
	default:
		return "done"
	}
}

func (r *Runner) run(ctx context.Context, res *Result, logger *log.Logger) error {
	lease, err := r.Locker.Acquire(ctx, res.ProjectID)
	if err != nil {
		return cperrors.Wrap(cperrors.ErrCodeLocked, err, "acquire project lock")
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("release project lock", "err", err)
		}
	}()

	project, tasks, err := r.load(ctx, res.ProjectID)
	if err != nil {
		return err
	}
	logger.Debug("loaded project", "tasks", len(tasks), "start", project.StartDate)

	inputHash, err := cache.HashInputs(project, tasks, r.Schedule.Epsilon)
	if err != nil {
		return cperrors.Wrap(cperrors.ErrCodeInternal, err, "hash inputs")
	}
	if res.Mode == ModePreview {
		if r.cachedPreview(ctx, res, inputHash, logger) {
			return nil
		}
	}

	analysis, err := r.compute(ctx, res, project, tasks, logger)
	if err != nil || res.Blocked {
		return err
	}

	res.enter(StatePersist, logger)
	switch res.Mode {
	case ModeApply:
		if err := r.persist(ctx, res, analysis, tasks, logger); err != nil {
			return err
		}
		if err := r.Cache.Delete(ctx, r.Keyer.PreviewKey(res.ProjectID)); err != nil {
			logger.Warn("invalidate preview", "err", err)
		}
	case ModePreview:
		r.storePreview(ctx, res, inputHash, logger)
	}
	res.enter(StateDone, logger)
	return nil
}

// load reads the project and its tasks, retrying transient failures.
func (r *Runner) load(ctx context.Context, projectID string) (*schedule.Project, []schedule.Task, error) {
	var project *schedule.Project
	err := r.Backoff.Retry(ctx, func() error {
		var err error
		project, err = r.Projects.Get(ctx, projectID)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, cperrors.Wrap(cperrors.ErrCodeProjectNotFound, err, "project %s", projectID)
	}
	if err != nil {
		return nil, nil, cperrors.Wrap(cperrors.ErrCodeStorage, err, "load project %s", projectID)
	}
	if project.StartDate.IsZero() {
		return nil, nil, cperrors.New(cperrors.ErrCodeInvalidInput, "project %s has no start date", projectID)
	}

	var tasks []schedule.Task
	err = r.Backoff.Retry(ctx, func() error {
		var err error
		tasks, err = r.Tasks.List(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, nil, cperrors.Wrap(cperrors.ErrCodeStorage, err, "list tasks of %s", projectID)
	}
	return project, tasks, nil
}

// compute runs the cycle check and the passes. It never touches storage.
func (r *Runner) compute(ctx context.Context, res *Result, project *schedule.Project, tasks []schedule.Task, logger *log.Logger) (*cpm.Result, error) {
	res.enter(StateCycleCheck, logger)
	g, warnings, err := dag.Build(tasks)
	if err != nil {
		return nil, cperrors.Wrap(cperrors.ErrCodeInvalidInput, err, "build task graph")
	}
	logger.Debug("built graph", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "excluded", len(tasks)-g.NodeCount())
	res.Warnings = warnings
	for _, w := range warnings {
		logger.Warn(w.String())
	}

	report := g.DetectCycles()
	if report.HasCycle {
		res.enter(StateBlocked, logger)
		res.Blocked = true
		res.CyclePath = report.CyclePath
		res.Cycles = report.Cycles
		res.Tasks = schedule.CloneTasks(tasks)
		observability.Schedule().OnBlocked(ctx, res.ProjectID, len(report.Cycles))
		logger.Warn("dependency cycle, run blocked", "cycles", len(report.Cycles), "path", formatPath(report.CyclePath))
		return nil, nil
	}

	res.enter(StateForwardPass, logger)
	analysis, err := cpm.ForwardPass(g, project.StartDate)
	if err != nil {
		return nil, cperrors.Wrap(cperrors.ErrCodeInternal, err, "forward pass")
	}

	res.enter(StateBackwardPass, logger)
	if err := cpm.BackwardPass(g, analysis, project.TargetCompletion, r.Schedule); err != nil {
		return nil, cperrors.Wrap(cperrors.ErrCodeInternal, err, "backward pass")
	}

	res.enter(StateCriticalPath, logger)
	cpm.Resolve(g, analysis)

	for _, w := range analysis.Warnings {
		logger.Warn(w.String())
	}
	res.Analysis = analysis
	res.CriticalPaths = analysis.CriticalPaths
	res.Warnings = append(res.Warnings, analysis.Warnings...)
	res.Tasks = analysis.Apply(tasks)
	res.Changed = changedIDs(analysis, tasks)
	return analysis, nil
}

// persist writes the changed tasks in one batch. The batch is never retried:
// a failure leaves the stored tasks as they were and fails the run.
func (r *Runner) persist(ctx context.Context, res *Result, analysis *cpm.Result, tasks []schedule.Task, logger *log.Logger) error {
	updates := changedUpdates(analysis, tasks)
	if len(updates) == 0 {
		logger.Debug("schedule unchanged, nothing to write")
		return nil
	}

	start := time.Now()
	err := r.Tasks.BatchUpdate(ctx, res.ProjectID, updates)
	observability.Schedule().OnPersist(ctx, res.ProjectID, len(updates), time.Since(start), err)
	if err != nil {
		return cperrors.Wrap(cperrors.ErrCodePersistence, err, "batch update of %d tasks", len(updates))
	}
	res.TasksAdjusted = len(updates)
	logger.Debug("wrote batch", "tasks", len(updates), "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// changedUpdates returns the updates that would modify a stored task, in
// topological order.
func changedUpdates(analysis *cpm.Result, tasks []schedule.Task) []schedule.TaskUpdate {
	byID := make(map[string]schedule.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	var out []schedule.TaskUpdate
	for _, u := range analysis.Updates() {
		if u.Changes(byID[u.ID]) {
			out = append(out, u)
		}
	}
	return out
}

func changedIDs(analysis *cpm.Result, tasks []schedule.Task) []string {
	updates := changedUpdates(analysis, tasks)
	ids := make([]string, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
	}
	return ids
}

// previewEntry is the cached form of a preview run.
type previewEntry struct {
	InputHash string      `json:"input_hash"`
	Result    *Result     `json:"result"`
	Analysis  *cpm.Result `json:"analysis"`
}

// cachedPreview fills res from a cache entry computed from the same inputs.
// Cache failures are logged and treated as misses.
func (r *Runner) cachedPreview(ctx context.Context, res *Result, inputHash string, logger *log.Logger) bool {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, r.Keyer.PreviewKey(res.ProjectID))
	if err != nil {
		logger.Warn("read preview cache", "err", err)
	}
	if !hit {
		hooks.OnCacheMiss(ctx, "preview")
		return false
	}

	var entry previewEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Result == nil || entry.InputHash != inputHash {
		hooks.OnCacheMiss(ctx, "preview")
		return false
	}
	hooks.OnCacheHit(ctx, "preview")

	runID := res.RunID
	*res = *entry.Result
	res.RunID = runID
	res.Analysis = entry.Analysis
	res.CacheHit = true
	logger.Debug("preview served from cache")
	return true
}

func (r *Runner) storePreview(ctx context.Context, res *Result, inputHash string, logger *log.Logger) {
	snapshot := *res
	snapshot.Trace = append(append([]State(nil), res.Trace...), StateDone)
	data, err := json.Marshal(previewEntry{InputHash: inputHash, Result: &snapshot, Analysis: res.Analysis})
	if err != nil {
		logger.Warn("encode preview", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, r.Keyer.PreviewKey(res.ProjectID), data, r.CacheTTL); err != nil {
		logger.Warn("write preview cache", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "preview", len(data))
}

// enter records a state transition.
func (res *Result) enter(s State, logger *log.Logger) {
	if from := res.State(); !CanTransition(from, s) {
		logger.Error("illegal state transition", "from", from, "to", s)
	}
	res.Trace = append(res.Trace, s)
	logger.Debug("state", "state", s)
}

// Close releases the cache held by the runner.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
