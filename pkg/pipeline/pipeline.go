// Package pipeline orchestrates scheduling runs for a project.
//
// A run reads the project's anchor dates and tasks at its boundary, computes
// in memory and, in apply mode, writes the results back in one atomic batch.
// No step performs I/O in the middle of the computation, so the graph and
// pass algorithms in packages dag and cpm stay pure.
//
// # States
//
// Every run walks a fixed state machine:
//
//	IDLE → CYCLE_CHECK → (BLOCKED | FORWARD_PASS) → BACKWARD_PASS → CRITICAL_PATH → PERSIST → DONE
//
// BLOCKED is terminal: a dependency cycle stops all date computation and no
// task is modified. The user removes one edge of a reported cycle and runs
// again. The states a run visited are recorded in [Result.Trace].
//
// # Modes
//
// [ModePreview] computes the schedule without writing it. Previews are cached
// per project and validated against a hash of the inputs. [ModeApply] writes
// the changed tasks and invalidates the project's preview entry. A failed
// write returns a PERSISTENCE_FAILURE error and is never retried.
//
// # Usage
//
//	runner := pipeline.NewRunner(st, st, pipeline.Options{Locker: lock.NewMemory()})
//	result, err := runner.Orchestrate(ctx, "site-7", pipeline.ModeApply)
//	if err != nil {
//	    return err
//	}
//	if result.Blocked {
//	    fmt.Println("cycle:", result.CyclePath)
//	}
package pipeline

import (
	"slices"
	"strings"

	"github.com/matzehuels/critpath/pkg/cpm"
	cperrors "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/schedule"
)

// Mode selects whether a run writes its results.
type Mode string

const (
	ModePreview Mode = "preview"
	ModeApply   Mode = "apply"
)

// ParseMode returns the mode named by s. An empty string means preview.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModePreview:
		return ModePreview, nil
	case ModeApply:
		return ModeApply, nil
	default:
		return "", cperrors.New(cperrors.ErrCodeInvalidInput, "invalid mode: %q (must be one of: preview, apply)", s)
	}
}

// ModeFor maps the auto_adjust request flag to a mode.
func ModeFor(autoAdjust bool) Mode {
	if autoAdjust {
		return ModeApply
	}
	return ModePreview
}

// State is a step of the run state machine.
type State string

const (
	StateIdle         State = "IDLE"
	StateCycleCheck   State = "CYCLE_CHECK"
	StateBlocked      State = "BLOCKED"
	StateForwardPass  State = "FORWARD_PASS"
	StateBackwardPass State = "BACKWARD_PASS"
	StateCriticalPath State = "CRITICAL_PATH"
	StatePersist      State = "PERSIST"
	StateDone         State = "DONE"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateBlocked || s == StateDone
}

// transitions lists the legal successor states.
var transitions = map[State][]State{
	StateIdle:         {StateCycleCheck},
	StateCycleCheck:   {StateBlocked, StateForwardPass},
	StateForwardPass:  {StateBackwardPass},
	StateBackwardPass: {StateCriticalPath},
	StateCriticalPath: {StatePersist},
	StatePersist:      {StateDone},
}

// CanTransition reports whether the state machine allows from → to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Result is the outcome of one run.
type Result struct {
	RunID     string `json:"run_id"`
	ProjectID string `json:"project_id"`
	Mode      Mode   `json:"mode"`

	// Trace lists the states visited, starting with IDLE.
	Trace []State `json:"trace"`

	// Blocked is set when a dependency cycle stopped the run. CyclePath is
	// the first cycle found; Cycles lists every node-disjoint cycle.
	Blocked   bool       `json:"blocked"`
	CyclePath []string   `json:"cycle_path,omitempty"`
	Cycles    [][]string `json:"cycles,omitempty"`

	// Tasks are the project's tasks with computed dates, criticality and
	// float. For a blocked run they are the stored tasks, unchanged.
	Tasks         []schedule.Task    `json:"tasks"`
	CriticalPaths [][]string         `json:"critical_paths"`
	Warnings      []cperrors.Warning `json:"warnings"`

	// Changed lists the tasks whose stored values differ from the computed
	// ones. TasksAdjusted counts the tasks written; it is zero in preview.
	Changed       []string `json:"changed,omitempty"`
	TasksAdjusted int      `json:"tasks_adjusted"`

	// CacheHit is set when a preview was served from the cache.
	CacheHit bool `json:"cache_hit"`

	Analysis *cpm.Result `json:"-"`
}

// State returns the last state the run reached.
func (r *Result) State() State {
	if len(r.Trace) == 0 {
		return StateIdle
	}
	return r.Trace[len(r.Trace)-1]
}

// Valid reports whether the run produced a schedule.
func (r *Result) Valid() bool {
	return !r.Blocked
}

// CycleError returns a GRAPH_CYCLE error describing the first cycle, or nil
// if the run was not blocked.
func (r *Result) CycleError() error {
	if !r.Blocked {
		return nil
	}
	return cperrors.New(cperrors.ErrCodeGraphCycle, "dependency cycle: %s", formatPath(r.CyclePath))
}

// formatPath renders a cycle as a closed walk, e.g. "A → B → C → A".
func formatPath(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return strings.Join(append(slices.Clone(path), path[0]), " → ")
}
