// Package pkg provides the core libraries for critpath, a critical path
// scheduling engine for construction projects.
//
// # Overview
//
// A project is a set of tasks with durations and typed, lagged dependencies
// (FS, SS, FF, SF). critpath checks the dependency network for cycles, runs
// the forward and backward passes of the Critical Path Method, and writes the
// derived dates, float and critical flags back to storage. The pkg directory
// is organized into these areas:
//
//  1. [schedule] - Domain records: tasks, dependencies, projects, dates
//  2. [dag], [cpm] - Graph construction, cycle detection and the CPM passes
//  3. [pipeline] - Orchestration (load → validate → compute → persist)
//  4. [store], [lock], [cache] - Persistence, per-project locking and result caching
//  5. [api], [render/nodelink], [io] - Surfaces: HTTP, network diagrams, project files
//
// # Architecture
//
// The data flow of one scheduling run:
//
//	TaskRepository / ProjectRepository
//	         ↓
//	    [dag.Build] (task graph, dangling references dropped with warnings)
//	         ↓
//	    [dag.DAG.DetectCycles] (a cycle blocks the run)
//	         ↓
//	    [cpm.Analyze] (forward pass, backward pass, critical paths, waves)
//	         ↓
//	    batch update (apply mode only)
//
// # Quick Start
//
// Compute a schedule without writing it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/critpath/pkg/pipeline"
//	    "github.com/matzehuels/critpath/pkg/store"
//	)
//
//	s := store.NewMemoryStore()
//	_ = s.Put(ctx, project, tasks)
//
//	runner := pipeline.NewRunner(s, s, pipeline.Options{})
//	defer runner.Close()
//
//	res, err := runner.Orchestrate(ctx, project.ID, pipeline.ModePreview)
//	if err != nil {
//	    return err
//	}
//	if res.Blocked {
//	    return res.CycleError()
//	}
//	fmt.Println(res.CriticalPaths)
//
// # Main Packages
//
// [schedule] - Task, Dependency, Project and the calendar-day Date type.
//
// [dag] - Directed graph keyed by task ID. [dag.Build] validates records,
// drops dangling or cross-project references with a warning, and defaults an
// empty dependency type to FS. Cycle detection reports every cycle as a
// closed path.
//
// [cpm] - The scheduling core. [cpm.ForwardPass] takes the maximum constraint
// over incoming edges; [cpm.BackwardPass] takes the minimum. Float is late
// start minus early start and tasks within the configured epsilon are
// critical. [cpm.CriticalPaths] walks zero-slack edges from critical sources.
//
// [pipeline] - The adjustment orchestrator shared by CLI and API. Runs hold a
// per-project lock, consult the result cache, and never retry persistence.
//
// [store] - Repositories: MemoryStore for tests, FileStore for the CLI and
// [store/mongo] for shared deployments.
//
// [lock] - Per-project mutual exclusion, in process or via Redis.
//
// [cache] - Content-addressed result cache: null, file or Redis backed.
//
// [render/nodelink] - Task network diagrams using Graphviz, with critical
// tasks and cycle edges highlighted.
//
// [api] - HTTP handlers for validation, schedules, diagrams and task edits.
//
// [observability] - Hook points for runs and passes; [observability/promhooks]
// exports them as Prometheus metrics.
package pkg
