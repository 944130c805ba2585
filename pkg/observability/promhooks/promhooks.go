// Package promhooks implements the observability hooks with Prometheus
// metrics.
//
// Metrics:
//   - critpath_runs_total{mode,outcome} - scheduling runs by result
//   - critpath_run_duration_seconds{mode} - histogram of run latency
//   - critpath_blocked_cycles_total - cycles reported by blocked runs
//   - critpath_persist_total{result} - batch writes by result
//   - critpath_persist_tasks - histogram of tasks written per batch
//   - critpath_cache_requests_total{type,result} - cache hits and misses
//   - critpath_cache_set_bytes_total{type} - bytes written to the cache
//   - critpath_lock_wait_seconds - histogram of project lock wait time
//   - critpath_lock_contention_total - lock acquisitions that failed
package promhooks

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/critpath/pkg/observability"
)

// Hooks records scheduling, cache and lock events as Prometheus metrics.
type Hooks struct {
	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	cycles       prometheus.Counter
	persists     *prometheus.CounterVec
	persistTasks prometheus.Histogram
	cacheReqs    *prometheus.CounterVec
	cacheBytes   *prometheus.CounterVec
	lockWait     prometheus.Histogram
	contention   prometheus.Counter
}

// New creates the metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer to expose them on promhttp.Handler().
func New(reg prometheus.Registerer) *Hooks {
	f := promauto.With(reg)
	return &Hooks{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "critpath_runs_total",
			Help: "Scheduling runs by mode and outcome",
		}, []string{"mode", "outcome"}),
		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "critpath_run_duration_seconds",
			Help:    "Scheduling run latency",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"mode"}),
		cycles: f.NewCounter(prometheus.CounterOpts{
			Name: "critpath_blocked_cycles_total",
			Help: "Dependency cycles reported by blocked runs",
		}),
		persists: f.NewCounterVec(prometheus.CounterOpts{
			Name: "critpath_persist_total",
			Help: "Batch writes by result",
		}, []string{"result"}),
		persistTasks: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "critpath_persist_tasks",
			Help:    "Tasks written per batch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7), // 1 to 4096
		}),
		cacheReqs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "critpath_cache_requests_total",
			Help: "Cache lookups by key type and result",
		}, []string{"type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "critpath_cache_set_bytes_total",
			Help: "Bytes written to the cache",
		}, []string{"type"}),
		lockWait: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "critpath_lock_wait_seconds",
			Help:    "Time spent waiting for a project lock",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		contention: f.NewCounter(prometheus.CounterOpts{
			Name: "critpath_lock_contention_total",
			Help: "Project lock acquisitions that failed",
		}),
	}
}

// Register installs h as the schedule, cache and lock hooks.
func (h *Hooks) Register() {
	observability.SetScheduleHooks(h)
	observability.SetCacheHooks(h)
	observability.SetLockHooks(h)
}

func (h *Hooks) OnRunStart(context.Context, string, string) {}

func (h *Hooks) OnRunComplete(_ context.Context, _, mode, outcome string, d time.Duration) {
	h.runs.WithLabelValues(mode, outcome).Inc()
	h.runDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (h *Hooks) OnBlocked(_ context.Context, _ string, cycles int) {
	h.cycles.Add(float64(cycles))
}

func (h *Hooks) OnPersist(_ context.Context, _ string, tasks int, _ time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.persists.WithLabelValues(result).Inc()
	h.persistTasks.Observe(float64(tasks))
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheReqs.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheReqs.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *Hooks) OnAcquire(_ context.Context, _ string, wait time.Duration) {
	h.lockWait.Observe(wait.Seconds())
}

func (h *Hooks) OnContention(context.Context, string) {
	h.contention.Inc()
}

var (
	_ observability.ScheduleHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.LockHooks     = (*Hooks)(nil)
)
