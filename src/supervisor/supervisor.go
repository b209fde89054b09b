// Package supervisor owns the live Graph, serves it to many concurrent
// readers, and periodically rebuilds it under a rate limit.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cratergraph/cratergraph/src/graph"
	"github.com/cratergraph/cratergraph/src/ingest"
)

// DefaultInterval is the minimum time that must elapse between two
// successful refreshes.
const DefaultInterval = 23*time.Hour + 55*time.Minute

// ErrRateLimited is returned when a refresh is requested before
// DefaultInterval (or the configured override) has elapsed since the
// last successful one.
var ErrRateLimited = errors.New("refresh rate-limited")

// Metrics is the small set of Prometheus collectors the supervisor
// publishes. Registered by the caller (typically the "serve" command)
// against its own registry.
type Metrics struct {
	RefreshTotal       prometheus.Counter
	RefreshFailures    prometheus.Counter
	LastRefreshSeconds prometheus.Gauge
	CrateCount         prometheus.Gauge
}

// NewMetrics builds and registers the supervisor's collectors against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RefreshTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cratergraph_refresh_total",
			Help: "Count of successful graph refreshes.",
		}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cratergraph_refresh_failures_total",
			Help: "Count of graph refresh attempts that failed to build.",
		}),
		LastRefreshSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cratergraph_last_refresh_unixtime",
			Help: "Unix timestamp of the last successful graph refresh.",
		}),
		CrateCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cratergraph_graph_crate_count",
			Help: "Number of crate vertices in the currently served graph.",
		}),
	}
	reg.MustRegister(m.RefreshTotal, m.RefreshFailures, m.LastRefreshSeconds, m.CrateCount)
	return m
}

// Progress narrates ingestion progress (see src/ingest.Progress).
type Progress func(format string, args ...any)

// Supervisor owns the current Graph and the timestamp of its last
// successful refresh. The Graph pointer is swapped atomically; the
// timestamp is the only field guarded by a mutex, and that critical
// section is short and non-blocking.
type Supervisor struct {
	dataDir     string
	targetsPath string
	interval    time.Duration
	progress    Progress
	metrics     *Metrics

	current atomic.Pointer[graph.Graph]

	mu          sync.Mutex
	lastRefresh time.Time
}

// New constructs a Supervisor. No Graph is loaded until Bootstrap runs.
func New(dataDir, targetsPath string, interval time.Duration, metrics *Metrics, progress Progress) *Supervisor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if progress == nil {
		progress = func(string, ...any) {}
	}
	return &Supervisor{
		dataDir:     dataDir,
		targetsPath: targetsPath,
		interval:    interval,
		progress:    progress,
		metrics:     metrics,
	}
}

// Graph returns the currently served Graph, or nil if Bootstrap has not
// yet completed. Callers load this once per request; they never observe
// a torn or partially built value.
func (s *Supervisor) Graph() *graph.Graph {
	return s.current.Load()
}

// Bootstrap performs the initial build, bypassing the rate limit (there
// is no prior refresh to rate-limit against). Intended to run once at
// process startup before serving any request.
func (s *Supervisor) Bootstrap(ctx context.Context) error {
	g, err := ingest.Build(ctx, s.dataDir, s.targetsPath, ingest.Progress(s.progress))
	if err != nil {
		if s.metrics != nil {
			s.metrics.RefreshFailures.Inc()
		}
		return fmt.Errorf("bootstrap build: %w", err)
	}
	s.current.Store(g)
	s.mu.Lock()
	s.lastRefresh = g.LastRefresh()
	s.mu.Unlock()
	s.publishMetrics(g)
	return nil
}

// Refresh attempts to rebuild and swap in a new Graph, subject to the
// refresh rate limit. A failed build leaves the previously served
// Graph in place; the caller retains it implicitly because Graph() keeps
// returning the old pointer.
func (s *Supervisor) Refresh(ctx context.Context) error {
	s.mu.Lock()
	now := time.Now()
	if !s.lastRefresh.IsZero() && now.Sub(s.lastRefresh) < s.interval {
		s.mu.Unlock()
		return ErrRateLimited
	}
	prev := s.lastRefresh
	s.lastRefresh = now
	s.mu.Unlock()

	g, err := ingest.Build(ctx, s.dataDir, s.targetsPath, ingest.Progress(s.progress))
	if err != nil {
		// The claimed timestamp only blocked concurrent requests during
		// the build; a failed build does not count as a refresh.
		s.mu.Lock()
		if s.lastRefresh.Equal(now) {
			s.lastRefresh = prev
		}
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.RefreshFailures.Inc()
		}
		return fmt.Errorf("refresh build: %w", err)
	}
	s.current.Store(g)
	s.publishMetrics(g)
	return nil
}

func (s *Supervisor) publishMetrics(g *graph.Graph) {
	if s.metrics == nil {
		return
	}
	s.metrics.RefreshTotal.Inc()
	s.metrics.LastRefreshSeconds.Set(float64(g.LastRefresh().Unix()))
	s.metrics.CrateCount.Set(float64(g.CrateCount()))
}

// WatchDataDir watches the data directory for changes and attempts a
// refresh on every event, still gated by the same rate limit. It runs
// until ctx is cancelled.
func (s *Supervisor) WatchDataDir(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting data directory watcher: %w", err)
	}
	if err := w.Add(s.dataDir); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", s.dataDir, err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-w.Events:
				if !ok {
					return
				}
				if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrRateLimited) {
					fmt.Fprintf(os.Stderr, "watch-triggered refresh failed: %v\n", err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				fmt.Fprintf(os.Stderr, "data directory watcher error: %v\n", err)
			}
		}
	}()
	return nil
}
