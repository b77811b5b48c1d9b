package engine

import (
	"maps"
	"sync"
	"time"
)

// AlgorithmStats holds the counters for one algorithm path.
type AlgorithmStats struct {
	Executions    int64   `json:"executions"`
	TotalTimeMs   float64 `json:"total_time_ms"`
	AverageTimeMs float64 `json:"average_time_ms"`
	Errors        int64   `json:"errors"`
	CacheHits     int64   `json:"cache_hits"`
	CacheMisses   int64   `json:"cache_misses"`
}

// MetricsView is a point-in-time copy of the tracker's counters.
type MetricsView struct {
	TotalExecutions        int64                     `json:"total_executions"`
	CacheHits              int64                     `json:"cache_hits"`
	CacheMisses            int64                     `json:"cache_misses"`
	CacheHitRatio          float64                   `json:"cache_hit_ratio"`
	AverageExecutionTimeMs float64                   `json:"average_execution_time_ms"`
	TotalErrors            int64                     `json:"total_errors"`
	CacheSize              int                       `json:"cache_size"`
	PerAlgorithm           map[string]AlgorithmStats `json:"per_algorithm"`
}

// Tracker accumulates execution metrics. A disabled tracker ignores every
// record call. It is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	enabled bool
	view    MetricsView
}

// NewTracker creates a tracker.
func NewTracker(enabled bool) *Tracker {
	return &Tracker{
		enabled: enabled,
		view:    MetricsView{PerAlgorithm: make(map[string]AlgorithmStats)},
	}
}

// Enabled reports whether record calls have any effect.
func (t *Tracker) Enabled() bool { return t.enabled }

// RecordHit counts a cache hit globally and for path.
func (t *Tracker) RecordHit(path string) {
	t.update(func(v *MetricsView) {
		v.CacheHits++
		if path != "" {
			s := v.PerAlgorithm[path]
			s.CacheHits++
			v.PerAlgorithm[path] = s
		}
	})
}

// RecordMiss counts a cache miss globally and, when path is non-empty, for path.
func (t *Tracker) RecordMiss(path string) {
	t.update(func(v *MetricsView) {
		v.CacheMisses++
		if path != "" {
			s := v.PerAlgorithm[path]
			s.CacheMisses++
			v.PerAlgorithm[path] = s
		}
	})
}

// RecordExecution counts a successful invocation of path that took d.
func (t *Tracker) RecordExecution(path string, d time.Duration) {
	ms := durationMs(d)
	t.update(func(v *MetricsView) {
		v.TotalExecutions++
		v.AverageExecutionTimeMs += (ms - v.AverageExecutionTimeMs) / float64(v.TotalExecutions)

		s := v.PerAlgorithm[path]
		s.Executions++
		s.TotalTimeMs += ms
		s.AverageTimeMs = s.TotalTimeMs / float64(s.Executions)
		v.PerAlgorithm[path] = s
	})
}

// RecordError counts a failed invocation of path.
func (t *Tracker) RecordError(path string) {
	t.update(func(v *MetricsView) {
		v.TotalErrors++
		s := v.PerAlgorithm[path]
		s.Errors++
		v.PerAlgorithm[path] = s
	})
}

// Snapshot returns a copy of the counters with the hit ratio filled in.
func (t *Tracker) Snapshot() MetricsView {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.view
	out.PerAlgorithm = maps.Clone(t.view.PerAlgorithm)
	if lookups := out.CacheHits + out.CacheMisses; lookups > 0 {
		out.CacheHitRatio = float64(out.CacheHits) / float64(lookups)
	}
	return out
}

// Reset zeroes every counter.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view = MetricsView{PerAlgorithm: make(map[string]AlgorithmStats)}
}

// ResetCacheCounters zeroes the global and per-path hit and miss counters.
func (t *Tracker) ResetCacheCounters() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view.CacheHits, t.view.CacheMisses = 0, 0
	for path, s := range t.view.PerAlgorithm {
		s.CacheHits, s.CacheMisses = 0, 0
		t.view.PerAlgorithm[path] = s
	}
}

func (t *Tracker) update(fn func(*MetricsView)) {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.view)
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
