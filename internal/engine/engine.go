package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/seantiz/algolab/internal/cache"
	"github.com/seantiz/algolab/internal/model"
	"github.com/seantiz/algolab/internal/registry"
)

// Engine resolves algorithm paths, runs them under a timeout and keeps the
// cache, metrics and history for every call. It is safe for concurrent use.
type Engine struct {
	registry *registry.Registry
	cache    *cache.Store
	metrics  *Tracker
	history  *History
	broker   *RecordBroker
	logger   *slog.Logger
	cfg      settings

	// book makes the metrics and history updates of one call visible together.
	book   sync.Mutex
	flight singleflight.Group
	wg     sync.WaitGroup
}

// New creates an engine over reg. A nil logger discards log output.
func New(reg *registry.Registry, logger *slog.Logger, opts ...Option) *Engine {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		registry: reg,
		cache:    cache.New(cfg.maxCacheSize, cache.WithClock(cfg.now)),
		metrics:  NewTracker(cfg.metricsEnabled),
		history:  NewHistory(cfg.historySize),
		broker:   NewRecordBroker(),
		logger:   logger,
		cfg:      cfg,
	}
}

// Registry returns the registry the engine resolves paths against.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Broker returns the engine's record broker for live history subscriptions.
func (e *Engine) Broker() *RecordBroker { return e.broker }

// CacheEnabled reports whether results are memoised.
func (e *Engine) CacheEnabled() bool { return e.cfg.cacheEnabled }

type result struct {
	value any
	err   error
}

// Execute runs the algorithm at path with params.
//
// A cached result for the same path and params is returned without invoking
// the algorithm. Otherwise the algorithm runs on its own goroutine and Execute
// waits for it, the timeout or ctx, whichever comes first. Errors returned by
// the algorithm are passed through unchanged. Lookup failures match
// ErrUnknownAlgorithm and timeouts match ErrExecutionTimeout.
//
// Returned values may be shared with the cache and other callers and must be
// treated as read-only.
func (e *Engine) Execute(ctx context.Context, path string, params []any, opts ...ExecOption) (any, error) {
	xs := execSettings{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&xs)
	}
	start := time.Now()

	if xs.validateInput {
		if err := cache.Serializable(params); err != nil {
			ierr := &InvalidParamsError{Path: path, Err: err}
			e.fail(ctx, path, params, start, ierr, e.registry.Has(path))
			return nil, ierr
		}
	}

	fn, lookupErr := e.registry.Lookup(path)

	var (
		key       string
		cacheable bool
	)
	if e.cfg.cacheEnabled || e.cfg.coalesce {
		key, cacheable = cache.MakeKey(path, params)
	}
	if e.cfg.cacheEnabled && !xs.skipCache {
		if v, ok := e.cache.Get(key); ok {
			e.hit(ctx, path, params)
			return v, nil
		}
		scope := path
		if lookupErr != nil {
			scope = ""
		}
		e.metrics.RecordMiss(scope)
		if e.metrics.Enabled() {
			observeLookup(false)
		}
	}

	if lookupErr != nil {
		e.fail(ctx, path, params, start, lookupErr, false)
		return nil, lookupErr
	}

	v, err := e.invoke(ctx, path, key, cacheable, fn, params, xs.timeout)
	if err != nil {
		e.fail(ctx, path, params, start, err, true)
		return nil, err
	}

	if xs.transform != nil {
		v = xs.transform(v)
	}
	if e.cfg.cacheEnabled && cacheable {
		e.cache.Put(key, v, e.cfg.cacheTTL)
	}

	d := time.Since(start)
	e.book.Lock()
	e.metrics.RecordExecution(path, d)
	rec := e.appendRecord(path, params, d, true, false, nil)
	e.book.Unlock()
	e.publish(ctx, path, rec)

	e.logger.Debug("algorithm executed", "algorithm", path, "duration_ms", rec.ExecutionTimeMs)
	if e.cfg.onComplete != nil {
		e.cfg.onComplete(path, v, d)
	}
	return v, nil
}

// invoke starts fn on its own goroutine and waits for it. With coalescing on,
// concurrent calls sharing a cache key share one invocation.
func (e *Engine) invoke(ctx context.Context, path, key string, cacheable bool, fn registry.Func, params []any, timeout time.Duration) (any, error) {
	var done chan result
	if e.cfg.coalesce && cacheable {
		done = make(chan result, 1)
		shared := e.flight.DoChan(key, func() (any, error) {
			r := <-e.spawn(path, fn, params)
			return r.value, r.err
		})
		e.wg.Go(func() {
			r := <-shared
			done <- result{value: r.Val, err: r.Err}
		})
	} else {
		done = e.spawn(path, fn, params)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.value, r.err
	case <-timer.C:
		return nil, &TimeoutError{Path: path, Timeout: timeout}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// spawn runs fn on a tracked goroutine. The buffered channel lets an
// abandoned invocation finish without blocking.
func (e *Engine) spawn(path string, fn registry.Func, params []any) chan result {
	ch := make(chan result, 1)
	e.wg.Go(func() {
		defer func() {
			if p := recover(); p != nil {
				e.logger.Error("algorithm panicked", "algorithm", path, "panic", p)
				ch <- result{err: &PanicError{Path: path, Value: p}}
			}
		}()
		v, err := fn(params)
		ch <- result{value: v, err: err}
	})
	return ch
}

// Wait blocks until every algorithm goroutine has returned, including those
// abandoned after a timeout.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// hit records a cache hit. Cached results count as zero-cost.
func (e *Engine) hit(ctx context.Context, path string, params []any) {
	e.book.Lock()
	e.metrics.RecordHit(path)
	rec := e.appendRecord(path, params, 0, true, true, nil)
	e.book.Unlock()
	if e.metrics.Enabled() {
		observeLookup(true)
	}
	e.publish(ctx, path, rec)
	e.logger.Debug("cache hit", "algorithm", path)
}

// fail records a failed call. countError is false for calls that never
// resolved to an algorithm.
func (e *Engine) fail(ctx context.Context, path string, params []any, start time.Time, err error, countError bool) {
	d := time.Since(start)
	e.book.Lock()
	if countError {
		e.metrics.RecordError(path)
	}
	rec := e.appendRecord(path, params, d, false, false, err)
	e.book.Unlock()

	label := path
	if !countError {
		label = unknownLabel
	}
	e.publish(ctx, label, rec)

	if rec.TimedOut {
		e.logger.Warn("algorithm timed out", "algorithm", path, "duration_ms", rec.ExecutionTimeMs, "error", err)
	} else {
		e.logger.Info("algorithm failed", "algorithm", path, "duration_ms", rec.ExecutionTimeMs, "error", err)
	}
	if e.cfg.onError != nil {
		e.cfg.onError(err, path, params)
	}
}

// appendRecord must be called with e.book held.
func (e *Engine) appendRecord(path string, params []any, d time.Duration, ok, cached bool, err error) model.HistoryRecord {
	rec := model.HistoryRecord{
		ID:              model.NewID(),
		Algorithm:       path,
		ParamCount:      len(params),
		ExecutionTimeMs: durationMs(d),
		Timestamp:       e.cfg.now().UTC(),
		Success:         ok,
		Cached:          cached,
	}
	if err != nil {
		rec.Error = err.Error()
		rec.TimedOut = errors.Is(err, ErrExecutionTimeout)
	}
	e.history.Append(rec)
	return rec
}

// publish hands rec to the exporters and live subscribers.
func (e *Engine) publish(ctx context.Context, label string, rec model.HistoryRecord) {
	if e.metrics.Enabled() {
		observeRecord(label, rec, rec.Outcome())
	}
	e.broker.Publish(rec)
	if e.cfg.recorder != nil {
		e.cfg.recorder(context.WithoutCancel(ctx), rec)
	}
}

// GetMetrics drops expired cache entries and returns a snapshot of the
// metrics with the current cache size.
func (e *Engine) GetMetrics() MetricsView {
	if e.cfg.cacheEnabled {
		if n := e.cache.DeleteExpired(); n > 0 {
			e.logger.Debug("expired cache entries removed", "count", n)
		}
	}
	e.book.Lock()
	view := e.metrics.Snapshot()
	e.book.Unlock()
	view.CacheSize = e.cache.Len()
	return view
}

// CacheStats returns the cache store's own counters.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// ClearCache drops every cached result and zeroes the hit and miss counters.
func (e *Engine) ClearCache() {
	e.cache.Clear()
	e.metrics.ResetCacheCounters()
	e.logger.Info("cache cleared")
}

// ResetMetrics zeroes every metric. The cache is left intact.
func (e *Engine) ResetMetrics() {
	e.metrics.Reset()
}

// History returns up to the last DefaultHistorySize records, oldest first.
func (e *Engine) History() []model.HistoryRecord {
	e.book.Lock()
	defer e.book.Unlock()
	return e.history.All()
}

// ClearHistory drops every history record.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}

// Close closes the record broker. Execute keeps working afterwards but live
// subscribers are gone.
func (e *Engine) Close() {
	e.broker.Close()
}
