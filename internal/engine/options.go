package engine

import (
	"context"
	"time"

	"github.com/seantiz/algolab/internal/model"
)

// Defaults for engine construction and per-call options.
const (
	DefaultCacheTTL     = 30 * time.Minute
	DefaultMaxCacheSize = 100
	DefaultTimeout      = 30 * time.Second
)

// ErrorHandler observes every failed call. err is the exact error returned to
// the caller.
type ErrorHandler func(err error, path string, params []any)

// CompletionHandler observes every successful, non-cached call.
type CompletionHandler func(path string, result any, d time.Duration)

// Recorder receives every history record after it is appended, e.g. to
// archive it. It runs synchronously on the calling goroutine.
type Recorder func(ctx context.Context, rec model.HistoryRecord)

type settings struct {
	cacheEnabled   bool
	cacheTTL       time.Duration
	metricsEnabled bool
	maxCacheSize   int
	historySize    int
	coalesce       bool
	onError        ErrorHandler
	onComplete     CompletionHandler
	recorder       Recorder
	now            func() time.Time
}

func defaultSettings() settings {
	return settings{
		cacheEnabled:   true,
		cacheTTL:       DefaultCacheTTL,
		metricsEnabled: true,
		maxCacheSize:   DefaultMaxCacheSize,
		historySize:    DefaultHistorySize,
		now:            time.Now,
	}
}

// Option configures an Engine.
type Option func(*settings)

// WithCache enables or disables result caching.
func WithCache(enabled bool) Option {
	return func(s *settings) { s.cacheEnabled = enabled }
}

// WithCacheTTL sets how long results stay cached. Non-positive values are ignored.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithMetrics enables or disables the metrics tracker.
func WithMetrics(enabled bool) Option {
	return func(s *settings) { s.metricsEnabled = enabled }
}

// WithMaxCacheSize bounds the number of cached results. Non-positive values
// are ignored.
func WithMaxCacheSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxCacheSize = n
		}
	}
}

// WithHistorySize sets the history ring capacity.
func WithHistorySize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.historySize = n
		}
	}
}

// WithCoalescing makes concurrent calls with the same cache key share a single
// invocation.
func WithCoalescing(enabled bool) Option {
	return func(s *settings) { s.coalesce = enabled }
}

// WithErrorHandler installs a callback for failed calls.
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *settings) { s.onError = h }
}

// WithCompletionHandler installs a callback for successful calls.
func WithCompletionHandler(h CompletionHandler) Option {
	return func(s *settings) { s.onComplete = h }
}

// WithRecorder installs a history record sink.
func WithRecorder(r Recorder) Option {
	return func(s *settings) { s.recorder = r }
}

// WithClock replaces time.Now for timestamps and cache expiry.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

type execSettings struct {
	skipCache     bool
	timeout       time.Duration
	transform     func(any) any
	validateInput bool
}

// ExecOption configures a single Execute call.
type ExecOption func(*execSettings)

// SkipCache bypasses the cache lookup for this call. The result is still stored.
func SkipCache() ExecOption {
	return func(s *execSettings) { s.skipCache = true }
}

// WithTimeout bounds how long Execute waits for the algorithm. Non-positive
// values keep DefaultTimeout.
func WithTimeout(d time.Duration) ExecOption {
	return func(s *execSettings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithTransform post-processes a fresh result before it is cached and returned.
func WithTransform(fn func(any) any) ExecOption {
	return func(s *execSettings) { s.transform = fn }
}

// ValidateInput rejects parameters outside the cacheable shapes (numbers,
// strings, bools, nil, nested slices and string-keyed maps) before invoking.
func ValidateInput() ExecOption {
	return func(s *execSettings) { s.validateInput = true }
}
