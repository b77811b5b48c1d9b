// Package engine runs registered algorithms behind a memoising cache, a
// per-call timeout and running metrics. Each Engine owns its cache, metrics
// tracker and history log exclusively; separate engines share nothing.
//
// Algorithms are plain functions with no cancellation hook. When a call times
// out, the engine stops waiting but the algorithm's goroutine runs to
// completion and its result is discarded.
package engine
