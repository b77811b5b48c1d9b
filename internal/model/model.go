package model

import "time"

// Algorithm category names. Each names one table in the registry.
const (
	CategoryImageProcessing = "imageProcessing"
	CategoryGraphTheory     = "graphTheory"
	CategoryCryptography    = "cryptography"
	CategoryGameTheory      = "gameTheory"
	CategoryHistograms      = "histograms"
)

// Categories lists every built-in category in a stable order.
var Categories = []string{
	CategoryImageProcessing,
	CategoryGraphTheory,
	CategoryCryptography,
	CategoryGameTheory,
	CategoryHistograms,
}

// Execution outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeCached   = "cached"
	OutcomeFailed   = "failed"
	OutcomeTimedOut = "timeout"
)

// HistoryRecord describes one completed execution attempt.
type HistoryRecord struct {
	ID              string    `json:"id"`
	Algorithm       string    `json:"algorithm"`
	ParamCount      int       `json:"param_count"`
	ExecutionTimeMs float64   `json:"execution_time_ms"`
	Timestamp       time.Time `json:"timestamp"`
	Success         bool      `json:"success"`
	Cached          bool      `json:"cached,omitempty"`
	TimedOut        bool      `json:"timed_out,omitempty"`
	Error           string    `json:"error,omitempty"`
}

// Outcome classifies the record for metrics labels and archive rows.
func (r HistoryRecord) Outcome() string {
	switch {
	case r.Cached:
		return OutcomeCached
	case r.Success:
		return OutcomeSuccess
	case r.TimedOut:
		return OutcomeTimedOut
	default:
		return OutcomeFailed
	}
}

// Execution is an archived history record, as persisted by the store.
type Execution struct {
	ID         string    `json:"id"`
	Algorithm  string    `json:"algorithm"`
	ParamCount int       `json:"param_count"`
	DurationMS float64   `json:"duration_ms"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ExecutionFromRecord converts a history record into an archive row.
func ExecutionFromRecord(r HistoryRecord) Execution {
	return Execution{
		ID:         r.ID,
		Algorithm:  r.Algorithm,
		ParamCount: r.ParamCount,
		DurationMS: r.ExecutionTimeMs,
		Outcome:    r.Outcome(),
		Error:      r.Error,
		CreatedAt:  r.Timestamp,
	}
}

// Setting is a caller-owned key/value pair, e.g. saved form defaults.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
