package store

import (
	"context"
	"errors"

	"github.com/seantiz/algolab/internal/model"
)

// ErrNotFound is returned when a setting does not exist.
var ErrNotFound = errors.New("not found")

// ExecutionStats holds aggregate statistics over the execution archive.
type ExecutionStats struct {
	Total            int            `json:"total"`
	Failures         int            `json:"failures"`
	CountByOutcome   map[string]int `json:"count_by_outcome"`
	CountByAlgorithm map[string]int `json:"count_by_algorithm"`
	AvgDurationMS    float64        `json:"avg_duration_ms"`
}

// Store defines the persistence operations callers of the engine use: a
// settings key/value table and an archive of execution records.
type Store interface {
	PutSetting(ctx context.Context, key, value string) error
	GetSetting(ctx context.Context, key string) (*model.Setting, error)
	DeleteSetting(ctx context.Context, key string) error
	ListSettings(ctx context.Context) ([]model.Setting, error)
	InsertExecution(ctx context.Context, e model.Execution) error
	ListExecutions(ctx context.Context, limit, offset int) ([]model.Execution, int, error)
	GetExecutionStats(ctx context.Context) (*ExecutionStats, error)
	Close() error
}
