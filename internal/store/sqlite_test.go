package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/seantiz/algolab/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeTestExecution(algorithm, outcome string, durationMS float64, at time.Time) model.Execution {
	e := model.Execution{
		ID:         model.NewID(),
		Algorithm:  algorithm,
		ParamCount: 2,
		DurationMS: durationMS,
		Outcome:    outcome,
		CreatedAt:  at,
	}
	if outcome == model.OutcomeFailed {
		e.Error = "bad input"
	}
	return e
}

func TestPutAndGetSetting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.PutSetting(ctx, "histograms.defaults", `[1,7]`); err != nil {
		t.Fatalf("PutSetting: %v", err)
	}

	got, err := s.GetSetting(ctx, "histograms.defaults")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got.Key != "histograms.defaults" || got.Value != `[1,7]` {
		t.Errorf("setting = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestPutSettingOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return first }
	if err := s.PutSetting(ctx, "theme", "dark"); err != nil {
		t.Fatalf("PutSetting: %v", err)
	}
	s.now = func() time.Time { return first.Add(time.Hour) }
	if err := s.PutSetting(ctx, "theme", "light"); err != nil {
		t.Fatalf("PutSetting: %v", err)
	}

	got, err := s.GetSetting(ctx, "theme")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got.Value != "light" {
		t.Errorf("Value = %q, want %q", got.Value, "light")
	}
	if !got.UpdatedAt.Equal(first.Add(time.Hour)) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, first.Add(time.Hour))
	}

	all, err := s.ListSettings(ctx)
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ListSettings len = %d, want 1", len(all))
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetSetting(context.Background(), "missing")
	if err != ErrNotFound {
		t.Errorf("GetSetting error = %v, want ErrNotFound", err)
	}
}

func TestDeleteSetting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.PutSetting(ctx, "k", "v"); err != nil {
		t.Fatalf("PutSetting: %v", err)
	}
	if err := s.DeleteSetting(ctx, "k"); err != nil {
		t.Fatalf("DeleteSetting: %v", err)
	}
	if _, err := s.GetSetting(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSetting after delete = %v, want ErrNotFound", err)
	}
	if err := s.DeleteSetting(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteSetting = %v, want ErrNotFound", err)
	}
}

func TestListSettingsOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, k := range []string{"c", "a", "b"} {
		if err := s.PutSetting(ctx, k, "v"+k); err != nil {
			t.Fatalf("PutSetting(%s): %v", k, err)
		}
	}

	got, err := s.ListSettings(ctx)
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, st := range got {
		if st.Key != want[i] || st.Value != "v"+want[i] {
			t.Errorf("settings[%d] = %+v", i, st)
		}
	}
}

func TestListSettingsEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.ListSettings(context.Background())
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListSettings = %v, want empty non-nil slice", got)
	}
}

func TestInsertAndListExecutions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i := range 5 {
		e := makeTestExecution("graphs.floydWarshall", model.OutcomeSuccess, float64(i), base.Add(time.Duration(i)*time.Second))
		if err := s.InsertExecution(ctx, e); err != nil {
			t.Fatalf("InsertExecution: %v", err)
		}
	}

	page, total, err := s.ListExecutions(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListExecutions: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 2 {
		t.Fatalf("page len = %d, want 2", len(page))
	}
	if !page[0].CreatedAt.After(page[1].CreatedAt) {
		t.Errorf("executions not newest first: %v then %v", page[0].CreatedAt, page[1].CreatedAt)
	}
	if page[0].DurationMS != 4 {
		t.Errorf("newest DurationMS = %v, want 4", page[0].DurationMS)
	}

	last, _, err := s.ListExecutions(ctx, 2, 4)
	if err != nil {
		t.Fatalf("ListExecutions offset 4: %v", err)
	}
	if len(last) != 1 || last[0].DurationMS != 0 {
		t.Errorf("last page = %+v, want the oldest execution", last)
	}
}

func TestListExecutionsEmpty(t *testing.T) {
	s := newTestStore(t)

	got, total, err := s.ListExecutions(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListExecutions: %v", err)
	}
	if total != 0 || got == nil || len(got) != 0 {
		t.Errorf("ListExecutions = %v, %d; want empty, 0", got, total)
	}
}

func TestInsertExecutionKeepsError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := makeTestExecution("cryptography.modInverse", model.OutcomeFailed, 0.2, time.Now().UTC())
	if err := s.InsertExecution(ctx, e); err != nil {
		t.Fatalf("InsertExecution: %v", err)
	}

	got, _, err := s.ListExecutions(ctx, 1, 0)
	if err != nil {
		t.Fatalf("ListExecutions: %v", err)
	}
	if len(got) != 1 || got[0].Error != "bad input" || got[0].Outcome != model.OutcomeFailed {
		t.Errorf("execution = %+v", got)
	}
}

func TestInsertExecutionDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := makeTestExecution("a.b", model.OutcomeSuccess, 1, time.Now().UTC())
	if err := s.InsertExecution(ctx, e); err != nil {
		t.Fatalf("InsertExecution: %v", err)
	}
	if err := s.InsertExecution(ctx, e); err == nil {
		t.Error("duplicate InsertExecution succeeded, want error")
	}
}

func TestGetExecutionStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rows := []model.Execution{
		makeTestExecution("graphs.bfs", model.OutcomeSuccess, 10, now),
		makeTestExecution("graphs.bfs", model.OutcomeSuccess, 20, now),
		makeTestExecution("graphs.bfs", model.OutcomeCached, 0, now),
		makeTestExecution("histograms.expand", model.OutcomeFailed, 30, now),
		makeTestExecution("histograms.expand", model.OutcomeTimedOut, 40, now),
	}
	for _, e := range rows {
		if err := s.InsertExecution(ctx, e); err != nil {
			t.Fatalf("InsertExecution: %v", err)
		}
	}

	stats, err := s.GetExecutionStats(ctx)
	if err != nil {
		t.Fatalf("GetExecutionStats: %v", err)
	}
	if stats.Total != 5 {
		t.Errorf("Total = %d, want 5", stats.Total)
	}
	if stats.Failures != 2 {
		t.Errorf("Failures = %d, want 2", stats.Failures)
	}
	if stats.CountByOutcome[model.OutcomeSuccess] != 2 || stats.CountByOutcome[model.OutcomeCached] != 1 {
		t.Errorf("CountByOutcome = %v", stats.CountByOutcome)
	}
	if stats.CountByAlgorithm["graphs.bfs"] != 3 || stats.CountByAlgorithm["histograms.expand"] != 2 {
		t.Errorf("CountByAlgorithm = %v", stats.CountByAlgorithm)
	}
	if stats.AvgDurationMS != 25 {
		t.Errorf("AvgDurationMS = %v, want 25", stats.AvgDurationMS)
	}
}

func TestGetExecutionStatsEmpty(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.GetExecutionStats(context.Background())
	if err != nil {
		t.Fatalf("GetExecutionStats: %v", err)
	}
	if stats.Total != 0 || stats.AvgDurationMS != 0 {
		t.Errorf("stats = %+v, want zeroes", stats)
	}
	if stats.CountByOutcome == nil || stats.CountByAlgorithm == nil {
		t.Error("stats maps should be non-nil")
	}
}

func TestMigrationIdempotency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "algolab.db")

	for i := range 2 {
		s, err := NewSQLiteStore(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := s.PutSetting(context.Background(), fmt.Sprintf("k%d", i), "v"); err != nil {
			t.Fatalf("PutSetting %d: %v", i, err)
		}
		s.Close()
	}

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.ListSettings(context.Background())
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("settings after reopen = %d, want 2", len(got))
	}
}
