package engine

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/seantiz/algolab/internal/model"
)

func TestMetricsRegistered(t *testing.T) {
	// Vec families only appear in Gather once a series exists.
	observeRecord("test.registered", model.HistoryRecord{Success: true, ExecutionTimeMs: 1}, model.OutcomeSuccess)
	observeLookup(true)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	found := make(map[string]bool)
	for _, fam := range families {
		found[fam.GetName()] = true
	}
	for _, name := range []string{
		"algolab_engine_executions_total",
		"algolab_engine_execution_duration_seconds",
		"algolab_engine_cache_lookups_total",
	} {
		if !found[name] {
			t.Errorf("metric %q not registered", name)
		}
	}
}

func TestObserveRecordOutcomes(t *testing.T) {
	before := counterValue(t, "algolab_engine_executions_total", "test.outcomes", model.OutcomeTimedOut)

	rec := model.HistoryRecord{TimedOut: true}
	observeRecord("test.outcomes", rec, rec.Outcome())

	after := counterValue(t, "algolab_engine_executions_total", "test.outcomes", model.OutcomeTimedOut)
	if after-before != 1 {
		t.Errorf("timeout counter moved by %v, want 1", after-before)
	}
}

func counterValue(t *testing.T, name, algorithm, outcome string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			if hasLabels(m, map[string]string{"algorithm": algorithm, "outcome": outcome}) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabels(m *dto.Metric, want map[string]string) bool {
	matched := 0
	for _, lp := range m.GetLabel() {
		if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
