package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/seantiz/algolab/internal/model"
)

// unknownLabel replaces paths that did not resolve so label cardinality stays
// bounded by the registry.
const unknownLabel = "unknown"

var (
	executionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algolab_engine_executions_total",
			Help: "Total number of execution attempts by algorithm and outcome.",
		},
		[]string{"algorithm", "outcome"},
	)

	executionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "algolab_engine_execution_duration_seconds",
			Help:    "Duration of successful, non-cached algorithm invocations.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"algorithm"},
	)

	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algolab_engine_cache_lookups_total",
			Help: "Total number of result cache lookups by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(executionsTotal)
	prometheus.MustRegister(executionDuration)
	prometheus.MustRegister(cacheLookupsTotal)
}

func observeRecord(label string, rec model.HistoryRecord, outcome string) {
	executionsTotal.WithLabelValues(label, outcome).Inc()
	if outcome == model.OutcomeSuccess {
		executionDuration.WithLabelValues(label).Observe(rec.ExecutionTimeMs / 1000)
	}
}

func observeLookup(hit bool) {
	if hit {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	cacheLookupsTotal.WithLabelValues("miss").Inc()
}
