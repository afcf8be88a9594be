package scoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ScoringFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_fallbacks_total",
			Help: "Count of fallback scores served by model and strategy.",
		},
		[]string{"model_id", "strategy"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scoring_circuit_breaker_state",
			Help: "Circuit breaker state per model (0=closed, 1=open, 2=half_open).",
		},
		[]string{"model_id"},
	)

	ScoringBatchLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scoring_batch_latency_seconds",
			Help:    "Latency of scoring a batch of candidates across all models.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		ScoringFallbacksTotal,
		CircuitBreakerState,
		ScoringBatchLatency,
	)
}
