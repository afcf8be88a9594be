package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of one full pipeline run (extract through persist)
	PipelineRunLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pipeline_run_latency_seconds",
		Help:    "Latency of one pipeline run",
		Buckets: prometheus.DefBuckets,
	})

	// Candidates persisted per program and marketplace
	CandidatesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_candidates_processed_total",
			Help: "Total number of candidates persisted by program and marketplace",
		},
		[]string{"program_id", "marketplace"},
	)
)

func Init() {
	prometheus.MustRegister(
		PipelineRunLatency,
		CandidatesProcessedTotal,
	)
}
