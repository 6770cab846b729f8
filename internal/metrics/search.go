package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search engine Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by outcome",
		},
		[]string{"outcome"}, // "ranked" / "fallback" / "empty" / "error"
	)

	SearchDegradationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "search_degradations_total",
			Help:      "Search stages that degraded instead of failing",
		},
		[]string{"reason"},
	)

	SearchStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsearch",
			Name:      "search_stage_duration_seconds",
			Help:      "Duration of search pipeline stages in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"stage"}, // "load" / "rank" / "answer"
	)

	SearchCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docsearch",
			Name:      "search_candidates",
			Help:      "Number of candidate documents per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search engine metrics. Must be called once from main.
func RegisterSearchMetrics(reg prometheus.Registerer) {
	if searchMetricsRegistered {
		return
	}
	reg.MustRegister(
		SearchRequestsTotal,
		SearchDegradationsTotal,
		SearchStageDuration,
		SearchCandidates,
	)
	searchMetricsRegistered = true
}
