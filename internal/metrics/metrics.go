package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "couples",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "couples",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	// Outcome is one of ok, rate_limited or error.
	CompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "couples",
			Name:      "completions_total",
			Help:      "Completion endpoint calls by chat type and outcome",
		},
		[]string{"chat_type", "outcome"},
	)

	ImportedTurnsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "couples",
			Name:      "imported_turns_total",
			Help:      "Turns stored from uploaded history files",
		},
	)
)
