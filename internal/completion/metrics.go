package completion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "editor",
		Name:      "completions_total",
		Help:      "Completion requests by outcome (suggested, empty, failed).",
	}, []string{"outcome"})
	metricCompletionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "editor",
		Name:      "completion_duration_seconds",
		Help:      "Time spent waiting on the assistant, throttling included.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})
)
