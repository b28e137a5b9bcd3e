package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricParticipants = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "editor",
		Name:      "relay_participants",
		Help:      "Currently connected realtime participants.",
	})
	metricUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "editor",
		Name:      "relay_updates_total",
		Help:      "Code updates relayed, by origin (local, remote).",
	}, []string{"origin"})
	metricDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "editor",
		Name:      "relay_dropped_participants_total",
		Help:      "Participants disconnected because their send queue was full.",
	})
	metricPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "editor",
		Name:      "relay_publish_failures_total",
		Help:      "Code updates that could not be published to other relay processes.",
	})
)
