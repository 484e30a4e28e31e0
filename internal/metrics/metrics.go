// Package metrics exposes Prometheus counters for showcase playback.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// No mount ids in labels.
var (
	IntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_intents_total",
		Help: "Total number of playback intents handled, by kind.",
	}, []string{"kind"})

	MediaCommandFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_media_command_failures_total",
		Help: "Total number of media commands that failed and were ignored, by op.",
	}, []string{"op"})

	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_rate_limited_total",
		Help: "Total number of requests rejected by a rate limiter, by limiter.",
	}, []string{"limiter"})

	ActiveMounts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "showcase_active_mounts",
		Help: "Current number of mounted carousels and hero videos, by kind.",
	}, []string{"kind"})
)

func RecordIntent(kind string) {
	IntentsTotal.WithLabelValues(kind).Inc()
}

func RecordCommandFailure(op string) {
	MediaCommandFailuresTotal.WithLabelValues(op).Inc()
}

func RecordRateLimited(limiter string) {
	RateLimitedTotal.WithLabelValues(limiter).Inc()
}

func MountAdded(kind string) {
	ActiveMounts.WithLabelValues(kind).Inc()
}

func MountRemoved(kind string) {
	ActiveMounts.WithLabelValues(kind).Dec()
}
