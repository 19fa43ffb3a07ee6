// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_submissions_received_total",
			Help: "Total number of application submissions by outcome",
		},
		[]string{"outcome"},
	)

	DecisionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_decisions_processed_total",
			Help: "Total number of review decisions by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	DiscordRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "gateway_discord_request_duration_seconds",
			Help: "Duration of Discord REST calls in seconds",
		},
		[]string{"operation"},
	)

	DiscordRequestFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_discord_request_failures_total",
			Help: "Total number of failed Discord REST calls",
		},
		[]string{"operation"},
	)

	PendingApplications = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_pending_applications",
			Help: "Number of applications currently awaiting review",
		},
	)
)
