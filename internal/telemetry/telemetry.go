// Package telemetry defines the Prometheus metrics for the harvester.
// The default registry is populated; wiring an exporter endpoint is
// left to whatever process embeds the pipeline.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	downloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_downloads_total",
			Help: "Artifact download attempts, labeled by outcome (ok, cache_hit, error).",
		},
		[]string{"outcome"},
	)

	downloadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_download_bytes_total",
			Help: "Total artifact bytes fetched over the network.",
		},
	)

	rateLimitDelaySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvester_rate_limit_delay_seconds",
			Help:    "Time spent waiting on the outbound request throttle.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	meetingsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_meetings_ingested_total",
			Help: "Meetings ingested to completion, labeled by driving policy.",
		},
		[]string{"policy"},
	)
)

// Download outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeCacheHit = "cache_hit"
	OutcomeError    = "error"
)

// CountDownload records one download attempt with the given outcome.
func CountDownload(outcome string) {
	downloadsTotal.WithLabelValues(outcome).Inc()
}

// AddDownloadBytes records bytes actually transferred.
func AddDownloadBytes(n int64) {
	if n > 0 {
		downloadBytesTotal.Add(float64(n))
	}
}

// ObserveRateLimitDelay records time spent blocked in the throttle.
func ObserveRateLimitDelay(d time.Duration) {
	rateLimitDelaySeconds.Observe(d.Seconds())
}

// CountMeetingIngested records one completed meeting ingestion.
func CountMeetingIngested(policy string) {
	meetingsIngestedTotal.WithLabelValues(policy).Inc()
}
