package swipe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	swipeActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swipe_actions_total",
			Help: "Total number of swipe actions by type and outcome",
		},
		[]string{"action", "outcome"},
	)

	matchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swipe_matches_total",
			Help: "Total number of mutual matches created",
		},
	)

	paywallHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swipe_paywall_hits_total",
			Help: "Total number of paywall hints emitted by type",
		},
		[]string{"type"},
	)

	recommendationBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swipe_recommendation_batch_size",
			Help:    "Number of candidates returned per recommendation request",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		},
	)

	recommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swipe_recommendation_duration_seconds",
			Help:    "Time spent assembling a recommendation list",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func recordSwipe(action, outcome string) {
	swipeActionsTotal.WithLabelValues(action, outcome).Inc()
}

func recordMatch() {
	matchesTotal.Inc()
}

func recordPaywallHit(paywallType string) {
	paywallHitsTotal.WithLabelValues(paywallType).Inc()
}

func observeRecommendations(count int, elapsed time.Duration) {
	recommendationBatchSize.Observe(float64(count))
	recommendationDuration.Observe(elapsed.Seconds())
}
