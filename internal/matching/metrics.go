package matching

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kinship_compatibility_scores",
			Help:    "Distribution of final compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	matchTiers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinship_match_tiers_total",
			Help: "Total number of scored pairings by tier",
		},
		[]string{"tier"},
	)

	referenceFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinship_reference_fallbacks_total",
			Help: "Total number of scorings that fell back to a default region or style",
		},
		[]string{"kind"},
	)

	recommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinship_recommendations_served_total",
			Help: "Total number of recommendations returned",
		},
		[]string{"kind"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kinship_engine_operation_seconds",
			Help:    "Duration of engine operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// RecordMatch observes one scored pairing
func RecordMatch(r *MatchResult) {
	compatibilityScores.Observe(r.Score)
	matchTiers.WithLabelValues(r.Tier).Inc()
	for _, kind := range r.Fallbacks {
		referenceFallbacks.WithLabelValues(kind).Inc()
	}
}

// RecordRecommendations counts returned recommendations of one kind (peer or activity)
func RecordRecommendations(kind string, n int) {
	recommendationsServed.WithLabelValues(kind).Add(float64(n))
}

// RecordDuration observes how long an engine operation took
func RecordDuration(operation string, d time.Duration) {
	operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}
