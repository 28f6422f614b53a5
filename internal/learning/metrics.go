package learning

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedbackIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kinship_feedback_ingested_total",
			Help: "Total number of feedback records folded into the learning state",
		},
	)

	feedbackSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kinship_feedback_skipped_total",
			Help: "Total number of invalid feedback records skipped",
		},
	)

	draftsProposed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinship_model_drafts_proposed_total",
			Help: "Total number of draft models proposed, by trigger",
		},
		[]string{"trigger"},
	)

	modelActivations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kinship_model_activations_total",
			Help: "Total number of draft models promoted to active",
		},
	)

	learningSamples = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kinship_learning_samples",
			Help: "Feedback samples accumulated since the last proposal",
		},
	)

	learningAccuracy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kinship_learning_accuracy",
			Help: "Prediction accuracy over accumulated decisive feedback",
		},
	)

	learningSatisfaction = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kinship_learning_satisfaction",
			Help: "Mean satisfaction over accumulated feedback, 0 to 1",
		},
	)
)

func recordIngest(report IngestReport, st State) {
	feedbackIngested.Add(float64(report.Accepted))
	feedbackSkipped.Add(float64(report.Skipped))
	recordState(st)
}

func recordState(st State) {
	learningSamples.Set(float64(st.Samples))
	acc, _ := st.Accuracy()
	learningAccuracy.Set(acc)
	sat, _ := st.Satisfaction()
	learningSatisfaction.Set(sat)
}

func recordDraft(triggers []string) {
	for _, t := range triggers {
		draftsProposed.WithLabelValues(t).Inc()
	}
}
