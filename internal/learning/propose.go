// internal/learning/propose.go

package learning

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
)

// Reasons a draft was proposed
const (
	TriggerSampleThreshold  = "sample_threshold"
	TriggerAccuracyDrop     = "accuracy_drop"
	TriggerSatisfactionDrop = "satisfaction_drop"
)

// Triggers lists which conditions fired for st under policy and baseline
func Triggers(st State, policy matching.LearningPolicy, baseline matching.Baseline) []string {
	var fired []string
	if st.Samples == 0 {
		return fired
	}

	if st.Samples >= policy.SampleThreshold {
		fired = append(fired, TriggerSampleThreshold)
	}
	if acc, ok := st.Accuracy(); ok && st.Decisive >= policy.MinDriftSamples {
		if baseline.Accuracy-acc > policy.AccuracyDropDelta {
			fired = append(fired, TriggerAccuracyDrop)
		}
	}
	if sat, ok := st.Satisfaction(); ok && st.SatisfactionCount >= policy.MinDriftSamples {
		if baseline.Satisfaction-sat > policy.SatisfactionDropDelta {
			fired = append(fired, TriggerSatisfactionDrop)
		}
	}
	return fired
}

// Propose derives a draft model from current and the accumulated state. It
// returns a nil model when no trigger fires. The result is a draft and is
// never activated here.
func Propose(current *matching.CompatibilityModel, st State, now time.Time) (*matching.CompatibilityModel, []string, error) {
	if err := current.Validate(); err != nil {
		return nil, nil, err
	}

	fired := Triggers(st, current.Learning, current.Baseline)
	if len(fired) == 0 {
		return nil, nil, nil
	}

	draft := current.Clone()
	draft.Version = uuid.NewString()
	draft.ParentVersion = current.Version
	draft.Status = matching.StatusDraft
	draft.CreatedAt = now.UTC()
	draft.Weights = adjustWeights(current, st)
	draft.MinScore = adjustMinScore(current, st)

	// drift stays measured against the last promoted level
	observed := current.Baseline
	if acc, ok := st.Accuracy(); ok {
		observed.Accuracy = acc
	}
	if sat, ok := st.Satisfaction(); ok {
		observed.Satisfaction = sat
	}
	draft.Observed = &observed

	if err := draft.Validate(); err != nil {
		return nil, fired, err
	}
	return draft, fired, nil
}

func adjustWeights(current *matching.CompatibilityModel, st State) map[matching.Dimension]float64 {
	policy := current.Learning
	sw := current.SignalWeights

	next := make(map[matching.Dimension]float64, len(matching.Dimensions))
	var total float64
	for _, d := range matching.Dimensions {
		sums := st.Dimensions[d]
		w := current.Weights[d]

		var explicit, behavioral, outcome, prior float64
		if st.Rated > 0 {
			explicit = sums.ExplicitError / float64(st.Rated)
		}
		if st.Samples > 0 {
			behavioral = sums.BehavioralError / float64(st.Samples)
		}
		if st.Positive > 0 && st.Negative > 0 {
			posMean := sums.PositiveScore / float64(st.Positive)
			negMean := sums.NegativeScore / float64(st.Negative)
			outcome = (posMean - negMean) / 100
		}
		if p, ok := current.Priors[d]; ok {
			prior = p - w
		}

		adj := sw.Explicit*explicit + sw.Behavioral*behavioral + sw.Outcome*outcome + sw.Prior*prior
		v := math.Max(policy.MinWeight, w+policy.LearningRate*adj)
		next[d] = v
		total += v
	}

	if total <= 0 {
		return current.Clone().Weights
	}
	for d := range next {
		next[d] /= total
	}
	return next
}

func adjustMinScore(current *matching.CompatibilityModel, st State) float64 {
	if st.Samples == 0 {
		return current.MinScore
	}
	negRate := float64(st.Negative) / float64(st.Samples)
	posRate := float64(st.Positive) / float64(st.Samples)
	shifted := current.MinScore + current.Learning.ThresholdStep*(negRate-posRate)
	return math.Max(0, math.Min(100, shifted))
}
