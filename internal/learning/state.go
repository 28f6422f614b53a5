package learning

import (
	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
)

// DimensionSums accumulates the per-dimension signals for one weight.
// Error sums are weighted by the normalized sub-score the member was shown.
type DimensionSums struct {
	ExplicitError   float64 `json:"explicit_error"`
	BehavioralError float64 `json:"behavioral_error"`
	PositiveScore   float64 `json:"positive_score"`
	NegativeScore   float64 `json:"negative_score"`
}

func (d DimensionSums) add(o DimensionSums) DimensionSums {
	return DimensionSums{
		ExplicitError:   d.ExplicitError + o.ExplicitError,
		BehavioralError: d.BehavioralError + o.BehavioralError,
		PositiveScore:   d.PositiveScore + o.PositiveScore,
		NegativeScore:   d.NegativeScore + o.NegativeScore,
	}
}

// State is the learning loop's accumulated evidence. Every field is a sum or
// a count, so states from any partition of the feedback merge to the same result.
type State struct {
	Samples           int64                                `json:"samples"`
	Rated             int64                                `json:"rated"`
	Decisive          int64                                `json:"decisive"`
	Correct           int64                                `json:"correct"`
	SatisfactionSum   float64                              `json:"satisfaction_sum"`
	SatisfactionCount int64                                `json:"satisfaction_count"`
	Positive          int64                                `json:"positive"`
	Neutral           int64                                `json:"neutral"`
	Negative          int64                                `json:"negative"`
	Dimensions        map[matching.Dimension]DimensionSums `json:"dimensions"`
}

// Merge returns the sum of s and o. Neither input is modified.
func (s State) Merge(o State) State {
	out := State{
		Samples:           s.Samples + o.Samples,
		Rated:             s.Rated + o.Rated,
		Decisive:          s.Decisive + o.Decisive,
		Correct:           s.Correct + o.Correct,
		SatisfactionSum:   s.SatisfactionSum + o.SatisfactionSum,
		SatisfactionCount: s.SatisfactionCount + o.SatisfactionCount,
		Positive:          s.Positive + o.Positive,
		Neutral:           s.Neutral + o.Neutral,
		Negative:          s.Negative + o.Negative,
	}
	if len(s.Dimensions) > 0 || len(o.Dimensions) > 0 {
		out.Dimensions = make(map[matching.Dimension]DimensionSums, len(matching.Dimensions))
		for d, v := range s.Dimensions {
			out.Dimensions[d] = out.Dimensions[d].add(v)
		}
		for d, v := range o.Dimensions {
			out.Dimensions[d] = out.Dimensions[d].add(v)
		}
	}
	return out
}

// Accuracy is the share of decisive outcomes the shown score predicted correctly.
// ok is false until at least one decisive outcome arrives.
func (s State) Accuracy() (acc float64, ok bool) {
	if s.Decisive == 0 {
		return 0, false
	}
	return float64(s.Correct) / float64(s.Decisive), true
}

// Satisfaction is the mean satisfaction on a 0..1 scale
func (s State) Satisfaction() (sat float64, ok bool) {
	if s.SatisfactionCount == 0 {
		return 0, false
	}
	return s.SatisfactionSum / float64(s.SatisfactionCount), true
}

// observe converts one validated record into a single-sample state
func observe(r *FeedbackRecord) State {
	t := r.Outcome.Target()
	p := r.PredictedScore / 100
	behavioral := t - p

	st := State{
		Samples:           1,
		SatisfactionCount: 1,
		SatisfactionSum:   t,
		Dimensions:        make(map[matching.Dimension]DimensionSums, len(matching.Dimensions)),
	}

	var explicit float64
	if r.Rating != nil {
		sat := (*r.Rating - 1) / 4
		explicit = sat - p
		st.Rated = 1
		st.SatisfactionSum = sat
	}

	switch r.Outcome {
	case OutcomePositive:
		st.Positive = 1
	case OutcomeNegative:
		st.Negative = 1
	default:
		st.Neutral = 1
	}

	if r.Outcome.Decisive() {
		st.Decisive = 1
		if (p >= 0.5) == (r.Outcome == OutcomePositive) {
			st.Correct = 1
		}
	}

	for _, d := range matching.Dimensions {
		score := r.SubScores[d]
		norm := score / 100
		sums := DimensionSums{BehavioralError: behavioral * norm}
		if r.Rating != nil {
			sums.ExplicitError = explicit * norm
		}
		switch r.Outcome {
		case OutcomePositive:
			sums.PositiveScore = score
		case OutcomeNegative:
			sums.NegativeScore = score
		}
		st.Dimensions[d] = sums
	}

	return st
}
