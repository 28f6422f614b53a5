// internal/conversation/estimator.go
// Conversational-potential sub-score from eight weighted factors

package conversation

import (
	"math"

	"github.com/imadgeboyega/kiekky-kinship/internal/common/tags"
	"github.com/imadgeboyega/kiekky-kinship/internal/profile"
	"github.com/imadgeboyega/kiekky-kinship/internal/region"
)

// Input is one pairing plus the regional relation already resolved by the caller
type Input struct {
	A        *profile.CulturalProfile
	B        *profile.CulturalProfile
	Relation region.Relation
}

// FactorScore is one factor's contribution to the estimate
type FactorScore struct {
	Factor  Factor  `json:"factor"`
	Value   float64 `json:"value"`
	Weight  float64 `json:"weight"`
	Tier    string  `json:"tier"`
	Neutral bool    `json:"neutral,omitempty"`
}

// Result is the weighted estimate with its per-factor breakdown
type Result struct {
	Score   float64       `json:"score"`
	Factors []FactorScore `json:"factors"`
}

// indicator derives one sub-indicator in [0, 100]; ok is false when the data is unavailable
type indicator func(e *Estimator, in Input) (value float64, ok bool)

// Estimator is immutable after construction and safe for concurrent use
type Estimator struct {
	cfg        Config
	indicators map[Factor][]indicator
}

// NewEstimator validates cfg and wires each factor's ordered sub-indicators
func NewEstimator(cfg Config) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Estimator{
		cfg: cfg,
		indicators: map[Factor][]indicator{
			Linguistic:            {languageTierGap, languageTierFloor},
			CulturalReference:     {regionRelation, heritageSimilarity, traditionSimilarity},
			EmotionalIntelligence: {capacitySimilarity, capacityLevel},
			Humor:                 {humorAffinity},
			TopicOverlap:          {interestJaccard, topicDepth},
			Rhythm:                {rhythmAffinity},
			ConflictResolution:    {conflictAffinity},
			FutureVision:          {goalJaccard, familySimilarity},
		},
	}, nil
}

// Estimate computes Σ factor value × weight. Weights are assumed validated by
// ValidateWeights when the owning model was loaded; a missing weight counts as 0.
func (e *Estimator) Estimate(in Input, weights map[string]float64) Result {
	res := Result{Factors: make([]FactorScore, 0, len(Factors))}

	for _, f := range Factors {
		value, neutral := e.factorValue(f, in)
		w := weights[string(f)]
		res.Score += value * w
		res.Factors = append(res.Factors, FactorScore{
			Factor:  f,
			Value:   value,
			Weight:  w,
			Tier:    e.tiers(f).Label(value),
			Neutral: neutral,
		})
	}

	res.Score = clamp100(res.Score)
	return res
}

func (e *Estimator) factorValue(f Factor, in Input) (float64, bool) {
	subs := e.indicators[f]
	if len(subs) == 0 || in.A == nil || in.B == nil {
		return Neutral, true
	}

	var sum float64
	for _, sub := range subs {
		v, ok := sub(e, in)
		if !ok {
			return Neutral, true
		}
		sum += clamp100(v)
	}
	return sum / float64(len(subs)), false
}

func (e *Estimator) tiers(f Factor) Tiers {
	if t, ok := e.cfg.Tiers[string(f)]; ok {
		return t
	}
	return DefaultTiers
}

func languageTierGap(_ *Estimator, in Input) (float64, bool) {
	a, b := in.A.LanguageTier, in.B.LanguageTier
	if a <= profile.LanguageUnspecified || b <= profile.LanguageUnspecified {
		return 0, false
	}
	return 100 - 25*math.Abs(float64(a-b)), true
}

func languageTierFloor(_ *Estimator, in Input) (float64, bool) {
	a, b := in.A.LanguageTier, in.B.LanguageTier
	if a <= profile.LanguageUnspecified || b <= profile.LanguageUnspecified {
		return 0, false
	}
	low := math.Min(float64(a), float64(b))
	return low / profile.LanguageNative * 100, true
}

func regionRelation(e *Estimator, in Input) (float64, bool) {
	switch in.Relation {
	case region.Same:
		return e.cfg.RegionRelation.Same, true
	case region.Adjacent:
		return e.cfg.RegionRelation.Adjacent, true
	default:
		return e.cfg.RegionRelation.Distant, true
	}
}

func heritageSimilarity(_ *Estimator, in Input) (float64, bool) {
	return similarity(in.A.HeritageAttachment, in.B.HeritageAttachment), true
}

func traditionSimilarity(_ *Estimator, in Input) (float64, bool) {
	return similarity(in.A.TraditionAdherence, in.B.TraditionAdherence), true
}

func capacitySimilarity(_ *Estimator, in Input) (float64, bool) {
	return similarity(in.A.AffinityCapacity, in.B.AffinityCapacity), true
}

func capacityLevel(_ *Estimator, in Input) (float64, bool) {
	mean := (in.A.AffinityCapacity + in.B.AffinityCapacity) / 2
	return mean / profile.MaxSubScore * 100, true
}

func humorAffinity(e *Estimator, in Input) (float64, bool) {
	return tableAffinity(e.cfg.HumorStyles, in.A.HumorStyle, in.B.HumorStyle)
}

func rhythmAffinity(e *Estimator, in Input) (float64, bool) {
	return tableAffinity(e.cfg.Rhythms, in.A.ConversationRhythm, in.B.ConversationRhythm)
}

func conflictAffinity(e *Estimator, in Input) (float64, bool) {
	return tableAffinity(e.cfg.ConflictStyles, in.A.ConflictStyle, in.B.ConflictStyle)
}

func interestJaccard(_ *Estimator, in Input) (float64, bool) {
	j, union := tags.Jaccard(tags.NewSet(in.A.Interests), tags.NewSet(in.B.Interests))
	if union == 0 {
		return 0, false
	}
	return j * 100, true
}

func topicDepth(e *Estimator, in Input) (float64, bool) {
	a, b := tags.NewSet(in.A.Interests), tags.NewSet(in.B.Interests)
	if len(a) == 0 && len(b) == 0 {
		return 0, false
	}
	shared := len(tags.Intersection(a, b))
	return math.Min(1, float64(shared)/float64(e.cfg.TopicDepthSaturation)) * 100, true
}

func goalJaccard(_ *Estimator, in Input) (float64, bool) {
	if len(in.A.FutureGoals) == 0 || len(in.B.FutureGoals) == 0 {
		return 0, false
	}
	j, union := tags.Jaccard(tags.NewSet(in.A.FutureGoals), tags.NewSet(in.B.FutureGoals))
	if union == 0 {
		return 0, false
	}
	return j * 100, true
}

func familySimilarity(_ *Estimator, in Input) (float64, bool) {
	return similarity(in.A.FamilyCentrality, in.B.FamilyCentrality), true
}

func tableAffinity(t PairTable, a, b string) (float64, bool) {
	if normalize(a) == "" || normalize(b) == "" {
		return 0, false
	}
	return t.Lookup(a, b), true
}

// similarity maps the gap between two 0-10 sub-scores onto 100..0
func similarity(a, b float64) float64 {
	return 100 - math.Abs(a-b)/profile.MaxSubScore*100
}

func clamp100(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
