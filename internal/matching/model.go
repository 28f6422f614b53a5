// internal/matching/model.go
// Versioned compatibility model: weights, thresholds, tiers and learning policy

package matching

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/imadgeboyega/kiekky-kinship/internal/conversation"
)

var (
	ErrInvalidModelConfiguration = errors.New("invalid model configuration")
	ErrMissingProfile            = errors.New("missing profile")
)

// WeightTolerance is how far any weight set may drift from a sum of 1
const WeightTolerance = 0.001

// Dimension names one scored compatibility dimension
type Dimension string

const (
	DimAffinity      Dimension = "affinity"
	DimCommunication Dimension = "communication"
	DimConversation  Dimension = "conversation"
	DimInterests     Dimension = "interests"

	// DimRegionalBonus appears in sub-scores and justifications but carries no weight
	DimRegionalBonus Dimension = "regional_bonus"
)

// Dimensions lists the weighted dimensions in canonical order
var Dimensions = []Dimension{DimAffinity, DimCommunication, DimConversation, DimInterests}

// Status is a model version's lifecycle state
type Status string

const (
	StatusDraft   Status = "draft"
	StatusActive  Status = "active"
	StatusRetired Status = "retired"
)

// TierBoundary maps every score at or above Min to Label
type TierBoundary struct {
	Label string  `koanf:"label" json:"label"`
	Min   float64 `koanf:"min" json:"min"`
}

// SignalWeights blend the learning loop's four feedback sources
type SignalWeights struct {
	Explicit   float64 `koanf:"explicit" json:"explicit"`
	Behavioral float64 `koanf:"behavioral" json:"behavioral"`
	Outcome    float64 `koanf:"outcome" json:"outcome"`
	Prior      float64 `koanf:"prior" json:"prior"`
}

// Sum returns the total of all four weights
func (s SignalWeights) Sum() float64 {
	return s.Explicit + s.Behavioral + s.Outcome + s.Prior
}

// Baseline holds the metrics observed when a model was promoted
type Baseline struct {
	Accuracy     float64 `koanf:"accuracy" json:"accuracy"`
	Satisfaction float64 `koanf:"satisfaction" json:"satisfaction"`
}

// LearningPolicy configures when and how far the learning loop moves a model
type LearningPolicy struct {
	SampleThreshold       int64   `koanf:"sample_threshold" json:"sample_threshold"`
	AccuracyDropDelta     float64 `koanf:"accuracy_drop_delta" json:"accuracy_drop_delta"`
	SatisfactionDropDelta float64 `koanf:"satisfaction_drop_delta" json:"satisfaction_drop_delta"`
	MinDriftSamples       int64   `koanf:"min_drift_samples" json:"min_drift_samples"`
	LearningRate          float64 `koanf:"learning_rate" json:"learning_rate"`
	MinWeight             float64 `koanf:"min_weight" json:"min_weight"`
	ThresholdStep         float64 `koanf:"threshold_step" json:"threshold_step"`
}

// CompatibilityModel is the explicit configuration value passed into every
// scoring call. Models are treated as immutable once published.
type CompatibilityModel struct {
	Version       string    `koanf:"version" json:"version"`
	ParentVersion string    `koanf:"parent_version" json:"parent_version,omitempty"`
	Status        Status    `koanf:"status" json:"status"`
	CreatedAt     time.Time `koanf:"-" json:"created_at"`

	Weights             map[Dimension]float64 `koanf:"weights" json:"weights"`
	Priors              map[Dimension]float64 `koanf:"priors" json:"priors,omitempty"`
	ConversationWeights map[string]float64    `koanf:"conversation_weights" json:"conversation_weights"`
	SignalWeights       SignalWeights         `koanf:"signal_weights" json:"signal_weights"`

	MinScore            float64        `koanf:"min_score" json:"min_score"`
	RegionalBonus       float64        `koanf:"regional_bonus" json:"regional_bonus"`
	AdjacentBonus       float64        `koanf:"adjacent_bonus" json:"adjacent_bonus"`
	Tiers               []TierBoundary `koanf:"tiers" json:"tiers"`
	NotableContribution float64        `koanf:"notable_contribution" json:"notable_contribution"`

	ActivityInterestWeight float64 `koanf:"activity_interest_weight" json:"activity_interest_weight"`
	CulturalFocusBonus     float64 `koanf:"cultural_focus_bonus" json:"cultural_focus_bonus"`

	Baseline Baseline       `koanf:"baseline" json:"baseline"`
	Learning LearningPolicy `koanf:"learning" json:"learning"`

	// Observed holds the metrics the learning loop measured when it proposed
	// this draft. Baseline is inherited unchanged from the parent.
	Observed *Baseline `koanf:"-" json:"observed,omitempty"`
}

// DefaultModel returns the placeholder starting model. Its constants are
// meant to be tuned by the learning loop.
//
// Interests and communication carry most of the weight so the tier bounds
// hold whatever the other attributes are: a same-region, same-style pair
// with identical interests scores at least 45 + 0.35*88 + 10 points, and a
// distant pair with no shared interests and the most divergent styles at
// most 0.35*40 + 10 + 10.
func DefaultModel() *CompatibilityModel {
	weights := map[Dimension]float64{
		DimAffinity:      0.10,
		DimCommunication: 0.35,
		DimConversation:  0.10,
		DimInterests:     0.45,
	}
	priors := make(map[Dimension]float64, len(weights))
	for d, w := range weights {
		priors[d] = w
	}

	return &CompatibilityModel{
		Version:             "baseline-v1",
		Status:              StatusActive,
		Weights:             weights,
		Priors:              priors,
		ConversationWeights: conversation.DefaultWeights(),
		SignalWeights:       SignalWeights{Explicit: 0.40, Behavioral: 0.30, Outcome: 0.20, Prior: 0.10},
		MinScore:            35,
		RegionalBonus:       10,
		AdjacentBonus:       5,
		Tiers: []TierBoundary{
			{Label: "excellent", Min: 75},
			{Label: "good", Min: 55},
			{Label: "moderate", Min: 35},
			{Label: "poor", Min: 0},
		},
		NotableContribution:    6,
		ActivityInterestWeight: 0.7,
		CulturalFocusBonus:     15,
		Baseline:               Baseline{Accuracy: 0.70, Satisfaction: 0.65},
		Learning: LearningPolicy{
			SampleThreshold:       500,
			AccuracyDropDelta:     0.05,
			SatisfactionDropDelta: 0.05,
			MinDriftSamples:       20,
			LearningRate:          0.1,
			MinWeight:             0.05,
			ThresholdStep:         5,
		},
	}
}

// Validate fails with ErrInvalidModelConfiguration on the first violation found
func (m *CompatibilityModel) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: model is nil", ErrInvalidModelConfiguration)
	}
	if m.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidModelConfiguration)
	}

	if err := validateDimensionWeights("weights", m.Weights, true); err != nil {
		return err
	}
	if err := validateDimensionWeights("priors", m.Priors, false); err != nil {
		return err
	}
	if err := conversation.ValidateWeights(m.ConversationWeights, WeightTolerance); err != nil {
		return fmt.Errorf("%w: conversation_weights: %v", ErrInvalidModelConfiguration, err)
	}

	sw := m.SignalWeights
	for name, w := range map[string]float64{
		"explicit": sw.Explicit, "behavioral": sw.Behavioral, "outcome": sw.Outcome, "prior": sw.Prior,
	} {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%w: signal_weights.%s must be non-negative, got %f", ErrInvalidModelConfiguration, name, w)
		}
	}
	if math.Abs(sw.Sum()-1) > WeightTolerance {
		return fmt.Errorf("%w: signal_weights sum to %f, want 1", ErrInvalidModelConfiguration, sw.Sum())
	}

	if !inPercentRange(m.MinScore) {
		return fmt.Errorf("%w: min_score must be in [0, 100], got %f", ErrInvalidModelConfiguration, m.MinScore)
	}
	if !inPercentRange(m.RegionalBonus) || !inPercentRange(m.AdjacentBonus) {
		return fmt.Errorf("%w: regional bonuses must be in [0, 100]", ErrInvalidModelConfiguration)
	}
	if m.AdjacentBonus > m.RegionalBonus {
		return fmt.Errorf("%w: adjacent_bonus %f exceeds regional_bonus %f",
			ErrInvalidModelConfiguration, m.AdjacentBonus, m.RegionalBonus)
	}
	if err := validateTiers(m.Tiers); err != nil {
		return err
	}
	if m.NotableContribution < 0 {
		return fmt.Errorf("%w: notable_contribution must be non-negative, got %f",
			ErrInvalidModelConfiguration, m.NotableContribution)
	}
	if m.ActivityInterestWeight < 0 || m.ActivityInterestWeight > 1 {
		return fmt.Errorf("%w: activity_interest_weight must be in [0, 1], got %f",
			ErrInvalidModelConfiguration, m.ActivityInterestWeight)
	}
	if !inPercentRange(m.CulturalFocusBonus) {
		return fmt.Errorf("%w: cultural_focus_bonus must be in [0, 100], got %f",
			ErrInvalidModelConfiguration, m.CulturalFocusBonus)
	}

	return m.Learning.validate()
}

func (p LearningPolicy) validate() error {
	switch {
	case p.SampleThreshold < 1:
		return fmt.Errorf("%w: learning.sample_threshold must be positive, got %d", ErrInvalidModelConfiguration, p.SampleThreshold)
	case p.AccuracyDropDelta < 0 || p.AccuracyDropDelta > 1:
		return fmt.Errorf("%w: learning.accuracy_drop_delta must be in [0, 1], got %f", ErrInvalidModelConfiguration, p.AccuracyDropDelta)
	case p.SatisfactionDropDelta < 0 || p.SatisfactionDropDelta > 1:
		return fmt.Errorf("%w: learning.satisfaction_drop_delta must be in [0, 1], got %f", ErrInvalidModelConfiguration, p.SatisfactionDropDelta)
	case p.MinDriftSamples < 0:
		return fmt.Errorf("%w: learning.min_drift_samples must be non-negative, got %d", ErrInvalidModelConfiguration, p.MinDriftSamples)
	case p.LearningRate <= 0 || p.LearningRate > 1:
		return fmt.Errorf("%w: learning.learning_rate must be in (0, 1], got %f", ErrInvalidModelConfiguration, p.LearningRate)
	case p.MinWeight < 0 || p.MinWeight*float64(len(Dimensions)) > 1:
		return fmt.Errorf("%w: learning.min_weight must be in [0, %f], got %f",
			ErrInvalidModelConfiguration, 1/float64(len(Dimensions)), p.MinWeight)
	case p.ThresholdStep < 0:
		return fmt.Errorf("%w: learning.threshold_step must be non-negative, got %f", ErrInvalidModelConfiguration, p.ThresholdStep)
	}
	return nil
}

func validateDimensionWeights(field string, weights map[Dimension]float64, required bool) error {
	if len(weights) == 0 && !required {
		return nil
	}

	var sum float64
	for _, d := range Dimensions {
		w, ok := weights[d]
		if !ok {
			return fmt.Errorf("%w: %s.%s is missing", ErrInvalidModelConfiguration, field, d)
		}
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%w: %s.%s must be non-negative, got %f", ErrInvalidModelConfiguration, field, d, w)
		}
		sum += w
	}
	if len(weights) != len(Dimensions) {
		return fmt.Errorf("%w: %s has unknown dimensions", ErrInvalidModelConfiguration, field)
	}
	if math.Abs(sum-1) > WeightTolerance {
		return fmt.Errorf("%w: %s sum to %f, want 1", ErrInvalidModelConfiguration, field, sum)
	}
	return nil
}

// validateTiers requires labelled tiers in strictly descending order whose
// lowest bound is 0, so every score in [0, 100] maps to exactly one tier.
func validateTiers(tiers []TierBoundary) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: at least one tier is required", ErrInvalidModelConfiguration)
	}

	seen := make(map[string]bool, len(tiers))
	for i, t := range tiers {
		if t.Label == "" {
			return fmt.Errorf("%w: tiers[%d] has no label", ErrInvalidModelConfiguration, i)
		}
		if seen[t.Label] {
			return fmt.Errorf("%w: duplicate tier %q", ErrInvalidModelConfiguration, t.Label)
		}
		seen[t.Label] = true
		if !inPercentRange(t.Min) {
			return fmt.Errorf("%w: tiers[%d].min must be in [0, 100], got %f", ErrInvalidModelConfiguration, i, t.Min)
		}
		if i > 0 && t.Min >= tiers[i-1].Min {
			return fmt.Errorf("%w: tiers must be ordered by strictly descending min", ErrInvalidModelConfiguration)
		}
	}
	if tiers[len(tiers)-1].Min != 0 {
		return fmt.Errorf("%w: lowest tier must start at 0", ErrInvalidModelConfiguration)
	}
	return nil
}

// TierFor returns the highest tier whose lower bound is at or below score
func (m *CompatibilityModel) TierFor(score float64) string {
	for _, t := range m.Tiers {
		if score >= t.Min {
			return t.Label
		}
	}
	return m.Tiers[len(m.Tiers)-1].Label
}

// TierMin returns the lower bound of the named tier
func (m *CompatibilityModel) TierMin(label string) (float64, bool) {
	for _, t := range m.Tiers {
		if t.Label == label {
			return t.Min, true
		}
	}
	return 0, false
}

// Clone returns a deep copy safe to modify
func (m *CompatibilityModel) Clone() *CompatibilityModel {
	c := *m
	c.Weights = cloneDims(m.Weights)
	c.Priors = cloneDims(m.Priors)
	c.ConversationWeights = make(map[string]float64, len(m.ConversationWeights))
	for k, v := range m.ConversationWeights {
		c.ConversationWeights[k] = v
	}
	c.Tiers = append([]TierBoundary(nil), m.Tiers...)
	if m.Observed != nil {
		obs := *m.Observed
		c.Observed = &obs
	}
	return &c
}

// SortTiers orders tiers by descending lower bound, for configs written in any order
func (m *CompatibilityModel) SortTiers() {
	sort.SliceStable(m.Tiers, func(i, j int) bool { return m.Tiers[i].Min > m.Tiers[j].Min })
}

func cloneDims(in map[Dimension]float64) map[Dimension]float64 {
	if in == nil {
		return nil
	}
	out := make(map[Dimension]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func inPercentRange(v float64) bool {
	return v >= 0 && v <= 100
}
