// internal/conversation/config.go

package conversation

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Neutral is the value a factor takes when any of its sub-indicators is unavailable
const Neutral = 50.0

var ErrInvalidWeights = errors.New("invalid conversation factor weights")

// Factor names one conversational-potential factor
type Factor string

const (
	Linguistic            Factor = "linguistic_compatibility"
	CulturalReference     Factor = "cultural_reference_alignment"
	EmotionalIntelligence Factor = "emotional_intelligence_match"
	Humor                 Factor = "humor_compatibility"
	TopicOverlap          Factor = "topic_interest_overlap"
	Rhythm                Factor = "communication_rhythm"
	ConflictResolution    Factor = "conflict_resolution_compatibility"
	FutureVision          Factor = "future_vision_alignment"
)

// Factors lists every factor in evaluation order
var Factors = []Factor{
	Linguistic,
	CulturalReference,
	EmotionalIntelligence,
	Humor,
	TopicOverlap,
	Rhythm,
	ConflictResolution,
	FutureVision,
}

// Tiers are label thresholds; they never affect the numeric score
type Tiers struct {
	Excellent float64 `koanf:"excellent" json:"excellent"`
	Good      float64 `koanf:"good" json:"good"`
	Moderate  float64 `koanf:"moderate" json:"moderate"`
}

// Label maps a factor value to its tier name
func (t Tiers) Label(v float64) string {
	switch {
	case v >= t.Excellent:
		return "excellent"
	case v >= t.Good:
		return "good"
	case v >= t.Moderate:
		return "moderate"
	default:
		return "low"
	}
}

// PairScore scores two styles of a categorical trait. Order is irrelevant.
type PairScore struct {
	A     string  `koanf:"a" json:"a"`
	B     string  `koanf:"b" json:"b"`
	Score float64 `koanf:"score" json:"score"`
}

// PairTable is a symmetric lookup for categorical traits such as humor style
type PairTable struct {
	Same    float64     `koanf:"same" json:"same"`
	Other   float64     `koanf:"other" json:"other"`
	Entries []PairScore `koanf:"entries" json:"entries"`
}

// Lookup returns the table score for a and b. Unlisted identical styles
// score Same and unlisted different styles score Other.
func (t PairTable) Lookup(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	for _, e := range t.Entries {
		ea, eb := normalize(e.A), normalize(e.B)
		if (ea == a && eb == b) || (ea == b && eb == a) {
			return e.Score
		}
	}
	if a == b {
		return t.Same
	}
	return t.Other
}

// RelationScores scores cultural-reference alignment by regional relation
type RelationScores struct {
	Same     float64 `koanf:"same" json:"same"`
	Adjacent float64 `koanf:"adjacent" json:"adjacent"`
	Distant  float64 `koanf:"distant" json:"distant"`
}

// Config is the reference data the estimator derives sub-indicators from
type Config struct {
	Tiers          map[string]Tiers `koanf:"tiers" json:"tiers"`
	HumorStyles    PairTable        `koanf:"humor_styles" json:"humor_styles"`
	ConflictStyles PairTable        `koanf:"conflict_styles" json:"conflict_styles"`
	Rhythms        PairTable        `koanf:"rhythms" json:"rhythms"`
	RegionRelation RelationScores   `koanf:"region_relation" json:"region_relation"`
	// TopicDepthSaturation is the shared-interest count that maxes out topic depth
	TopicDepthSaturation int `koanf:"topic_depth_saturation" json:"topic_depth_saturation"`
}

// DefaultTiers apply to any factor without its own thresholds
var DefaultTiers = Tiers{Excellent: 80, Good: 60, Moderate: 40}

// DefaultConfig returns placeholder reference values, meant to be tuned
func DefaultConfig() Config {
	return Config{
		Tiers: map[string]Tiers{
			string(Linguistic):   {Excellent: 85, Good: 65, Moderate: 45},
			string(TopicOverlap): {Excellent: 70, Good: 45, Moderate: 25},
		},
		HumorStyles: PairTable{
			Same:  90,
			Other: 45,
			Entries: []PairScore{
				{A: "playful", B: "warm", Score: 75},
				{A: "dry", B: "satirical", Score: 75},
				{A: "playful", B: "satirical", Score: 60},
			},
		},
		ConflictStyles: PairTable{
			Same:  80,
			Other: 45,
			Entries: []PairScore{
				{A: "collaborative", B: "collaborative", Score: 95},
				{A: "collaborative", B: "accommodating", Score: 75},
				{A: "collaborative", B: "direct", Score: 65},
				{A: "avoidant", B: "direct", Score: 25},
				{A: "avoidant", B: "avoidant", Score: 55},
			},
		},
		Rhythms: PairTable{
			Same:  100,
			Other: 70,
			Entries: []PairScore{
				{A: "rapid", B: "reflective", Score: 30},
			},
		},
		RegionRelation:       RelationScores{Same: 100, Adjacent: 70, Distant: 30},
		TopicDepthSaturation: 3,
	}
}

// DefaultWeights returns one weight per factor summing to 1
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		string(Linguistic):            0.15,
		string(CulturalReference):     0.15,
		string(EmotionalIntelligence): 0.15,
		string(Humor):                 0.10,
		string(TopicOverlap):          0.15,
		string(Rhythm):                0.10,
		string(ConflictResolution):    0.10,
		string(FutureVision):          0.10,
	}
}

// Validate checks the reference values themselves
func (c Config) Validate() error {
	for name := range c.Tiers {
		if !isFactor(name) {
			return fmt.Errorf("tiers.%s: unknown factor", name)
		}
		t := c.Tiers[name]
		if !(t.Excellent >= t.Good && t.Good >= t.Moderate) {
			return fmt.Errorf("tiers.%s must be ordered excellent >= good >= moderate", name)
		}
	}
	if c.TopicDepthSaturation < 1 {
		return fmt.Errorf("topic_depth_saturation must be positive, got %d", c.TopicDepthSaturation)
	}
	for name, table := range map[string]PairTable{
		"humor_styles":    c.HumorStyles,
		"conflict_styles": c.ConflictStyles,
		"rhythms":         c.Rhythms,
	} {
		if !inRange(table.Same) || !inRange(table.Other) {
			return fmt.Errorf("%s scores must be in [0, 100]", name)
		}
		for _, e := range table.Entries {
			if !inRange(e.Score) {
				return fmt.Errorf("%s entry %s/%s score must be in [0, 100], got %f", name, e.A, e.B, e.Score)
			}
		}
	}
	r := c.RegionRelation
	if !inRange(r.Same) || !inRange(r.Adjacent) || !inRange(r.Distant) {
		return fmt.Errorf("region_relation scores must be in [0, 100]")
	}
	return nil
}

// ValidateWeights checks that weights name every factor exactly once, are
// non-negative, and sum to 1 within tolerance.
func ValidateWeights(weights map[string]float64, tolerance float64) error {
	var sum float64
	for _, f := range Factors {
		w, ok := weights[string(f)]
		if !ok {
			return fmt.Errorf("%w: missing weight for %s", ErrInvalidWeights, f)
		}
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%w: %s must be non-negative, got %f", ErrInvalidWeights, f, w)
		}
		sum += w
	}
	for name := range weights {
		if !isFactor(name) {
			return fmt.Errorf("%w: unknown factor %q", ErrInvalidWeights, name)
		}
	}
	if math.Abs(sum-1) > tolerance {
		return fmt.Errorf("%w: weights sum to %f, want 1", ErrInvalidWeights, sum)
	}
	return nil
}

func isFactor(name string) bool {
	for _, f := range Factors {
		if string(f) == name {
			return true
		}
	}
	return false
}

func inRange(v float64) bool {
	return v >= 0 && v <= 100
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
