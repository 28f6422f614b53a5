// internal/matching/scorer.go

package matching

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/imadgeboyega/kiekky-kinship/internal/affinity"
	"github.com/imadgeboyega/kiekky-kinship/internal/common/tags"
	"github.com/imadgeboyega/kiekky-kinship/internal/communication"
	"github.com/imadgeboyega/kiekky-kinship/internal/conversation"
	"github.com/imadgeboyega/kiekky-kinship/internal/logging"
	"github.com/imadgeboyega/kiekky-kinship/internal/profile"
	"github.com/imadgeboyega/kiekky-kinship/internal/region"
)

// Fallback kinds recorded on a MatchResult
const (
	FallbackRegion = "region"
	FallbackStyle  = "communication_style"
)

// MatchResult is computed per pairing and never persisted by the engine
type MatchResult struct {
	ProfileA            string                     `json:"profile_a"`
	ProfileB            string                     `json:"profile_b"`
	Score               float64                    `json:"score"`
	SubScores           map[Dimension]float64      `json:"sub_scores"`
	Tier                string                     `json:"tier"`
	Justifications      []string                   `json:"justifications"`
	ModelVersion        string                     `json:"model_version"`
	SharedInterests     []string                   `json:"shared_interests,omitempty"`
	SharedAffinities    []string                   `json:"shared_affinities,omitempty"`
	ConversationFactors []conversation.FactorScore `json:"conversation_factors"`
	Fallbacks           []string                   `json:"fallbacks,omitempty"`
}

// Scorer orchestrates the reference components into one compatibility score.
// It holds only immutable reference data and is safe for concurrent use.
type Scorer struct {
	regions      *region.KnowledgeBase
	affinity     *affinity.Analyzer
	matrix       *communication.Matrix
	conversation *conversation.Estimator
	logger       zerolog.Logger
}

// NewScorer creates a scorer over loaded reference components
func NewScorer(regions *region.KnowledgeBase, analyzer *affinity.Analyzer, matrix *communication.Matrix, estimator *conversation.Estimator) *Scorer {
	return &Scorer{
		regions:      regions,
		affinity:     analyzer,
		matrix:       matrix,
		conversation: estimator,
		logger:       logging.With().Str("component", "scorer").Logger(),
	}
}

// Regions exposes the knowledge base the scorer resolves against
func (s *Scorer) Regions() *region.KnowledgeBase {
	return s.regions
}

// Score computes the compatibility of a and b under model. The model is
// validated on every call so a misconfigured model fails at its first use.
func (s *Scorer) Score(a, b *profile.CulturalProfile, model *CompatibilityModel) (*MatchResult, error) {
	if a == nil || b == nil {
		return nil, ErrMissingProfile
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return s.score(a, b, model), nil
}

// score assumes non-nil profiles and a validated model
func (s *Scorer) score(rawA, rawB *profile.CulturalProfile, model *CompatibilityModel) *MatchResult {
	a, b := sanitize(rawA), sanitize(rawB)
	res := &MatchResult{
		ProfileA:     a.ID,
		ProfileB:     b.ID,
		ModelVersion: model.Version,
	}
	var notes []string

	// 1. regions
	regA, fellBackA := s.resolveRegion(a, &notes, res)
	regB, fellBackB := s.resolveRegion(b, &notes, res)
	relation := region.Distant
	if !fellBackA && !fellBackB {
		relation = s.regions.Relation(regA.Tag, regB.Tag)
	}

	// 2. affinity
	aff := s.affinity.Resonance(affinitySubject(a, regA), affinitySubject(b, regB))
	res.SharedAffinities = aff.SharedTypes

	// 3. communication
	styleA := s.resolveStyle(a, &notes, res)
	styleB := s.resolveStyle(b, &notes, res)
	comm, err := s.matrix.Compatibility(styleA, styleB)
	if err != nil {
		comm = 0
		s.logger.Error().Err(err).Msg("neutral communication style missing from matrix")
	}

	// 4. conversation
	conv := s.conversation.Estimate(conversation.Input{A: a, B: b, Relation: relation}, model.ConversationWeights)
	res.ConversationFactors = conv.Factors

	// 5. interests
	setA, setB := tags.NewSet(a.Interests), tags.NewSet(b.Interests)
	jaccard, _ := tags.Jaccard(setA, setB)
	res.SharedInterests = tags.Intersection(setA, setB)

	values := map[Dimension]float64{
		DimAffinity:      aff.Resonance * 100,
		DimCommunication: comm,
		DimConversation:  conv.Score,
		DimInterests:     jaccard * 100,
	}

	// 6-7. weighted sum plus capped regional bonus
	var weighted float64
	contributions := make([]contribution, 0, len(Dimensions)+1)
	for _, d := range Dimensions {
		points := values[d] * model.Weights[d]
		weighted += points
		contributions = append(contributions, contribution{dimension: d, points: points})
	}
	bonus := math.Min(regionalBonus(relation, model), math.Max(0, 100-weighted))
	contributions = append(contributions, contribution{dimension: DimRegionalBonus, points: bonus})

	res.Score = clampScore(weighted + bonus)
	values[DimRegionalBonus] = bonus
	res.SubScores = values

	// 8. tier
	res.Tier = model.TierFor(res.Score)

	// 9. justifications
	facts := reasonFacts{
		styleA:           styleA,
		styleB:           styleB,
		regionA:          regA.Tag,
		regionB:          regB.Tag,
		relation:         relation,
		sharedInterests:  res.SharedInterests,
		sharedAffinities: aff.SharedTypes,
		conversation:     conv,
	}
	res.Justifications = append(buildReasons(contributions, model.NotableContribution, facts), notes...)

	return res
}

func (s *Scorer) resolveRegion(p *profile.CulturalProfile, notes *[]string, res *MatchResult) (region.Profile, bool) {
	reg, fellBack := s.regions.Resolve(p.Region)
	if fellBack {
		*notes = append(*notes, regionFallbackNote(p.ID, reg.Tag))
		res.Fallbacks = appendOnce(res.Fallbacks, FallbackRegion)
		s.logger.Warn().
			Str("profile_id", p.ID).
			Str("region", p.Region).
			Str("fallback", reg.Tag).
			Msg("unknown region, using fallback")
	}
	return reg, fellBack
}

func (s *Scorer) resolveStyle(p *profile.CulturalProfile, notes *[]string, res *MatchResult) string {
	if s.matrix.Known(p.CommunicationStyle) {
		return communication.Normalize(p.CommunicationStyle)
	}
	neutral := s.matrix.NeutralStyle()
	*notes = append(*notes, styleFallbackNote(p.ID, neutral))
	res.Fallbacks = appendOnce(res.Fallbacks, FallbackStyle)
	s.logger.Warn().
		Str("profile_id", p.ID).
		Str("style", p.CommunicationStyle).
		Str("fallback", neutral).
		Msg("unknown communication style, using neutral style")
	return neutral
}

func regionalBonus(rel region.Relation, model *CompatibilityModel) float64 {
	switch rel {
	case region.Same:
		return model.RegionalBonus
	case region.Adjacent:
		return model.AdjacentBonus
	default:
		return 0
	}
}

func affinitySubject(p *profile.CulturalProfile, reg region.Profile) affinity.Subject {
	return affinity.Subject{
		Capacity:   p.AffinityCapacity,
		Indicators: p.EmotionalIndicators,
		Text:       p.About,
		Baseline:   reg.BaselineAffinity,
	}
}

// sanitize returns a copy with every numeric field forced into its valid range.
// The caller's snapshot is never modified.
func sanitize(p *profile.CulturalProfile) *profile.CulturalProfile {
	c := *p
	c.HeritageAttachment = clampSubScore(c.HeritageAttachment)
	c.TraditionAdherence = clampSubScore(c.TraditionAdherence)
	c.FamilyCentrality = clampSubScore(c.FamilyCentrality)
	c.AffinityCapacity = clampSubScore(c.AffinityCapacity)
	if c.LanguageTier < profile.LanguageUnspecified || c.LanguageTier > profile.LanguageNative {
		c.LanguageTier = profile.LanguageUnspecified
	}
	return &c
}

func clampSubScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(profile.MaxSubScore, v))
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func appendOnce(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
