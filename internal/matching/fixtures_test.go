package matching

import (
	"testing"

	"github.com/imadgeboyega/kiekky-kinship/internal/affinity"
	"github.com/imadgeboyega/kiekky-kinship/internal/communication"
	"github.com/imadgeboyega/kiekky-kinship/internal/conversation"
	"github.com/imadgeboyega/kiekky-kinship/internal/profile"
	"github.com/imadgeboyega/kiekky-kinship/internal/region"
)

func newTestScorer(t testing.TB) *Scorer {
	t.Helper()

	kb, err := region.New([]region.Profile{
		{Tag: "coastal-south", CommunicationStyle: "expressive", BaselineAffinity: 0.75},
		{Tag: "highland-north", CommunicationStyle: "reserved", BaselineAffinity: 0.65},
		{Tag: "river-delta", CommunicationStyle: "diplomatic", BaselineAffinity: 0.70},
		{Tag: "diaspora", CommunicationStyle: "diplomatic", BaselineAffinity: 0.60},
	}, map[string][]string{
		"southern-arc": {"coastal-south", "river-delta"},
	}, "diaspora")
	if err != nil {
		t.Fatalf("region.New() error = %v", err)
	}

	analyzer, err := affinity.NewAnalyzer([]affinity.Type{
		{Name: "nostalgia", Keywords: []string{"homesick", "childhood"}, IntensityImpact: 1.0, Specificity: 1.5},
		{Name: "celebratory-joy", Keywords: []string{"festival", "dancing"}, IntensityImpact: 0.9, Specificity: 0.8},
	})
	if err != nil {
		t.Fatalf("affinity.NewAnalyzer() error = %v", err)
	}

	matrix, err := communication.NewMatrix(communication.Config{
		Styles: []communication.Style{
			{Name: "expressive", SelfScore: 95},
			{Name: "direct", SelfScore: 90},
			{Name: "diplomatic", SelfScore: 92},
			{Name: "reserved", SelfScore: 88},
			{Name: "analytical", SelfScore: 90},
		},
		Pairs: []communication.Pair{
			{A: "expressive", B: "direct", Score: 70},
			{A: "expressive", B: "diplomatic", Score: 75},
			{A: "expressive", B: "reserved", Score: 40},
			{A: "direct", B: "analytical", Score: 70},
			{A: "reserved", B: "diplomatic", Score: 70},
		},
		CrossFactor:  0.6,
		NeutralStyle: "diplomatic",
	})
	if err != nil {
		t.Fatalf("communication.NewMatrix() error = %v", err)
	}

	estimator, err := conversation.NewEstimator(conversation.DefaultConfig())
	if err != nil {
		t.Fatalf("conversation.NewEstimator() error = %v", err)
	}

	return NewScorer(kb, analyzer, matrix, estimator)
}

// coastalPair returns two members from the same region who share a style,
// two of four interests and a nostalgia indicator.
func coastalPair() (*profile.CulturalProfile, *profile.CulturalProfile) {
	a := &profile.CulturalProfile{
		ID:                  "amara",
		Region:              "coastal-south",
		CommunicationStyle:  "expressive",
		Interests:           []string{"cooking", "drumming", "football"},
		AffinityCapacity:    8,
		EmotionalIndicators: []string{"homesick"},
		LanguageTier:        profile.LanguageNative,
		HeritageAttachment:  8,
		TraditionAdherence:  7,
		FamilyCentrality:    8,
	}
	b := &profile.CulturalProfile{
		ID:                  "kofi",
		Region:              "coastal-south",
		CommunicationStyle:  "expressive",
		Interests:           []string{"cooking", "drumming", "film"},
		AffinityCapacity:    6,
		EmotionalIndicators: []string{"homesick", "festival"},
		LanguageTier:        profile.LanguageFluent,
		HeritageAttachment:  7,
		TraditionAdherence:  8,
		FamilyCentrality:    7,
	}
	return a, b
}

// divergentPair returns two members who differ on every dimension
func divergentPair() (*profile.CulturalProfile, *profile.CulturalProfile) {
	a := &profile.CulturalProfile{
		ID:                 "lena",
		Region:             "coastal-south",
		CommunicationStyle: "expressive",
		Interests:          []string{"surfing", "salsa"},
		LanguageTier:       profile.LanguageBasic,
		HeritageAttachment: 0,
		TraditionAdherence: 0,
	}
	b := &profile.CulturalProfile{
		ID:                 "tomas",
		Region:             "highland-north",
		CommunicationStyle: "reserved",
		Interests:          []string{"chess", "hiking"},
		LanguageTier:       profile.LanguageNative,
		HeritageAttachment: 10,
		TraditionAdherence: 10,
	}
	return a, b
}
