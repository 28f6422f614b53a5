package reference

import (
	"github.com/imadgeboyega/kiekky-kinship/internal/affinity"
	"github.com/imadgeboyega/kiekky-kinship/internal/communication"
	"github.com/imadgeboyega/kiekky-kinship/internal/conversation"
	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
	"github.com/imadgeboyega/kiekky-kinship/internal/region"
)

// DefaultVersion identifies the built-in placeholder artifact
const DefaultVersion = "builtin-2026.1"

// Defaults returns a complete, valid placeholder artifact. Deployments are
// expected to override it with a curated reference file.
func Defaults() *Artifact {
	return &Artifact{
		Version:       DefaultVersion,
		DefaultRegion: "diaspora",
		Regions: []region.Profile{
			{
				Tag:                   "coastal-south",
				Name:                  "Coastal South",
				Traits:                []string{"festive", "communal", "open"},
				CommunicationStyle:    "expressive",
				BaselineAffinity:      0.75,
				CelebrationPriorities: []string{"harvest-festival", "boat-blessing"},
				Markers:               []string{"seafood", "drumming", "call-and-response"},
			},
			{
				Tag:                   "river-delta",
				Name:                  "River Delta",
				Traits:                []string{"trading", "hospitable"},
				CommunicationStyle:    "diplomatic",
				BaselineAffinity:      0.70,
				CelebrationPriorities: []string{"market-day", "harvest-festival"},
				Markers:               []string{"boat-racing", "storytelling"},
			},
			{
				Tag:                   "highland-north",
				Name:                  "Highland North",
				Traits:                []string{"reserved", "loyal", "enduring"},
				CommunicationStyle:    "reserved",
				BaselineAffinity:      0.65,
				CelebrationPriorities: []string{"winter-solstice", "ancestor-day"},
				Markers:               []string{"weaving", "herding"},
			},
			{
				Tag:                   "savanna-west",
				Name:                  "Savanna West",
				Traits:                []string{"proud", "direct"},
				CommunicationStyle:    "direct",
				BaselineAffinity:      0.70,
				CelebrationPriorities: []string{"rain-festival", "naming-ceremony"},
				Markers:               []string{"griot-songs", "masquerade"},
			},
			{
				Tag:                   "urban-east",
				Name:                  "Urban East",
				Traits:                []string{"cosmopolitan", "pragmatic"},
				CommunicationStyle:    "analytical",
				BaselineAffinity:      0.60,
				CelebrationPriorities: []string{"new-year", "independence-day"},
				Markers:               []string{"street-food", "highlife"},
			},
			{
				Tag:                   "diaspora",
				Name:                  "Diaspora",
				Traits:                []string{"bridging", "adaptive"},
				CommunicationStyle:    "diplomatic",
				BaselineAffinity:      0.60,
				CelebrationPriorities: []string{"heritage-month"},
				Markers:               []string{"fusion", "homecoming"},
			},
		},
		AdjacencyGroups: map[string][]string{
			"southern-arc": {"coastal-south", "river-delta"},
			"inland-belt":  {"highland-north", "savanna-west"},
			"metro":        {"urban-east", "river-delta"},
		},
		Communication: communication.Config{
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
		},
		AffinityTypes: []affinity.Type{
			{
				Name:                 "nostalgia",
				Keywords:             []string{"homesick", "childhood", "memories of home"},
				CompatibilityFactors: []string{"storytelling", "heritage"},
				IntensityImpact:      1.0,
				Specificity:          1.5,
			},
			{
				Name:                 "family-devotion",
				Keywords:             []string{"family first", "elders", "siblings"},
				CompatibilityFactors: []string{"family", "tradition"},
				IntensityImpact:      1.1,
				Specificity:          1.0,
			},
			{
				Name:                 "spiritual-grounding",
				Keywords:             []string{"faith", "prayer", "ancestors"},
				CompatibilityFactors: []string{"tradition"},
				IntensityImpact:      1.0,
				Specificity:          2.0,
			},
			{
				Name:                 "celebratory-joy",
				Keywords:             []string{"festival", "dancing", "celebration"},
				CompatibilityFactors: []string{"community"},
				IntensityImpact:      0.9,
				Specificity:          0.8,
			},
			{
				Name:                 "resilience",
				Keywords:             []string{"overcame", "rebuilt", "perseverance"},
				CompatibilityFactors: []string{"support"},
				IntensityImpact:      1.0,
				Specificity:          1.2,
			},
			{
				Name:                 "hospitality",
				Keywords:             []string{"hosting", "cooking for others", "open door"},
				CompatibilityFactors: []string{"community", "food"},
				IntensityImpact:      0.95,
				Specificity:          1.0,
			},
		},
		Conversation: conversation.DefaultConfig(),
		Model:        *matching.DefaultModel(),
	}
}
