// internal/matching/justification.go
// Human-readable reasons for scores and recommendations

package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/imadgeboyega/kiekky-kinship/internal/conversation"
	"github.com/imadgeboyega/kiekky-kinship/internal/region"
)

// Fallback note prefixes; downstream auditing matches on these
const (
	NoteRegionDefaulted = "region unresolved, defaulted"
	NoteStyleDefaulted  = "communication style unresolved, defaulted"
)

const maxListedTags = 3

// contribution is one dimension's weighted share of a final score, in points
type contribution struct {
	dimension Dimension
	points    float64
}

// reasonFacts carries the details a reason string can cite
type reasonFacts struct {
	styleA, styleB   string
	regionA, regionB string
	relation         region.Relation
	sharedInterests  []string
	sharedAffinities []string
	conversation     conversation.Result
}

// buildReasons emits one reason per notable contribution, highest first.
// Ties keep the order contributions were given in.
func buildReasons(contribs []contribution, notable float64, facts reasonFacts) []string {
	picked := make([]contribution, 0, len(contribs))
	for _, c := range contribs {
		if c.points > 0 && c.points >= notable {
			picked = append(picked, c)
		}
	}
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].points > picked[j].points })

	reasons := make([]string, 0, len(picked))
	for _, c := range picked {
		if r := reasonFor(c.dimension, facts); r != "" {
			reasons = append(reasons, r)
		}
	}
	return reasons
}

// topReason returns the reason for the largest positive contribution, if any
func topReason(contribs []contribution, facts reasonFacts) string {
	best := -1
	for i, c := range contribs {
		if c.points > 0 && (best < 0 || c.points > contribs[best].points) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return reasonFor(contribs[best].dimension, facts)
}

func reasonFor(d Dimension, f reasonFacts) string {
	switch d {
	case DimAffinity:
		if len(f.sharedAffinities) > 0 {
			return "Shared emotional ties: " + listTags(f.sharedAffinities)
		}
		return "Similar depth of cultural longing"
	case DimCommunication:
		if f.styleA == f.styleB {
			return fmt.Sprintf("Shared communication style: %s", f.styleA)
		}
		return fmt.Sprintf("Compatible communication styles (%s and %s)", f.styleA, f.styleB)
	case DimConversation:
		if top, ok := strongestFactor(f.conversation); ok {
			return fmt.Sprintf("Strong conversation potential, led by %s", humanize(string(top.Factor)))
		}
		return "Strong conversation potential"
	case DimInterests:
		if len(f.sharedInterests) > 0 {
			return "Shared interests: " + listTags(f.sharedInterests)
		}
		return ""
	case DimRegionalBonus:
		switch f.relation {
		case region.Same:
			return fmt.Sprintf("Regional alignment: both rooted in %s", f.regionA)
		case region.Adjacent:
			return fmt.Sprintf("Regional alignment: %s and %s are culturally adjacent", f.regionA, f.regionB)
		}
		return ""
	case dimCulturalFocus:
		return "Celebrates cultural heritage"
	}
	return ""
}

// strongestFactor returns the highest non-neutral weighted factor
func strongestFactor(r conversation.Result) (conversation.FactorScore, bool) {
	var best conversation.FactorScore
	found := false
	for _, fs := range r.Factors {
		if fs.Neutral || fs.Weight == 0 {
			continue
		}
		if !found || fs.Value*fs.Weight > best.Value*best.Weight {
			best, found = fs, true
		}
	}
	return best, found
}

func regionFallbackNote(profileID, fallback string) string {
	return fmt.Sprintf("%s (profile %s, using %s)", NoteRegionDefaulted, profileID, fallback)
}

func styleFallbackNote(profileID, fallback string) string {
	return fmt.Sprintf("%s (profile %s, using %s)", NoteStyleDefaulted, profileID, fallback)
}

func listTags(t []string) string {
	if len(t) > maxListedTags {
		return strings.Join(t[:maxListedTags], ", ") + fmt.Sprintf(" and %d more", len(t)-maxListedTags)
	}
	return strings.Join(t, ", ")
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
