// internal/matching/recommendations.go

package matching

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/imadgeboyega/kiekky-kinship/internal/activity"
	"github.com/imadgeboyega/kiekky-kinship/internal/common/tags"
	"github.com/imadgeboyega/kiekky-kinship/internal/profile"
	"github.com/imadgeboyega/kiekky-kinship/internal/region"
)

// DefaultMaxResults applies when the caller passes a non-positive maximum
const DefaultMaxResults = 3

const dimCulturalFocus Dimension = "cultural_focus"

const communityWideReason = "Open to the whole community"

// ActivityRecommendation is one ranked catalog entry
type ActivityRecommendation struct {
	Activity        activity.Activity `json:"activity"`
	Score           float64           `json:"score"`
	InterestOverlap float64           `json:"interest_overlap"`
	Justifications  []string          `json:"justifications"`
}

// PeerRecommendation is one ranked candidate member
type PeerRecommendation struct {
	Profile *profile.CulturalProfile `json:"profile"`
	Result  *MatchResult             `json:"result"`
}

// Generator ranks peers and activities. It is pure given its inputs.
type Generator struct {
	scorer  *Scorer
	workers int
}

// NewGenerator creates a generator that scores peer pools with up to workers goroutines
func NewGenerator(scorer *Scorer, workers int) *Generator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Generator{scorer: scorer, workers: workers}
}

// RecommendActivities ranks candidates for p by interest overlap, regional
// alignment and cultural focus. Duplicate activity IDs keep their first entry.
func (g *Generator) RecommendActivities(p *profile.CulturalProfile, candidates []activity.Activity, model *CompatibilityModel, maxResults int) ([]ActivityRecommendation, error) {
	if p == nil {
		return nil, ErrMissingProfile
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	kb := g.scorer.regions
	home, fellBack := kb.Resolve(p.Region)
	interests := tags.NewSet(p.Interests)

	type ranked struct {
		rec   ActivityRecommendation
		index int
	}

	seen := make(map[string]bool, len(candidates))
	items := make([]ranked, 0, len(candidates))
	for i, act := range candidates {
		if seen[act.ID] {
			continue
		}
		seen[act.ID] = true

		actTags := tags.NewSet(act.InterestTags)
		overlap, _ := tags.Jaccard(interests, actTags)

		relation := region.Distant
		if !fellBack {
			relation = kb.Relation(home.Tag, act.Region)
		}

		contribs := []contribution{
			{dimension: DimInterests, points: overlap * 100 * model.ActivityInterestWeight},
			{dimension: DimRegionalBonus, points: regionalBonus(relation, model)},
		}
		if act.CulturalFocus {
			contribs = append(contribs, contribution{dimension: dimCulturalFocus, points: model.CulturalFocusBonus})
		}

		var composite float64
		for _, c := range contribs {
			composite += c.points
		}

		facts := reasonFacts{
			regionA:         home.Tag,
			regionB:         region.Normalize(act.Region),
			relation:        relation,
			sharedInterests: tags.Intersection(interests, actTags),
		}
		reasons := buildReasons(contribs, model.NotableContribution, facts)
		if len(reasons) == 0 {
			if top := topReason(contribs, facts); top != "" {
				reasons = append(reasons, top)
			} else {
				reasons = append(reasons, communityWideReason)
			}
		}
		if fellBack {
			reasons = append(reasons, regionFallbackNote(p.ID, home.Tag))
		}

		items = append(items, ranked{
			rec: ActivityRecommendation{
				Activity:        act,
				Score:           clampScore(composite),
				InterestOverlap: overlap,
				Justifications:  reasons,
			},
			index: i,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].rec, items[j].rec
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.InterestOverlap != b.InterestOverlap {
			return a.InterestOverlap > b.InterestOverlap
		}
		if ta, tb := a.Activity.StartsAt, b.Activity.StartsAt; ta != nil || tb != nil {
			switch {
			case ta == nil:
				return false
			case tb == nil:
				return true
			case !ta.Equal(*tb):
				return ta.Before(*tb)
			}
		}
		return items[i].index < items[j].index
	})

	n := len(items)
	if n > maxResults {
		n = maxResults
	}
	out := make([]ActivityRecommendation, n)
	for i := 0; i < n; i++ {
		out[i] = items[i].rec
	}
	return out, nil
}

// RecommendPeers scores every candidate against p in parallel, drops those
// below the model's minimum score, and returns the best maxResults.
// An empty pool yields an empty list.
func (g *Generator) RecommendPeers(p *profile.CulturalProfile, pool []*profile.CulturalProfile, model *CompatibilityModel, maxResults int) ([]PeerRecommendation, error) {
	if p == nil {
		return nil, ErrMissingProfile
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	seen := map[string]bool{p.ID: true}
	candidates := make([]*profile.CulturalProfile, 0, len(pool))
	for _, c := range pool {
		if c == nil || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return []PeerRecommendation{}, nil
	}

	results := make([]*MatchResult, len(candidates))
	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for i, c := range candidates {
		eg.Go(func() error {
			results[i] = g.scorer.score(p, c, model)
			return nil
		})
	}
	_ = eg.Wait()

	order := make([]int, 0, len(candidates))
	for i, r := range results {
		if r.Score >= model.MinScore {
			order = append(order, i)
		}
	}

	sort.SliceStable(order, func(x, y int) bool {
		a, b := results[order[x]], results[order[y]]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.SubScores[DimInterests] > b.SubScores[DimInterests]
	})

	if len(order) > maxResults {
		order = order[:maxResults]
	}
	out := make([]PeerRecommendation, len(order))
	for i, idx := range order {
		out[i] = PeerRecommendation{Profile: candidates[idx], Result: results[idx]}
	}
	return out, nil
}
