package matching

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/imadgeboyega/kiekky-kinship/internal/activity"
	"github.com/imadgeboyega/kiekky-kinship/internal/profile"
)

func activityIDs(recs []ActivityRecommendation) []string {
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.Activity.ID
	}
	return ids
}

func peerIDs(recs []PeerRecommendation) []string {
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.Profile.ID
	}
	return ids
}

func TestRecommendActivities_Ranking(t *testing.T) {
	g := NewGenerator(newTestScorer(t), 2)
	member, _ := coastalPair()

	candidates := []activity.Activity{
		{ID: "chess-night", InterestTags: []string{"chess"}, Region: "highland-north"},
		{ID: "drum-circle", InterestTags: []string{"drumming", "cooking"}, Region: "coastal-south"},
		{ID: "food-fair", InterestTags: []string{"cooking"}, Region: "river-delta", CulturalFocus: true},
		{ID: "drum-circle", InterestTags: []string{"knitting"}, Region: "diaspora"},
	}

	got, err := g.RecommendActivities(member, candidates, DefaultModel(), 10)
	if err != nil {
		t.Fatalf("RecommendActivities() error = %v", err)
	}

	if want := []string{"drum-circle", "food-fair", "chess-night"}; !reflect.DeepEqual(activityIDs(got), want) {
		t.Fatalf("order = %v, want %v", activityIDs(got), want)
	}

	// 2/3 overlap * 100 * 0.7 + same-region bonus 10
	if want := 2.0/3.0*70 + 10; math.Abs(got[0].Score-want) > scoreEpsilon {
		t.Errorf("drum-circle score = %f, want %f", got[0].Score, want)
	}
	// 1/3 overlap * 70 + adjacent bonus 5 + cultural focus 15
	if want := 1.0/3.0*70 + 5 + 15; math.Abs(got[1].Score-want) > scoreEpsilon {
		t.Errorf("food-fair score = %f, want %f", got[1].Score, want)
	}
	if got[2].Score != 0 {
		t.Errorf("chess-night score = %f, want 0", got[2].Score)
	}

	if got[0].Justifications[0] != "Shared interests: cooking, drumming" {
		t.Errorf("drum-circle reasons = %q", got[0].Justifications)
	}
	if !reflect.DeepEqual(got[1].Justifications, []string{"Shared interests: cooking", "Celebrates cultural heritage"}) {
		t.Errorf("food-fair reasons = %q", got[1].Justifications)
	}
	if !reflect.DeepEqual(got[2].Justifications, []string{communityWideReason}) {
		t.Errorf("chess-night reasons = %q", got[2].Justifications)
	}
}

func TestRecommendActivities_DefaultLimit(t *testing.T) {
	g := NewGenerator(newTestScorer(t), 1)
	member, _ := coastalPair()

	var candidates []activity.Activity
	for i := 0; i < 8; i++ {
		candidates = append(candidates, activity.Activity{ID: fmt.Sprintf("act-%d", i), InterestTags: []string{"cooking"}})
	}

	for _, limit := range []int{0, -4} {
		got, err := g.RecommendActivities(member, candidates, DefaultModel(), limit)
		if err != nil {
			t.Fatalf("RecommendActivities() error = %v", err)
		}
		if len(got) != DefaultMaxResults {
			t.Errorf("limit %d: len = %d, want %d", limit, len(got), DefaultMaxResults)
		}
	}
}

func TestRecommendActivities_TieBreaks(t *testing.T) {
	g := NewGenerator(newTestScorer(t), 1)
	member, _ := coastalPair()

	early := time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)

	candidates := []activity.Activity{
		{ID: "undated", InterestTags: []string{"cooking"}},
		{ID: "late", InterestTags: []string{"cooking"}, StartsAt: &late},
		{ID: "early", InterestTags: []string{"cooking"}, StartsAt: &early},
		{ID: "undated-2", InterestTags: []string{"cooking"}},
	}

	got, err := g.RecommendActivities(member, candidates, DefaultModel(), 10)
	if err != nil {
		t.Fatalf("RecommendActivities() error = %v", err)
	}
	if want := []string{"early", "late", "undated", "undated-2"}; !reflect.DeepEqual(activityIDs(got), want) {
		t.Errorf("order = %v, want %v", activityIDs(got), want)
	}
}

func TestRecommendActivities_RegionFallbackNote(t *testing.T) {
	g := NewGenerator(newTestScorer(t), 1)
	member, _ := coastalPair()
	member.Region = "atlantis"

	got, err := g.RecommendActivities(member, []activity.Activity{
		{ID: "meetup", InterestTags: []string{"cooking"}, Region: "diaspora"},
	}, DefaultModel(), 3)
	if err != nil {
		t.Fatalf("RecommendActivities() error = %v", err)
	}

	// a defaulted home region earns no regional bonus
	if want := 1.0 / 3.0 * 70; math.Abs(got[0].Score-want) > scoreEpsilon {
		t.Errorf("score = %f, want %f", got[0].Score, want)
	}
	last := got[0].Justifications[len(got[0].Justifications)-1]
	if want := regionFallbackNote("amara", "diaspora"); last != want {
		t.Errorf("last reason = %q, want %q", last, want)
	}
}

func TestRecommendActivities_Errors(t *testing.T) {
	g := NewGenerator(newTestScorer(t), 1)
	member, _ := coastalPair()

	if _, err := g.RecommendActivities(nil, nil, DefaultModel(), 3); !errors.Is(err, ErrMissingProfile) {
		t.Errorf("nil profile error = %v, want ErrMissingProfile", err)
	}
	bad := DefaultModel()
	bad.ActivityInterestWeight = 2
	if _, err := g.RecommendActivities(member, nil, bad, 3); !errors.Is(err, ErrInvalidModelConfiguration) {
		t.Errorf("bad model error = %v, want ErrInvalidModelConfiguration", err)
	}

	got, err := g.RecommendActivities(member, nil, DefaultModel(), 3)
	if err != nil || len(got) != 0 {
		t.Errorf("empty catalog = %v, %v; want empty list", got, err)
	}
}

func peerPool() []*profile.CulturalProfile {
	_, kofi := coastalPair()
	_, far := divergentPair()
	tomas := *far
	tomas.LanguageTier = profile.LanguageBasic

	ada := *kofi
	ada.ID = "ada"
	ada.Interests = []string{"cooking", "drumming", "football"}

	yaw := *kofi
	yaw.ID = "yaw"
	yaw.Region = "river-delta"

	return []*profile.CulturalProfile{kofi, &tomas, &ada, &yaw}
}

func TestRecommendPeers(t *testing.T) {
	for _, workers := range []int{1, 3, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			g := NewGenerator(newTestScorer(t), workers)
			member, _ := coastalPair()

			got, err := g.RecommendPeers(member, peerPool(), DefaultModel(), 10)
			if err != nil {
				t.Fatalf("RecommendPeers() error = %v", err)
			}

			// tomas scores below min_score; ada shares every interest
			if want := []string{"ada", "kofi", "yaw"}; !reflect.DeepEqual(peerIDs(got), want) {
				t.Fatalf("order = %v, want %v", peerIDs(got), want)
			}
			for i := 1; i < len(got); i++ {
				if got[i].Result.Score > got[i-1].Result.Score {
					t.Errorf("results not sorted by score at %d", i)
				}
			}
			for _, r := range got {
				if r.Result.ProfileA != member.ID || r.Result.ProfileB != r.Profile.ID {
					t.Errorf("result pairs %s/%s for candidate %s", r.Result.ProfileA, r.Result.ProfileB, r.Profile.ID)
				}
			}
		})
	}
}

func TestRecommendPeers_SkipsSelfNilAndDuplicates(t *testing.T) {
	g := NewGenerator(newTestScorer(t), 2)
	member, kofi := coastalPair()

	self := *member
	pool := []*profile.CulturalProfile{nil, &self, kofi, kofi}

	got, err := g.RecommendPeers(member, pool, DefaultModel(), 5)
	if err != nil {
		t.Fatalf("RecommendPeers() error = %v", err)
	}
	if want := []string{"kofi"}; !reflect.DeepEqual(peerIDs(got), want) {
		t.Errorf("peers = %v, want %v", peerIDs(got), want)
	}
}

func TestRecommendPeers_Limit(t *testing.T) {
	g := NewGenerator(newTestScorer(t), 4)
	member, kofi := coastalPair()

	var pool []*profile.CulturalProfile
	for i := 0; i < 10; i++ {
		p := *kofi
		p.ID = fmt.Sprintf("peer-%02d", i)
		pool = append(pool, &p)
	}

	got, err := g.RecommendPeers(member, pool, DefaultModel(), 0)
	if err != nil {
		t.Fatalf("RecommendPeers() error = %v", err)
	}
	// identical scores keep pool order
	if want := []string{"peer-00", "peer-01", "peer-02"}; !reflect.DeepEqual(peerIDs(got), want) {
		t.Errorf("peers = %v, want %v", peerIDs(got), want)
	}
}

func TestRecommendPeers_EmptyPool(t *testing.T) {
	g := NewGenerator(newTestScorer(t), 2)
	member, _ := coastalPair()

	got, err := g.RecommendPeers(member, nil, DefaultModel(), 3)
	if err != nil {
		t.Fatalf("RecommendPeers() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil list", got)
	}
}

func TestRecommendPeers_AllBelowMinimum(t *testing.T) {
	g := NewGenerator(newTestScorer(t), 2)
	member, tomas := divergentPair()

	got, err := g.RecommendPeers(member, []*profile.CulturalProfile{tomas}, DefaultModel(), 3)
	if err != nil {
		t.Fatalf("RecommendPeers() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d peers, want none", len(got))
	}
}

func TestRecommendPeers_Errors(t *testing.T) {
	g := NewGenerator(newTestScorer(t), 2)
	member, _ := coastalPair()

	if _, err := g.RecommendPeers(nil, peerPool(), DefaultModel(), 3); !errors.Is(err, ErrMissingProfile) {
		t.Errorf("nil profile error = %v", err)
	}
	if _, err := g.RecommendPeers(member, peerPool(), &CompatibilityModel{}, 3); !errors.Is(err, ErrInvalidModelConfiguration) {
		t.Errorf("empty model error = %v", err)
	}
}
