// Package engine exposes the compatibility engine's five operations over
// in-memory inputs, and an ID-based service plus HTTP surface around them.
package engine

import (
	"time"

	"github.com/imadgeboyega/kiekky-kinship/internal/activity"
	"github.com/imadgeboyega/kiekky-kinship/internal/learning"
	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
	"github.com/imadgeboyega/kiekky-kinship/internal/profile"
	"github.com/imadgeboyega/kiekky-kinship/internal/reference"
	"github.com/imadgeboyega/kiekky-kinship/internal/region"
)

// Engine is the library facade. Scoring and recommendation never perform
// I/O; the only mutable state is the learning loop.
type Engine struct {
	scorer    *matching.Scorer
	generator *matching.Generator
	loop      *learning.Loop
	version   string
	now       func() time.Time
}

// New builds an engine over loaded reference components. workers bounds
// parallel peer scoring; zero means one per CPU.
func New(c *reference.Components, loop *learning.Loop, workers int) *Engine {
	if loop == nil {
		loop = learning.NewLoop()
	}
	scorer := matching.NewScorer(c.Regions, c.Affinity, c.Matrix, c.Estimator)
	return &Engine{
		scorer:    scorer,
		generator: matching.NewGenerator(scorer, workers),
		loop:      loop,
		version:   c.Version,
		now:       time.Now,
	}
}

func (e *Engine) Score(a, b *profile.CulturalProfile, model *matching.CompatibilityModel) (*matching.MatchResult, error) {
	start := e.now()
	res, err := e.scorer.Score(a, b, model)
	matching.RecordDuration("score", time.Since(start))
	if err != nil {
		return nil, err
	}
	matching.RecordMatch(res)
	return res, nil
}

func (e *Engine) RecommendActivities(p *profile.CulturalProfile, candidates []activity.Activity, model *matching.CompatibilityModel, maxResults int) ([]matching.ActivityRecommendation, error) {
	start := e.now()
	recs, err := e.generator.RecommendActivities(p, candidates, model, maxResults)
	matching.RecordDuration("recommend_activities", time.Since(start))
	if err != nil {
		return nil, err
	}
	matching.RecordRecommendations("activity", len(recs))
	return recs, nil
}

func (e *Engine) RecommendPeers(p *profile.CulturalProfile, pool []*profile.CulturalProfile, model *matching.CompatibilityModel, maxResults int) ([]matching.PeerRecommendation, error) {
	start := e.now()
	recs, err := e.generator.RecommendPeers(p, pool, model, maxResults)
	matching.RecordDuration("recommend_peers", time.Since(start))
	if err != nil {
		return nil, err
	}
	matching.RecordRecommendations("peer", len(recs))
	return recs, nil
}

// IngestFeedback folds a batch into the loop and returns the updated state
func (e *Engine) IngestFeedback(batch []learning.FeedbackRecord) learning.State {
	return e.loop.IngestFeedback(batch)
}

// ProposeModelUpdate evaluates state against current without touching the
// loop. It returns a nil draft when no trigger fires.
func (e *Engine) ProposeModelUpdate(current *matching.CompatibilityModel, state learning.State) (*matching.CompatibilityModel, []string, error) {
	return learning.Propose(current, state, e.now())
}

// Loop returns the shared learning loop
func (e *Engine) Loop() *learning.Loop {
	return e.loop
}

// Regions returns the loaded regional knowledge base
func (e *Engine) Regions() *region.KnowledgeBase {
	return e.scorer.Regions()
}

// ReferenceVersion is the version of the loaded reference artifact
func (e *Engine) ReferenceVersion() string {
	return e.version
}
