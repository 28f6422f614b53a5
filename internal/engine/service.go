// internal/engine/service.go

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/imadgeboyega/kiekky-kinship/internal/activity"
	"github.com/imadgeboyega/kiekky-kinship/internal/learning"
	"github.com/imadgeboyega/kiekky-kinship/internal/logging"
	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
	"github.com/imadgeboyega/kiekky-kinship/internal/profile"
	"github.com/imadgeboyega/kiekky-kinship/internal/region"
)

var ErrSchedulerUnavailable = errors.New("model proposals are not configured")

// Service resolves IDs through the adapters and runs the engine against
// the registry's active model
type Service interface {
	Score(ctx context.Context, profileA, profileB string) (*matching.MatchResult, error)
	RecommendPeers(ctx context.Context, profileID string, limit int) ([]matching.PeerRecommendation, error)
	RecommendActivities(ctx context.Context, profileID string, limit int) ([]matching.ActivityRecommendation, error)
	ActivityFit(ctx context.Context, profileID, activityID string) (*matching.ActivityRecommendation, error)

	SubmitFeedback(ctx context.Context, records []learning.FeedbackRecord) (*FeedbackReceipt, error)
	ProposeModel(ctx context.Context) (*ProposalResponse, error)
	ActivateModel(ctx context.Context, version, expectedActive string) (*matching.CompatibilityModel, error)
	ActiveModel() *matching.CompatibilityModel
	Drafts() []*matching.CompatibilityModel

	Regions() []region.Profile
	ReferenceVersion() string
}

// Dependencies wires a Service. Feedback, Models and Scheduler may be nil.
type Dependencies struct {
	Engine     *Engine
	Profiles   profile.Repository
	Activities activity.Repository
	Feedback   learning.FeedbackStore
	Models     learning.ModelStore
	Registry   *learning.Registry
	Scheduler  *learning.Scheduler

	CandidateLimit int
	ActivityLimit  int
}

type service struct {
	engine     *Engine
	profiles   profile.Repository
	activities activity.Repository
	feedback   learning.FeedbackStore
	models     learning.ModelStore
	registry   *learning.Registry
	scheduler  *learning.Scheduler

	candidateLimit int
	activityLimit  int
	now            func() time.Time
	logger         zerolog.Logger
}

// NewService creates a new engine service
func NewService(deps Dependencies) Service {
	if deps.CandidateLimit <= 0 {
		deps.CandidateLimit = 200
	}
	if deps.ActivityLimit <= 0 {
		deps.ActivityLimit = 100
	}
	return &service{
		engine:         deps.Engine,
		profiles:       deps.Profiles,
		activities:     deps.Activities,
		feedback:       deps.Feedback,
		models:         deps.Models,
		registry:       deps.Registry,
		scheduler:      deps.Scheduler,
		candidateLimit: deps.CandidateLimit,
		activityLimit:  deps.ActivityLimit,
		now:            time.Now,
		logger:         logging.With().Str("component", "engine_service").Logger(),
	}
}

func (s *service) Score(ctx context.Context, profileA, profileB string) (*matching.MatchResult, error) {
	a, err := s.profiles.GetProfile(ctx, profileA)
	if err != nil {
		return nil, err
	}
	b, err := s.profiles.GetProfile(ctx, profileB)
	if err != nil {
		return nil, err
	}
	return s.engine.Score(a, b, s.registry.Active())
}

func (s *service) RecommendPeers(ctx context.Context, profileID string, limit int) ([]matching.PeerRecommendation, error) {
	p, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	pool, err := s.profiles.ListCandidates(ctx, profileID, &profile.CandidateFilter{Limit: s.candidateLimit})
	if err != nil {
		return nil, err
	}
	return s.engine.RecommendPeers(p, pool, s.registry.Active(), limit)
}

func (s *service) RecommendActivities(ctx context.Context, profileID string, limit int) ([]matching.ActivityRecommendation, error) {
	p, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.activities.ListUpcoming(ctx, s.now(), s.activityLimit)
	if err != nil {
		return nil, err
	}
	return s.engine.RecommendActivities(p, catalog, s.registry.Active(), limit)
}

// ActivityFit ranks a single catalog entry for one member
func (s *service) ActivityFit(ctx context.Context, profileID, activityID string) (*matching.ActivityRecommendation, error) {
	p, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	a, err := s.activities.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	recs, err := s.engine.RecommendActivities(p, []activity.Activity{*a}, s.registry.Active(), 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, activity.ErrActivityNotFound
	}
	return &recs[0], nil
}

// SubmitFeedback persists the valid records, folds them into the loop and
// marks them processed so the drain scheduler does not count them twice
func (s *service) SubmitFeedback(ctx context.Context, records []learning.FeedbackRecord) (*FeedbackReceipt, error) {
	receipt := &FeedbackReceipt{Accepted: make([]string, 0, len(records))}
	valid := make([]learning.FeedbackRecord, 0, len(records))

	for i := range records {
		r := records[i]
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.RecordedAt.IsZero() {
			r.RecordedAt = s.now().UTC()
		}
		if err := r.Validate(); err != nil {
			if receipt.Rejected == nil {
				receipt.Rejected = make(map[string]string)
			}
			receipt.Rejected[r.ID] = err.Error()
			continue
		}
		valid = append(valid, r)
		receipt.Accepted = append(receipt.Accepted, r.ID)
	}

	if len(valid) == 0 {
		receipt.Samples = s.engine.Loop().State().Samples
		return receipt, nil
	}

	if s.feedback != nil {
		if err := s.feedback.Append(ctx, valid); err != nil {
			return nil, err
		}
	}

	st := s.engine.IngestFeedback(valid)
	receipt.Samples = st.Samples

	if s.feedback != nil {
		if err := s.feedback.MarkProcessed(ctx, receipt.Accepted); err != nil {
			s.logger.Error().Err(err).Int("records", len(valid)).Msg("failed to mark ingested feedback processed")
		}
	}
	return receipt, nil
}

func (s *service) ProposeModel(ctx context.Context) (*ProposalResponse, error) {
	if s.scheduler == nil {
		return nil, ErrSchedulerUnavailable
	}
	before := s.engine.Loop().State()
	draft, triggers, err := s.scheduler.ProposeDraft(ctx)
	if err != nil {
		return nil, err
	}
	return &ProposalResponse{
		Draft:    draft,
		Triggers: triggers,
		State:    summarize(before),
	}, nil
}

// ActivateModel promotes a draft and mirrors the transition into the model store
func (s *service) ActivateModel(ctx context.Context, version, expectedActive string) (*matching.CompatibilityModel, error) {
	promoted, err := s.registry.Activate(expectedActive, version)
	if err != nil {
		return nil, err
	}

	if s.models != nil {
		if err := s.models.UpdateStatus(ctx, promoted.Version, matching.StatusActive); err != nil {
			return promoted, fmt.Errorf("activated %s but failed to persist: %w", promoted.Version, err)
		}
		if err := s.models.UpdateStatus(ctx, expectedActive, matching.StatusRetired); err != nil {
			return promoted, fmt.Errorf("activated %s but failed to retire %s: %w", promoted.Version, expectedActive, err)
		}
	}
	return promoted, nil
}

func (s *service) ActiveModel() *matching.CompatibilityModel {
	return s.registry.Active()
}

func (s *service) Drafts() []*matching.CompatibilityModel {
	return s.registry.Drafts()
}

func (s *service) Regions() []region.Profile {
	kb := s.engine.Regions()
	tags := kb.List()
	out := make([]region.Profile, 0, len(tags))
	for _, tag := range tags {
		if p, err := kb.Get(tag); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func (s *service) ReferenceVersion() string {
	return s.engine.ReferenceVersion()
}
