// internal/learning/scheduler.go

package learning

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/imadgeboyega/kiekky-kinship/internal/logging"
	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
)

// DraftNotifier tells reviewers a draft is waiting for activation
type DraftNotifier interface {
	NotifyDraft(ctx context.Context, draft *matching.CompatibilityModel, triggers []string) error
}

// SchedulerConfig controls the feedback drain
type SchedulerConfig struct {
	Interval   time.Duration
	BatchSize  int
	TimeBudget time.Duration
}

// Scheduler periodically drains stored feedback into the loop and files any
// resulting draft for review. It never activates a model.
type Scheduler struct {
	store    FeedbackStore
	models   ModelStore
	loop     *Loop
	registry *Registry
	notifier DraftNotifier
	cfg      SchedulerConfig
	stopCh   chan struct{}
	logger   zerolog.Logger
}

// NewScheduler creates a new learning scheduler. models and notifier may be nil.
func NewScheduler(store FeedbackStore, models ModelStore, loop *Loop, registry *Registry, notifier DraftNotifier, cfg SchedulerConfig) *Scheduler {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}

	return &Scheduler{
		store:    store,
		models:   models,
		loop:     loop,
		registry: registry,
		notifier: notifier,
		cfg:      cfg,
		stopCh:   make(chan struct{}),
		logger:   logging.With().Str("component", "learning_scheduler").Logger(),
	}
}

// Start runs the drain loop until ctx is cancelled or Stop is called
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info().Dur("interval", s.cfg.Interval).Msg("Starting learning scheduler")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("learning cycle failed")
			}
		case <-s.stopCh:
			s.logger.Info().Msg("Stopping learning scheduler")
			return
		case <-ctx.Done():
			s.logger.Info().Msg("Context cancelled, stopping learning scheduler")
			return
		}
	}
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopCh)
}

// RunOnce drains one batch of pending feedback, then proposes a draft if
// the accumulated state warrants one
func (s *Scheduler) RunOnce(ctx context.Context) error {
	batch, err := s.store.FetchPending(ctx, s.cfg.BatchSize)
	if err != nil {
		return err
	}

	if len(batch) > 0 {
		cut := Cutoff{MaxRecords: s.cfg.BatchSize}
		if s.cfg.TimeBudget > 0 {
			cut.Deadline = time.Now().Add(s.cfg.TimeBudget)
		}
		_, report := s.loop.Ingest(batch, cut)

		processed := len(batch) - report.Remaining
		ids := make([]string, 0, processed)
		for _, r := range batch[:processed] {
			ids = append(ids, r.ID)
		}
		if err := s.store.MarkProcessed(ctx, ids); err != nil {
			return err
		}

		s.logger.Debug().
			Int("accepted", report.Accepted).
			Int("skipped", report.Skipped).
			Int("remaining", report.Remaining).
			Msg("feedback drained")
	}

	_, _, err = s.ProposeDraft(ctx)
	return err
}

// ProposeDraft proposes from the loop's current state against the active
// model, then persists, registers and announces the draft. A nil draft
// means no trigger fired. The loop keeps its evidence unless the draft
// was both persisted and registered.
func (s *Scheduler) ProposeDraft(ctx context.Context) (*matching.CompatibilityModel, []string, error) {
	draft, triggers, err := s.loop.ProposeAndCommit(s.registry.Active(), func(d *matching.CompatibilityModel, _ []string) error {
		if s.models != nil {
			if err := s.models.SaveModel(ctx, d); err != nil {
				return fmt.Errorf("failed to persist draft: %w", err)
			}
		}
		if err := s.registry.Submit(d); err != nil {
			return fmt.Errorf("failed to register draft: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to propose model update: %w", err)
	}
	if draft == nil {
		return nil, nil, nil
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyDraft(ctx, draft, triggers); err != nil {
			// the draft is already filed; reviewers can still find it via the API
			s.logger.Error().Err(err).Str("draft_version", draft.Version).Msg("failed to notify reviewers")
		}
	}
	return draft, triggers, nil
}
