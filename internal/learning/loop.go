// internal/learning/loop.go

package learning

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/imadgeboyega/kiekky-kinship/internal/logging"
	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
)

// Cutoff bounds one ingestion pass. Zero values mean no limit.
type Cutoff struct {
	MaxRecords int
	Deadline   time.Time
}

// IngestReport summarizes one ingestion pass
type IngestReport struct {
	Accepted  int `json:"accepted"`
	Skipped   int `json:"skipped"`
	Remaining int `json:"remaining"`
}

// Loop accumulates feedback and proposes model updates.
// It is the single writer of its State.
type Loop struct {
	mu     sync.Mutex
	state  State
	now    func() time.Time
	logger zerolog.Logger
}

// NewLoop creates a loop with empty state
func NewLoop() *Loop {
	return &Loop{
		now:    time.Now,
		logger: logging.With().Str("component", "learning_loop").Logger(),
	}
}

// Ingest folds batch into the state, stopping early at the cutoff. Invalid
// records are skipped and counted; records past the cutoff stay unprocessed
// and are reported as Remaining.
func (l *Loop) Ingest(batch []FeedbackRecord, cut Cutoff) (State, IngestReport) {
	var delta State
	var report IngestReport

	processed := 0
	for i := range batch {
		if cut.MaxRecords > 0 && processed >= cut.MaxRecords {
			break
		}
		if !cut.Deadline.IsZero() && !l.now().Before(cut.Deadline) {
			break
		}
		processed++

		rec := &batch[i]
		if err := rec.Validate(); err != nil {
			report.Skipped++
			l.logger.Warn().Err(err).Str("feedback_id", rec.ID).Msg("skipping invalid feedback record")
			continue
		}
		delta = delta.Merge(observe(rec))
		report.Accepted++
	}
	report.Remaining = len(batch) - processed

	l.mu.Lock()
	l.state = l.state.Merge(delta)
	st := l.state
	l.mu.Unlock()

	recordIngest(report, st)
	return st, report
}

// IngestFeedback folds the whole batch into the state
func (l *Loop) IngestFeedback(batch []FeedbackRecord) State {
	st, _ := l.Ingest(batch, Cutoff{})
	return st
}

// State returns a snapshot of the accumulated evidence
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// CommitFunc files a proposed draft somewhere durable
type CommitFunc func(draft *matching.CompatibilityModel, triggers []string) error

// ProposeModelUpdate proposes a draft from the accumulated state. The state
// resets only when a draft is returned, so evidence keeps building otherwise.
func (l *Loop) ProposeModelUpdate(current *matching.CompatibilityModel) (*matching.CompatibilityModel, []string, error) {
	return l.ProposeAndCommit(current, nil)
}

// ProposeAndCommit proposes a draft and hands it to commit before resetting
// the state. When commit fails no draft is returned and the accumulated
// evidence is kept for the next attempt. Ingestion waits while commit runs.
func (l *Loop) ProposeAndCommit(current *matching.CompatibilityModel, commit CommitFunc) (*matching.CompatibilityModel, []string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	draft, triggers, err := Propose(current, l.state, l.now())
	if err != nil || draft == nil {
		return nil, triggers, err
	}

	if commit != nil {
		if err := commit(draft, triggers); err != nil {
			l.logger.Warn().
				Err(err).
				Str("draft_version", draft.Version).
				Int64("samples", l.state.Samples).
				Msg("draft not filed, keeping accumulated feedback")
			return nil, triggers, err
		}
	}

	l.logger.Info().
		Str("draft_version", draft.Version).
		Str("parent_version", draft.ParentVersion).
		Strs("triggers", triggers).
		Int64("samples", l.state.Samples).
		Msg("model update proposed")

	recordDraft(triggers)
	l.state = State{}
	recordState(l.state)
	return draft, triggers, nil
}
