package learning

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
)

type memoryFeedbackStore struct {
	pending   []FeedbackRecord
	processed []string
}

func (m *memoryFeedbackStore) Append(_ context.Context, records []FeedbackRecord) error {
	m.pending = append(m.pending, records...)
	return nil
}

func (m *memoryFeedbackStore) FetchPending(_ context.Context, limit int) ([]FeedbackRecord, error) {
	if limit > len(m.pending) {
		limit = len(m.pending)
	}
	return append([]FeedbackRecord(nil), m.pending[:limit]...), nil
}

func (m *memoryFeedbackStore) MarkProcessed(_ context.Context, ids []string) error {
	m.processed = append(m.processed, ids...)
	m.pending = m.pending[len(ids):]
	return nil
}

type memoryModelStore struct {
	saved   []*matching.CompatibilityModel
	saveErr error
}

func (m *memoryModelStore) SaveModel(_ context.Context, model *matching.CompatibilityModel) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, model)
	return nil
}

func (m *memoryModelStore) UpdateStatus(context.Context, string, matching.Status) error { return nil }

func (m *memoryModelStore) GetActive(context.Context) (*matching.CompatibilityModel, error) {
	return nil, ErrModelNotFound
}

func (m *memoryModelStore) ListByStatus(context.Context, matching.Status) ([]*matching.CompatibilityModel, error) {
	return nil, nil
}

type recordingNotifier struct {
	drafts []string
	err    error
}

func (n *recordingNotifier) NotifyDraft(_ context.Context, draft *matching.CompatibilityModel, _ []string) error {
	n.drafts = append(n.drafts, draft.Version)
	return n.err
}

func TestScheduler_RunOnce(t *testing.T) {
	store := &memoryFeedbackStore{}
	for i, r := range negatives(120, 70) {
		r.ID = fmt.Sprintf("fb-%03d", i)
		store.pending = append(store.pending, r)
	}

	registry, err := NewRegistry(matching.DefaultModel())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	models := &memoryModelStore{}
	notifier := &recordingNotifier{err: errors.New("smtp down")}

	s := NewScheduler(store, models, NewLoop(), registry, notifier, SchedulerConfig{BatchSize: 50})

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	if len(store.processed) != 50 || len(store.pending) != 70 {
		t.Errorf("processed %d, pending %d; want 50 and 70", len(store.processed), len(store.pending))
	}
	drafts := registry.Drafts()
	if len(drafts) != 1 {
		t.Fatalf("drafts = %d, want 1", len(drafts))
	}
	if len(models.saved) != 1 || models.saved[0].Version != drafts[0].Version {
		t.Errorf("persisted drafts = %v", models.saved)
	}
	if len(notifier.drafts) != 1 {
		t.Errorf("notified %d drafts, want 1", len(notifier.drafts))
	}
	if registry.Active().Version != "baseline-v1" {
		t.Error("scheduler must never activate a draft")
	}
}

func TestScheduler_NothingPending(t *testing.T) {
	registry, err := NewRegistry(matching.DefaultModel())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	s := NewScheduler(&memoryFeedbackStore{}, nil, NewLoop(), registry, nil, SchedulerConfig{})

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if len(registry.Drafts()) != 0 {
		t.Error("no feedback should yield no draft")
	}
}

func TestScheduler_ProposeDraftKeepsEvidenceOnSaveFailure(t *testing.T) {
	registry, err := NewRegistry(matching.DefaultModel())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	models := &memoryModelStore{saveErr: errors.New("connection reset")}
	notifier := &recordingNotifier{}
	loop := NewLoop()
	loop.IngestFeedback(negatives(100, 70))

	s := NewScheduler(&memoryFeedbackStore{}, models, loop, registry, notifier, SchedulerConfig{})

	draft, _, err := s.ProposeDraft(context.Background())
	if err == nil || !errors.Is(err, models.saveErr) {
		t.Fatalf("ProposeDraft() error = %v, want the save failure", err)
	}
	if draft != nil {
		t.Errorf("draft = %s, want nil when it could not be filed", draft.Version)
	}
	if got := loop.State().Samples; got != 100 {
		t.Errorf("loop samples = %d after failed filing, want 100", got)
	}
	if len(registry.Drafts()) != 0 || len(notifier.drafts) != 0 {
		t.Errorf("unfiled draft leaked: %d registered, %d notified", len(registry.Drafts()), len(notifier.drafts))
	}

	// the next attempt files a draft from the same evidence
	models.saveErr = nil
	draft, triggers, err := s.ProposeDraft(context.Background())
	if err != nil {
		t.Fatalf("ProposeDraft() retry error = %v", err)
	}
	if draft == nil || len(triggers) == 0 {
		t.Fatal("expected a draft on retry")
	}
	if len(models.saved) != 1 || len(registry.Drafts()) != 1 || len(notifier.drafts) != 1 {
		t.Errorf("saved %d, registered %d, notified %d; want 1 each",
			len(models.saved), len(registry.Drafts()), len(notifier.drafts))
	}
	if got := loop.State().Samples; got != 0 {
		t.Errorf("loop samples = %d after filing, want 0", got)
	}
}
