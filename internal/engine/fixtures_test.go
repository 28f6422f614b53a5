package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/imadgeboyega/kiekky-kinship/internal/activity"
	"github.com/imadgeboyega/kiekky-kinship/internal/learning"
	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
	"github.com/imadgeboyega/kiekky-kinship/internal/profile"
	"github.com/imadgeboyega/kiekky-kinship/internal/reference"
)

func newTestEngine(t testing.TB) *Engine {
	t.Helper()
	components, err := reference.Defaults().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return New(components, learning.NewLoop(), 4)
}

func members() []*profile.CulturalProfile {
	return []*profile.CulturalProfile{
		{
			ID: "amara", Region: "coastal-south", CommunicationStyle: "expressive",
			Interests: pq.StringArray{"cooking", "drumming", "football"}, AffinityCapacity: 8,
			EmotionalIndicators: pq.StringArray{"homesick"}, LanguageTier: profile.LanguageNative,
			HeritageAttachment: 8, TraditionAdherence: 7, FamilyCentrality: 8,
		},
		{
			ID: "kofi", Region: "coastal-south", CommunicationStyle: "expressive",
			Interests: pq.StringArray{"cooking", "drumming", "film"}, AffinityCapacity: 6,
			EmotionalIndicators: pq.StringArray{"homesick", "festival"}, LanguageTier: profile.LanguageFluent,
			HeritageAttachment: 7, TraditionAdherence: 8, FamilyCentrality: 7,
		},
		{
			ID: "ada", Region: "river-delta", CommunicationStyle: "diplomatic",
			Interests: pq.StringArray{"cooking", "film"}, AffinityCapacity: 5,
			LanguageTier: profile.LanguageConversational, HeritageAttachment: 6, TraditionAdherence: 6,
		},
		{
			ID: "tomas", Region: "highland-north", CommunicationStyle: "reserved",
			Interests: pq.StringArray{"chess", "hiking"}, LanguageTier: profile.LanguageBasic,
		},
	}
}

func catalog() []activity.Activity {
	return []activity.Activity{
		{ID: "drum-circle", Title: "Drum circle", InterestTags: pq.StringArray{"drumming", "music"}, Region: "coastal-south"},
		{ID: "food-fair", Title: "Food fair", InterestTags: pq.StringArray{"cooking"}, CulturalFocus: true},
		{ID: "chess-night", Title: "Chess night", InterestTags: pq.StringArray{"chess"}},
	}
}

func negativeFeedback(n int) []learning.FeedbackRecord {
	batch := make([]learning.FeedbackRecord, n)
	for i := range batch {
		batch[i] = learning.FeedbackRecord{
			ID:             fmt.Sprintf("neg-%03d", i),
			ProfileA:       "amara",
			ProfileB:       "kofi",
			Outcome:        learning.OutcomeNegative,
			PredictedScore: 70,
			SubScores: learning.SubScores{
				matching.DimAffinity:      60,
				matching.DimCommunication: 80,
				matching.DimConversation:  70,
				matching.DimInterests:     50,
			},
			ModelVersion: "baseline-v1",
			RecordedAt:   time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		}
	}
	return batch
}

type memoryProfiles struct {
	byID  map[string]*profile.CulturalProfile
	order []string
}

func newMemoryProfiles(ps []*profile.CulturalProfile) *memoryProfiles {
	m := &memoryProfiles{byID: make(map[string]*profile.CulturalProfile)}
	for _, p := range ps {
		m.byID[p.ID] = p
		m.order = append(m.order, p.ID)
	}
	return m
}

func (m *memoryProfiles) GetProfile(_ context.Context, id string) (*profile.CulturalProfile, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return p, nil
}

func (m *memoryProfiles) ListCandidates(_ context.Context, excludeID string, _ *profile.CandidateFilter) ([]*profile.CulturalProfile, error) {
	var out []*profile.CulturalProfile
	for _, id := range m.order {
		if id != excludeID {
			out = append(out, m.byID[id])
		}
	}
	return out, nil
}

type memoryActivities struct {
	items []activity.Activity
}

func (m *memoryActivities) ListUpcoming(context.Context, time.Time, int) ([]activity.Activity, error) {
	return m.items, nil
}

func (m *memoryActivities) GetActivity(_ context.Context, id string) (*activity.Activity, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, activity.ErrActivityNotFound
}

type memoryFeedback struct {
	mu        sync.Mutex
	appended  []learning.FeedbackRecord
	processed []string
}

func (m *memoryFeedback) Append(_ context.Context, records []learning.FeedbackRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appended = append(m.appended, records...)
	return nil
}

func (m *memoryFeedback) FetchPending(context.Context, int) ([]learning.FeedbackRecord, error) {
	return nil, nil
}

func (m *memoryFeedback) MarkProcessed(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed = append(m.processed, ids...)
	return nil
}

type memoryModels struct {
	mu     sync.Mutex
	status map[string]matching.Status
}

func newMemoryModels() *memoryModels {
	return &memoryModels{status: map[string]matching.Status{"baseline-v1": matching.StatusActive}}
}

func (m *memoryModels) SaveModel(_ context.Context, model *matching.CompatibilityModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[model.Version] = model.Status
	return nil
}

func (m *memoryModels) UpdateStatus(_ context.Context, version string, status matching.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.status[version]; !ok {
		return learning.ErrModelNotFound
	}
	m.status[version] = status
	return nil
}

func (m *memoryModels) GetActive(context.Context) (*matching.CompatibilityModel, error) {
	return nil, learning.ErrModelNotFound
}

func (m *memoryModels) ListByStatus(context.Context, matching.Status) ([]*matching.CompatibilityModel, error) {
	return nil, nil
}

type testStack struct {
	engine   *Engine
	service  Service
	feedback *memoryFeedback
	models   *memoryModels
	registry *learning.Registry
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	eng := newTestEngine(t)
	registry, err := learning.NewRegistry(matching.DefaultModel())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	feedback := &memoryFeedback{}
	models := newMemoryModels()
	scheduler := learning.NewScheduler(feedback, models, eng.Loop(), registry, nil, learning.SchedulerConfig{})

	svc := NewService(Dependencies{
		Engine:     eng,
		Profiles:   newMemoryProfiles(members()),
		Activities: &memoryActivities{items: catalog()},
		Feedback:   feedback,
		Models:     models,
		Registry:   registry,
		Scheduler:  scheduler,
	})
	return &testStack{engine: eng, service: svc, feedback: feedback, models: models, registry: registry}
}
