// internal/learning/registry.go

package learning

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/imadgeboyega/kiekky-kinship/internal/logging"
	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
)

// Registry holds the single active model plus pending drafts and retired
// versions. Reads of the active model are lock-free; activation is a
// compare-and-swap on the active version.
type Registry struct {
	active  atomic.Pointer[matching.CompatibilityModel]
	mu      sync.Mutex
	drafts  map[string]*matching.CompatibilityModel
	retired map[string]*matching.CompatibilityModel
	logger  zerolog.Logger
}

// NewRegistry creates a registry with initial as the active model
func NewRegistry(initial *matching.CompatibilityModel) (*Registry, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	m := initial.Clone()
	m.Status = matching.StatusActive

	r := &Registry{
		drafts:  make(map[string]*matching.CompatibilityModel),
		retired: make(map[string]*matching.CompatibilityModel),
		logger:  logging.With().Str("component", "model_registry").Logger(),
	}
	r.active.Store(m)
	return r, nil
}

// Active returns the active model. Callers must not modify it.
func (r *Registry) Active() *matching.CompatibilityModel {
	return r.active.Load()
}

// Submit stores a draft for later review
func (r *Registry) Submit(draft *matching.CompatibilityModel) error {
	if draft == nil {
		return fmt.Errorf("%w: nil draft", ErrModelNotFound)
	}
	if draft.Status != matching.StatusDraft {
		return fmt.Errorf("%w: %s has status %s", ErrNotDraft, draft.Version, draft.Status)
	}
	if err := draft.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drafts[draft.Version]; exists || r.active.Load().Version == draft.Version {
		return fmt.Errorf("%w: version %s already registered", ErrVersionConflict, draft.Version)
	}
	r.drafts[draft.Version] = draft.Clone()
	return nil
}

// Drafts returns pending drafts, oldest first
func (r *Registry) Drafts() []*matching.CompatibilityModel {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*matching.CompatibilityModel, 0, len(r.drafts))
	for _, d := range r.drafts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Version < out[j].Version
	})
	return out
}

// Get looks a version up among the active, draft and retired models
func (r *Registry) Get(version string) (*matching.CompatibilityModel, error) {
	if a := r.active.Load(); a.Version == version {
		return a, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.drafts[version]; ok {
		return d, nil
	}
	if m, ok := r.retired[version]; ok {
		return m, nil
	}
	return nil, ErrModelNotFound
}

// Activate promotes draftVersion if the active model is still
// expectedActiveVersion. The previous active model is retired.
func (r *Registry) Activate(expectedActiveVersion, draftVersion string) (*matching.CompatibilityModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.active.Load()
	if current.Version != expectedActiveVersion {
		return nil, fmt.Errorf("%w: expected %s, active is %s", ErrVersionConflict, expectedActiveVersion, current.Version)
	}

	draft, ok := r.drafts[draftVersion]
	if !ok {
		return nil, fmt.Errorf("%w: draft %s", ErrModelNotFound, draftVersion)
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	promoted := draft.Clone()
	promoted.Status = matching.StatusActive
	if !r.active.CompareAndSwap(current, promoted) {
		return nil, fmt.Errorf("%w: active model changed during activation", ErrVersionConflict)
	}

	retired := current.Clone()
	retired.Status = matching.StatusRetired
	r.retired[retired.Version] = retired
	delete(r.drafts, draftVersion)

	modelActivations.Inc()
	r.logger.Info().
		Str("version", promoted.Version).
		Str("retired", retired.Version).
		Float64("baseline_accuracy", promoted.Baseline.Accuracy).
		Float64("baseline_satisfaction", promoted.Baseline.Satisfaction).
		Msg("model activated")

	return promoted, nil
}
