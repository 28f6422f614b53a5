package learning

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
)

func newDraft(t *testing.T, parent *matching.CompatibilityModel) *matching.CompatibilityModel {
	t.Helper()
	var st State
	for _, r := range negatives(100, 70) {
		r := r
		st = st.Merge(observe(&r))
	}
	draft, _, err := Propose(parent, st, time.Now())
	if err != nil || draft == nil {
		t.Fatalf("Propose() = %v, %v", draft, err)
	}
	return draft
}

func TestRegistry_ActivateCAS(t *testing.T) {
	r, err := NewRegistry(matching.DefaultModel())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	base := r.Active()
	draft := newDraft(t, base)

	if err := r.Submit(draft); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if r.Active().Version != base.Version {
		t.Fatal("submitting a draft must not change the active model")
	}
	if got := r.Drafts(); len(got) != 1 || got[0].Version != draft.Version {
		t.Fatalf("Drafts() = %v", got)
	}

	if _, err := r.Activate("stale-version", draft.Version); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("Activate(stale) error = %v, want ErrVersionConflict", err)
	}
	if _, err := r.Activate(base.Version, "missing"); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Activate(missing) error = %v, want ErrModelNotFound", err)
	}

	promoted, err := r.Activate(base.Version, draft.Version)
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if promoted.Status != matching.StatusActive || r.Active().Version != draft.Version {
		t.Errorf("active = %s (%s), want %s", r.Active().Version, promoted.Status, draft.Version)
	}
	if len(r.Drafts()) != 0 {
		t.Error("activated draft still listed")
	}

	old, err := r.Get(base.Version)
	if err != nil || old.Status != matching.StatusRetired {
		t.Errorf("Get(parent) = %v, %v; want retired", old, err)
	}

	// the same activation again loses the CAS
	if _, err := r.Activate(base.Version, draft.Version); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("repeat Activate() error = %v, want ErrVersionConflict", err)
	}
}

func TestRegistry_ConcurrentActivation(t *testing.T) {
	r, err := NewRegistry(matching.DefaultModel())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	base := r.Active()

	drafts := make([]*matching.CompatibilityModel, 8)
	for i := range drafts {
		drafts[i] = newDraft(t, base)
		if err := r.Submit(drafts[i]); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for _, d := range drafts {
		wg.Add(1)
		go func(version string) {
			defer wg.Done()
			if _, err := r.Activate(base.Version, version); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(d.Version)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("%d activations succeeded, want exactly 1", wins)
	}
}

func TestRegistry_SubmitRejects(t *testing.T) {
	r, err := NewRegistry(matching.DefaultModel())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if err := r.Submit(r.Active()); !errors.Is(err, ErrNotDraft) {
		t.Errorf("Submit(active) error = %v, want ErrNotDraft", err)
	}

	draft := newDraft(t, r.Active())
	if err := r.Submit(draft); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := r.Submit(draft); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("duplicate Submit() error = %v, want ErrVersionConflict", err)
	}

	broken := draft.Clone()
	broken.Version = "broken"
	broken.Weights[matching.DimAffinity] = 5
	if err := r.Submit(broken); !errors.Is(err, matching.ErrInvalidModelConfiguration) {
		t.Errorf("Submit(invalid) error = %v", err)
	}
}

func TestNewRegistry_InvalidModel(t *testing.T) {
	m := matching.DefaultModel()
	m.Tiers = nil
	if _, err := NewRegistry(m); !errors.Is(err, matching.ErrInvalidModelConfiguration) {
		t.Errorf("NewRegistry() error = %v", err)
	}
}
