package learning

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
)

func rating(v float64) *float64 { return &v }

func record(id string, outcome Outcome, predicted float64) FeedbackRecord {
	return FeedbackRecord{
		ID:             id,
		ProfileA:       "amara",
		ProfileB:       "kofi",
		Outcome:        outcome,
		PredictedScore: predicted,
		SubScores: SubScores{
			matching.DimAffinity:      60,
			matching.DimCommunication: 80,
			matching.DimConversation:  70,
			matching.DimInterests:     50,
		},
		ModelVersion: "baseline-v1",
		RecordedAt:   time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func negatives(n int, predicted float64) []FeedbackRecord {
	batch := make([]FeedbackRecord, n)
	for i := range batch {
		batch[i] = record("neg", OutcomeNegative, predicted)
	}
	return batch
}

func TestFeedbackRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(r *FeedbackRecord)
		wantErr bool
	}{
		{name: "valid", modify: func(r *FeedbackRecord) {}},
		{name: "valid with rating", modify: func(r *FeedbackRecord) { r.Rating = rating(4) }},
		{name: "missing profile", modify: func(r *FeedbackRecord) { r.ProfileA = "" }, wantErr: true},
		{name: "same profile twice", modify: func(r *FeedbackRecord) { r.ProfileB = r.ProfileA }, wantErr: true},
		{name: "unknown outcome", modify: func(r *FeedbackRecord) { r.Outcome = "ecstatic" }, wantErr: true},
		{name: "rating too high", modify: func(r *FeedbackRecord) { r.Rating = rating(6) }, wantErr: true},
		{name: "rating too low", modify: func(r *FeedbackRecord) { r.Rating = rating(0) }, wantErr: true},
		{name: "score above 100", modify: func(r *FeedbackRecord) { r.PredictedScore = 101 }, wantErr: true},
		{name: "NaN score", modify: func(r *FeedbackRecord) { r.PredictedScore = math.NaN() }, wantErr: true},
		{name: "bad sub-score", modify: func(r *FeedbackRecord) { r.SubScores[matching.DimAffinity] = -1 }, wantErr: true},
		{name: "missing model version", modify: func(r *FeedbackRecord) { r.ModelVersion = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := record("r1", OutcomePositive, 70)
			tt.modify(&r)
			err := r.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidFeedback) {
				t.Errorf("Validate() error = %v, want ErrInvalidFeedback", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestObserve(t *testing.T) {
	r := record("r1", OutcomePositive, 40)
	r.Rating = rating(5)
	st := observe(&r)

	if st.Samples != 1 || st.Rated != 1 || st.Positive != 1 || st.Decisive != 1 {
		t.Errorf("counts = %+v", st)
	}
	// 40 predicts a negative outcome, so a positive one is a miss
	if st.Correct != 0 {
		t.Errorf("Correct = %d, want 0", st.Correct)
	}
	if st.SatisfactionSum != 1 {
		t.Errorf("SatisfactionSum = %f, want 1 for a 5 rating", st.SatisfactionSum)
	}
	aff := st.Dimensions[matching.DimAffinity]
	if want := (1 - 0.4) * 0.6; math.Abs(aff.ExplicitError-want) > 1e-12 {
		t.Errorf("explicit error = %f, want %f", aff.ExplicitError, want)
	}
	if want := (1 - 0.4) * 0.6; math.Abs(aff.BehavioralError-want) > 1e-12 {
		t.Errorf("behavioral error = %f, want %f", aff.BehavioralError, want)
	}
	if aff.PositiveScore != 60 || aff.NegativeScore != 0 {
		t.Errorf("outcome sums = %+v", aff)
	}

	neutral := record("r2", OutcomeNeutral, 80)
	ns := observe(&neutral)
	if ns.Decisive != 0 || ns.Neutral != 1 || ns.SatisfactionSum != 0.5 {
		t.Errorf("neutral observation = %+v", ns)
	}
}

func TestState_MergeCommutative(t *testing.T) {
	a, b, c := record("a", OutcomePositive, 70), record("b", OutcomeNegative, 30), record("c", OutcomeNeutral, 55)
	b.Rating = rating(2)

	sa, sb, sc := observe(&a), observe(&b), observe(&c)

	left := sa.Merge(sb).Merge(sc)
	right := sc.Merge(sb.Merge(sa))

	if left.Samples != 3 || right.Samples != 3 {
		t.Fatalf("samples = %d / %d, want 3", left.Samples, right.Samples)
	}
	if left.Correct != right.Correct || left.Decisive != right.Decisive || left.Rated != right.Rated {
		t.Errorf("counts differ: %+v vs %+v", left, right)
	}
	if math.Abs(left.SatisfactionSum-right.SatisfactionSum) > 1e-12 {
		t.Errorf("satisfaction differs: %f vs %f", left.SatisfactionSum, right.SatisfactionSum)
	}
	for _, d := range matching.Dimensions {
		l, r := left.Dimensions[d], right.Dimensions[d]
		if math.Abs(l.BehavioralError-r.BehavioralError) > 1e-12 || math.Abs(l.ExplicitError-r.ExplicitError) > 1e-12 {
			t.Errorf("%s sums differ: %+v vs %+v", d, l, r)
		}
	}

	if got := sa.Merge(State{}); got.Samples != 1 {
		t.Errorf("merge with empty state changed samples: %d", got.Samples)
	}
	if got := (State{}).Merge(State{}); got.Dimensions != nil {
		t.Errorf("merging empty states allocated dimensions")
	}
}

func TestState_Accuracy(t *testing.T) {
	if _, ok := (State{}).Accuracy(); ok {
		t.Error("empty state should have no accuracy")
	}

	l := NewLoop()
	st := l.IngestFeedback([]FeedbackRecord{
		record("1", OutcomePositive, 80),
		record("2", OutcomePositive, 30),
		record("3", OutcomeNegative, 20),
		record("4", OutcomeNeutral, 90),
	})

	acc, ok := st.Accuracy()
	if !ok || math.Abs(acc-2.0/3.0) > 1e-12 {
		t.Errorf("Accuracy() = %f, %v; want 0.667, true", acc, ok)
	}
	sat, ok := st.Satisfaction()
	if !ok || math.Abs(sat-(1+1+0+0.5)/4) > 1e-12 {
		t.Errorf("Satisfaction() = %f, %v", sat, ok)
	}
}

func TestLoop_IngestSkipsInvalid(t *testing.T) {
	l := NewLoop()
	bad := record("bad", "unknown", 50)

	st, report := l.Ingest([]FeedbackRecord{record("ok", OutcomePositive, 70), bad}, Cutoff{})
	if report.Accepted != 1 || report.Skipped != 1 || report.Remaining != 0 {
		t.Errorf("report = %+v", report)
	}
	if st.Samples != 1 {
		t.Errorf("Samples = %d, want 1", st.Samples)
	}
}

func TestLoop_IngestCutoff(t *testing.T) {
	t.Run("max records", func(t *testing.T) {
		l := NewLoop()
		st, report := l.Ingest(negatives(10, 70), Cutoff{MaxRecords: 4})
		if report.Accepted != 4 || report.Remaining != 6 {
			t.Errorf("report = %+v, want 4 accepted and 6 remaining", report)
		}
		if st.Samples != 4 {
			t.Errorf("Samples = %d, want 4", st.Samples)
		}
	})

	t.Run("deadline", func(t *testing.T) {
		l := NewLoop()
		start := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
		calls := 0
		l.now = func() time.Time {
			calls++
			return start.Add(time.Duration(calls) * time.Second)
		}

		_, report := l.Ingest(negatives(10, 70), Cutoff{Deadline: start.Add(3500 * time.Millisecond)})
		if report.Accepted != 3 || report.Remaining != 7 {
			t.Errorf("report = %+v, want 3 accepted and 7 remaining", report)
		}
	})

	t.Run("past deadline", func(t *testing.T) {
		l := NewLoop()
		_, report := l.Ingest(negatives(5, 70), Cutoff{Deadline: time.Now().Add(-time.Minute)})
		if report.Accepted != 0 || report.Remaining != 5 {
			t.Errorf("report = %+v, want nothing processed", report)
		}
	})
}

func TestLoop_ProposeAfterNegativeFeedback(t *testing.T) {
	l := NewLoop()
	current := matching.DefaultModel()

	l.IngestFeedback(negatives(100, 70))

	draft, triggers, err := l.ProposeModelUpdate(current)
	if err != nil {
		t.Fatalf("ProposeModelUpdate() error = %v", err)
	}
	if draft == nil {
		t.Fatal("expected a draft after 100 mispredicted negatives")
	}

	if !containsTrigger(triggers, TriggerAccuracyDrop) {
		t.Errorf("triggers = %v, want accuracy drop", triggers)
	}
	if draft.Status != matching.StatusDraft || draft.ParentVersion != current.Version || draft.Version == current.Version {
		t.Errorf("draft lineage = %s/%s/%s", draft.Version, draft.ParentVersion, draft.Status)
	}
	if err := draft.Validate(); err != nil {
		t.Errorf("draft does not validate: %v", err)
	}
	// all feedback negative: the threshold rises by a full step
	if draft.MinScore != current.MinScore+current.Learning.ThresholdStep {
		t.Errorf("MinScore = %f, want %f", draft.MinScore, current.MinScore+current.Learning.ThresholdStep)
	}
	// drift keeps being measured against the parent's promoted baseline
	if draft.Baseline != current.Baseline {
		t.Errorf("draft baseline = %+v, want parent's %+v", draft.Baseline, current.Baseline)
	}
	if draft.Observed == nil || draft.Observed.Accuracy != 0 {
		t.Errorf("draft observed = %+v, want accuracy 0", draft.Observed)
	}
	if current.Status != matching.StatusActive || current.MinScore != 35 {
		t.Error("current model was modified")
	}

	if st := l.State(); st.Samples != 0 {
		t.Errorf("state not reset after draft: %d samples", st.Samples)
	}
}

func TestPropose_DriftMeasuredAgainstPromotedBaseline(t *testing.T) {
	mixed := func(pos, neg int) State {
		var st State
		for i := 0; i < pos; i++ {
			r := record("p", OutcomePositive, 70)
			st = st.Merge(observe(&r))
		}
		for i := 0; i < neg; i++ {
			r := record("n", OutcomeNegative, 70)
			st = st.Merge(observe(&r))
		}
		return st
	}

	current := matching.DefaultModel()
	first, _, err := Propose(current, mixed(50, 50), time.Now())
	if err != nil || first == nil {
		t.Fatalf("Propose() = %v, %v; want a draft", first, err)
	}

	// a promoted draft still compares 60% accuracy against the original 70%
	second, triggers, err := Propose(first, mixed(60, 40), time.Now())
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if second == nil || !containsTrigger(triggers, TriggerAccuracyDrop) {
		t.Fatalf("triggers = %v, want accuracy drop against baseline %f", triggers, first.Baseline.Accuracy)
	}
	if second.Baseline != current.Baseline {
		t.Errorf("baseline drifted across generations: %+v", second.Baseline)
	}
	if second.Observed == nil || math.Abs(second.Observed.Accuracy-0.6) > 1e-9 {
		t.Errorf("observed = %+v, want accuracy 0.6", second.Observed)
	}
}

func TestLoop_NoDraftWithoutTrigger(t *testing.T) {
	l := NewLoop()
	l.IngestFeedback([]FeedbackRecord{record("1", OutcomePositive, 80)})

	draft, triggers, err := l.ProposeModelUpdate(matching.DefaultModel())
	if err != nil || draft != nil || len(triggers) != 0 {
		t.Fatalf("got %v, %v, %v; want no draft", draft, triggers, err)
	}
	if l.State().Samples != 1 {
		t.Error("state should be kept when no draft is proposed")
	}
}

func TestPropose_SampleThreshold(t *testing.T) {
	current := matching.DefaultModel()
	current.Learning.SampleThreshold = 10
	current.Learning.MinDriftSamples = 1000

	var st State
	for i := 0; i < 10; i++ {
		r := record("p", OutcomePositive, 80)
		st = st.Merge(observe(&r))
	}

	draft, triggers, err := Propose(current, st, time.Now())
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if draft == nil || len(triggers) != 1 || triggers[0] != TriggerSampleThreshold {
		t.Fatalf("triggers = %v, want sample threshold only", triggers)
	}
	if draft.MinScore != current.MinScore-current.Learning.ThresholdStep {
		t.Errorf("MinScore = %f, want lowered by one step", draft.MinScore)
	}

	var sum float64
	for _, d := range matching.Dimensions {
		w := draft.Weights[d]
		if w < 0 {
			t.Errorf("weight %s = %f", d, w)
		}
		sum += w
	}
	if math.Abs(sum-1) > matching.WeightTolerance {
		t.Errorf("weights sum to %f", sum)
	}
}

func TestPropose_MinWeightFloor(t *testing.T) {
	current := matching.DefaultModel()
	current.Learning.LearningRate = 1
	current.Learning.MinWeight = 0.2
	current.SignalWeights = matching.SignalWeights{Behavioral: 1}

	var st State
	for i := 0; i < 600; i++ {
		r := record("n", OutcomeNegative, 100)
		r.SubScores[matching.DimInterests] = 100
		st = st.Merge(observe(&r))
	}

	draft, _, err := Propose(current, st, time.Now())
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	for _, d := range matching.Dimensions {
		if draft.Weights[d] <= 0 {
			t.Errorf("weight %s = %f, want positive", d, draft.Weights[d])
		}
	}
	if draft.Weights[matching.DimInterests] > current.Weights[matching.DimInterests] {
		t.Errorf("interests weight grew despite overconfident negatives: %f", draft.Weights[matching.DimInterests])
	}
}

func TestPropose_InvalidCurrent(t *testing.T) {
	bad := matching.DefaultModel()
	bad.Version = ""
	if _, _, err := Propose(bad, State{Samples: 1000}, time.Now()); !errors.Is(err, matching.ErrInvalidModelConfiguration) {
		t.Errorf("Propose() error = %v, want ErrInvalidModelConfiguration", err)
	}
}

func containsTrigger(list []string, want string) bool {
	for _, t := range list {
		if t == want {
			return true
		}
	}
	return false
}
