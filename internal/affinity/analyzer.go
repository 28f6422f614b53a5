// internal/affinity/analyzer.go
// Emotional and cultural-longing resonance between two members

package affinity

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// ResonanceFloor is the lowest resonance any pair can have. It is also the
// value assigned when neither member shows any affinity indicator and both
// report zero capacity.
const ResonanceFloor = 0.1

// MaxCapacity is the top of the affinity capacity sub-score scale
const MaxCapacity = 10.0

var ErrInvalidAffinityTypes = errors.New("invalid affinity type configuration")

// Type is a named kind of emotional affinity and the keywords that signal it
type Type struct {
	Name                 string   `koanf:"name" json:"name"`
	Keywords             []string `koanf:"keywords" json:"keywords"`
	CompatibilityFactors []string `koanf:"compatibility_factors" json:"compatibility_factors"`
	IntensityImpact      float64  `koanf:"intensity_impact" json:"intensity_impact"`
	Specificity          float64  `koanf:"specificity" json:"specificity"`
}

// Subject is the slice of a member profile the analyzer reads
type Subject struct {
	Capacity   float64
	Indicators []string
	Text       string
	Baseline   float64
}

// Result is the outcome of comparing two subjects
type Result struct {
	Resonance    float64
	SharedTypes  []string
	UsedBaseline bool
	Floored      bool
}

type compiledType struct {
	Type
	tags     map[string]struct{}
	phrases  []string
	position int
}

// Analyzer classifies indicators into affinity types and scores resonance.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	types []compiledType
}

// NewAnalyzer validates and compiles the affinity taxonomy
func NewAnalyzer(types []Type) (*Analyzer, error) {
	a := &Analyzer{types: make([]compiledType, 0, len(types))}
	seen := make(map[string]bool, len(types))

	for i, t := range types {
		name := normalizeTag(t.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: type at index %d has no name", ErrInvalidAffinityTypes, i)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate type %q", ErrInvalidAffinityTypes, name)
		}
		seen[name] = true

		if t.IntensityImpact <= 0 {
			return nil, fmt.Errorf("%w: type %q intensity_impact must be positive, got %f",
				ErrInvalidAffinityTypes, name, t.IntensityImpact)
		}
		if t.Specificity < 0 {
			return nil, fmt.Errorf("%w: type %q specificity must be non-negative, got %f",
				ErrInvalidAffinityTypes, name, t.Specificity)
		}
		if t.Specificity == 0 {
			t.Specificity = 1
		}
		t.Name = name

		ct := compiledType{Type: t, tags: map[string]struct{}{name: {}}, position: i}
		for _, kw := range t.Keywords {
			if tag := normalizeTag(kw); tag != "" {
				ct.tags[tag] = struct{}{}
			}
			if phrase := phraseOf(kw); phrase != "" {
				ct.phrases = append(ct.phrases, phrase)
			}
		}
		a.types = append(a.types, ct)
	}

	return a, nil
}

// Types returns the configured type names in declaration order
func (a *Analyzer) Types() []string {
	names := make([]string, len(a.types))
	for i, t := range a.types {
		names[i] = t.Name
	}
	return names
}

// Classify returns the affinity types signalled by the subject's tags or text,
// in declaration order.
func (a *Analyzer) Classify(s Subject) []string {
	text := phraseOf(s.Text)
	if text != "" {
		text = " " + text + " "
	}

	tags := make(map[string]struct{}, len(s.Indicators))
	for _, ind := range s.Indicators {
		if tag := normalizeTag(ind); tag != "" {
			tags[tag] = struct{}{}
		}
	}

	var matched []string
	for _, t := range a.types {
		if t.matches(tags, text) {
			matched = append(matched, t.Name)
		}
	}
	return matched
}

func (t compiledType) matches(tags map[string]struct{}, paddedText string) bool {
	for tag := range tags {
		if _, ok := t.tags[tag]; ok {
			return true
		}
	}
	if paddedText == "" {
		return false
	}
	for _, phrase := range t.phrases {
		if strings.Contains(paddedText, " "+phrase+" ") {
			return true
		}
	}
	return false
}

// Resonance scores how strongly two members share emotional affinity, in [0, 1]
func (a *Analyzer) Resonance(x, y Subject) Result {
	typesX := a.Classify(x)
	typesY := a.Classify(y)

	if len(typesX) == 0 && len(typesY) == 0 && x.Capacity == 0 && y.Capacity == 0 {
		return Result{Resonance: ResonanceFloor, Floored: true}
	}

	inY := make(map[string]bool, len(typesY))
	for _, name := range typesY {
		inY[name] = true
	}

	capX := clamp(x.Capacity/MaxCapacity, 0, 1)
	capY := clamp(y.Capacity/MaxCapacity, 0, 1)
	hm := harmonicMean(capX, capY)

	var shared []string
	var weighted, totalWeight float64
	for _, t := range a.types {
		if !inY[t.Name] || !contains(typesX, t.Name) {
			continue
		}
		shared = append(shared, t.Name)
		weighted += hm * t.IntensityImpact * t.Specificity
		totalWeight += t.Specificity
	}

	if len(shared) == 0 || totalWeight == 0 {
		baseline := (clamp(x.Baseline, 0, 1) + clamp(y.Baseline, 0, 1)) / 2
		return floored(Result{Resonance: baseline, UsedBaseline: true})
	}

	return floored(Result{
		Resonance:   clamp(weighted/totalWeight, 0, 1),
		SharedTypes: shared,
	})
}

// floored lifts r to ResonanceFloor; resonance is never exactly zero
func floored(r Result) Result {
	if r.Resonance < ResonanceFloor {
		r.Resonance = ResonanceFloor
		r.Floored = true
	}
	return r
}

func harmonicMean(a, b float64) float64 {
	if a+b == 0 {
		return 0
	}
	return 2 * a * b / (a + b)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// phraseOf lowercases s and collapses every run of non-alphanumerics to one space
func phraseOf(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, " ")
}
