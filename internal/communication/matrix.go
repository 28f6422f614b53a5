// internal/communication/matrix.go
// Symmetric communication-style compatibility matrix

package communication

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	ErrUnknownCommunicationStyle = errors.New("unknown communication style")
	ErrInvalidMatrix             = errors.New("invalid communication matrix")
)

// Style is one communication style and its self-compatibility score
type Style struct {
	Name      string  `koanf:"name" json:"name"`
	SelfScore float64 `koanf:"self_score" json:"self_score"`
}

// Pair is an explicitly configured cross-style score. Order of A and B is irrelevant.
type Pair struct {
	A     string  `koanf:"a" json:"a"`
	B     string  `koanf:"b" json:"b"`
	Score float64 `koanf:"score" json:"score"`
}

// Config describes a matrix before it is built
type Config struct {
	Styles       []Style `koanf:"styles" json:"styles"`
	Pairs        []Pair  `koanf:"pairs" json:"pairs"`
	CrossFactor  float64 `koanf:"cross_factor" json:"cross_factor"`
	NeutralStyle string  `koanf:"neutral_style" json:"neutral_style"`
}

// Matrix is an immutable, fully populated, symmetric score table
type Matrix struct {
	index   map[string]int
	styles  []string
	scores  [][]float64
	neutral string
}

// NewMatrix validates cfg and fills every cell. Pairs that are not configured
// are interpolated from the two self scores.
func NewMatrix(cfg Config) (*Matrix, error) {
	if len(cfg.Styles) == 0 {
		return nil, fmt.Errorf("%w: no styles defined", ErrInvalidMatrix)
	}
	if cfg.CrossFactor <= 0 || cfg.CrossFactor > 1 {
		return nil, fmt.Errorf("%w: cross_factor must be in (0, 1], got %f", ErrInvalidMatrix, cfg.CrossFactor)
	}

	m := &Matrix{index: make(map[string]int, len(cfg.Styles))}
	for _, s := range cfg.Styles {
		name := Normalize(s.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: style with empty name", ErrInvalidMatrix)
		}
		if _, dup := m.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate style %q", ErrInvalidMatrix, name)
		}
		if s.SelfScore <= 0 || s.SelfScore > 100 {
			return nil, fmt.Errorf("%w: style %q self_score must be in (0, 100], got %f", ErrInvalidMatrix, name, s.SelfScore)
		}
		m.index[name] = len(m.styles)
		m.styles = append(m.styles, name)
	}

	n := len(m.styles)
	m.scores = make([][]float64, n)
	defined := make([][]bool, n)
	for i := range m.scores {
		m.scores[i] = make([]float64, n)
		defined[i] = make([]bool, n)
	}
	for _, s := range cfg.Styles {
		i := m.index[Normalize(s.Name)]
		m.scores[i][i] = s.SelfScore
		defined[i][i] = true
	}

	for _, p := range cfg.Pairs {
		i, okA := m.index[Normalize(p.A)]
		j, okB := m.index[Normalize(p.B)]
		if !okA || !okB {
			return nil, fmt.Errorf("%w: pair %q/%q references an unknown style", ErrInvalidMatrix, p.A, p.B)
		}
		if i == j {
			return nil, fmt.Errorf("%w: self score for %q must be set on the style, not as a pair", ErrInvalidMatrix, p.A)
		}
		if p.Score < 0 || p.Score > m.scores[i][i] || p.Score > m.scores[j][j] {
			return nil, fmt.Errorf("%w: pair %q/%q score %f exceeds a self score", ErrInvalidMatrix, p.A, p.B, p.Score)
		}
		if defined[i][j] && m.scores[i][j] != p.Score {
			return nil, fmt.Errorf("%w: pair %q/%q defined twice with different scores", ErrInvalidMatrix, p.A, p.B)
		}
		m.scores[i][j], m.scores[j][i] = p.Score, p.Score
		defined[i][j], defined[j][i] = true, true
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if defined[i][j] {
				continue
			}
			v := interpolate(m.scores[i][i], m.scores[j][j], cfg.CrossFactor)
			m.scores[i][j], m.scores[j][i] = v, v
		}
	}

	neutral := Normalize(cfg.NeutralStyle)
	if _, ok := m.index[neutral]; !ok {
		return nil, fmt.Errorf("%w: neutral style %q is not defined", ErrInvalidMatrix, cfg.NeutralStyle)
	}
	m.neutral = neutral

	return m, nil
}

func interpolate(selfA, selfB, crossFactor float64) float64 {
	v := crossFactor * math.Sqrt(selfA*selfB)
	return math.Min(v, math.Min(selfA, selfB))
}

// Compatibility returns the 0-100 score between two styles
func (m *Matrix) Compatibility(a, b string) (float64, error) {
	i, ok := m.index[Normalize(a)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCommunicationStyle, a)
	}
	j, ok := m.index[Normalize(b)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCommunicationStyle, b)
	}
	return m.scores[i][j], nil
}

// SelfScore returns the configured maximum for style
func (m *Matrix) SelfScore(style string) (float64, error) {
	return m.Compatibility(style, style)
}

// Known reports whether style is in the matrix
func (m *Matrix) Known(style string) bool {
	_, ok := m.index[Normalize(style)]
	return ok
}

// NeutralStyle is the documented substitute for an unknown style
func (m *Matrix) NeutralStyle() string {
	return m.neutral
}

// Styles returns the style names in sorted order
func (m *Matrix) Styles() []string {
	out := append([]string(nil), m.styles...)
	sort.Strings(out)
	return out
}

// Normalize canonicalizes a style tag
func Normalize(style string) string {
	return strings.ToLower(strings.TrimSpace(style))
}
