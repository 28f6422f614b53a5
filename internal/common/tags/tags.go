// internal/common/tags/tags.go
// Set arithmetic over free-form interest and goal tags

package tags

import (
	"sort"
	"strings"
)

// Normalize canonicalizes one tag
func Normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Set is a normalized tag set. Empty tags are dropped.
type Set map[string]struct{}

// NewSet builds a normalized set from raw tags
func NewSet(raw []string) Set {
	s := make(Set, len(raw))
	for _, t := range raw {
		if n := Normalize(t); n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Has reports membership of an already normalized tag
func (s Set) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Intersection returns the shared tags in sorted order
func Intersection(a, b Set) []string {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	var shared []string
	for t := range small {
		if large.Has(t) {
			shared = append(shared, t)
		}
	}
	sort.Strings(shared)
	return shared
}

// Jaccard returns |a ∩ b| / |a ∪ b| and the size of the union.
// Two empty sets yield 0 with a union of 0.
func Jaccard(a, b Set) (float64, int) {
	shared := len(Intersection(a, b))
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0, 0
	}
	return float64(shared) / float64(union), union
}
