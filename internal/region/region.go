// internal/region/region.go
// Regional knowledge base: static reference data describing cultural regions

package region

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownRegion  = errors.New("unknown region")
	ErrInvalidRegions = errors.New("invalid regional reference data")
)

// Relation describes how two regions relate culturally
type Relation int

const (
	Distant Relation = iota
	Adjacent
	Same
)

func (r Relation) String() string {
	switch r {
	case Same:
		return "same"
	case Adjacent:
		return "adjacent"
	default:
		return "distant"
	}
}

// Profile is the reference record for one supported region
type Profile struct {
	Tag                   string   `koanf:"tag" json:"tag"`
	Name                  string   `koanf:"name" json:"name"`
	Traits                []string `koanf:"traits" json:"traits"`
	CommunicationStyle    string   `koanf:"communication_style" json:"communication_style"`
	BaselineAffinity      float64  `koanf:"baseline_affinity" json:"baseline_affinity"`
	CelebrationPriorities []string `koanf:"celebration_priorities" json:"celebration_priorities"`
	Markers               []string `koanf:"markers" json:"markers"`
}

// KnowledgeBase is an immutable lookup over regional profiles.
// It is safe for concurrent use once built.
type KnowledgeBase struct {
	profiles      map[string]Profile
	groups        map[string][]string // region tag -> adjacency group names
	defaultRegion string
}

// New builds a knowledge base. groups maps an adjacency group name to its member tags.
func New(profiles []Profile, groups map[string][]string, defaultRegion string) (*KnowledgeBase, error) {
	kb := &KnowledgeBase{
		profiles: make(map[string]Profile, len(profiles)),
		groups:   make(map[string][]string),
	}

	for _, p := range profiles {
		tag := Normalize(p.Tag)
		if tag == "" {
			return nil, fmt.Errorf("%w: region with empty tag", ErrInvalidRegions)
		}
		if _, dup := kb.profiles[tag]; dup {
			return nil, fmt.Errorf("%w: duplicate region %q", ErrInvalidRegions, tag)
		}
		if p.BaselineAffinity < 0 || p.BaselineAffinity > 1 {
			return nil, fmt.Errorf("%w: region %q baseline_affinity must be in [0, 1], got %f",
				ErrInvalidRegions, tag, p.BaselineAffinity)
		}
		p.Tag = tag
		kb.profiles[tag] = p
	}

	groupNames := make([]string, 0, len(groups))
	for name := range groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	for _, name := range groupNames {
		for _, member := range groups[name] {
			tag := Normalize(member)
			if _, ok := kb.profiles[tag]; !ok {
				return nil, fmt.Errorf("%w: adjacency group %q references unknown region %q",
					ErrInvalidRegions, name, member)
			}
			kb.groups[tag] = append(kb.groups[tag], name)
		}
	}

	kb.defaultRegion = Normalize(defaultRegion)
	if _, ok := kb.profiles[kb.defaultRegion]; !ok {
		return nil, fmt.Errorf("%w: default region %q is not defined", ErrInvalidRegions, defaultRegion)
	}

	return kb, nil
}

// Get returns the regional profile for tag
func (kb *KnowledgeBase) Get(tag string) (Profile, error) {
	p, ok := kb.profiles[Normalize(tag)]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownRegion, tag)
	}
	return p, nil
}

// List returns every supported region tag in sorted order
func (kb *KnowledgeBase) List() []string {
	tags := make([]string, 0, len(kb.profiles))
	for tag := range kb.profiles {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// DefaultRegion returns the configured fallback region tag
func (kb *KnowledgeBase) DefaultRegion() string {
	return kb.defaultRegion
}

// Resolve looks up tag and falls back to the default region when it is unknown.
// The boolean reports whether the fallback was used.
func (kb *KnowledgeBase) Resolve(tag string) (Profile, bool) {
	return kb.ResolveWith(tag, kb.defaultRegion)
}

// ResolveWith is Resolve with a caller-selected fallback region.
// An unknown fallback degrades to the configured default region.
func (kb *KnowledgeBase) ResolveWith(tag, fallback string) (Profile, bool) {
	if p, err := kb.Get(tag); err == nil {
		return p, false
	}
	if p, err := kb.Get(fallback); err == nil {
		return p, true
	}
	return kb.profiles[kb.defaultRegion], true
}

// Relation reports whether a and b are the same region, share an adjacency
// group, or neither. Unknown tags are always Distant.
func (kb *KnowledgeBase) Relation(a, b string) Relation {
	a, b = Normalize(a), Normalize(b)
	if _, ok := kb.profiles[a]; !ok {
		return Distant
	}
	if _, ok := kb.profiles[b]; !ok {
		return Distant
	}
	if a == b {
		return Same
	}
	for _, ga := range kb.groups[a] {
		for _, gb := range kb.groups[b] {
			if ga == gb {
				return Adjacent
			}
		}
	}
	return Distant
}

// Normalize canonicalizes a region tag
func Normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
