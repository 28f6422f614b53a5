// Package reference loads the versioned reference artifact: regional profiles,
// adjacency groups, the communication matrix, the affinity taxonomy,
// conversation factor tables, and the starting compatibility model.
package reference

import (
	"errors"
	"fmt"

	"github.com/imadgeboyega/kiekky-kinship/internal/affinity"
	"github.com/imadgeboyega/kiekky-kinship/internal/communication"
	"github.com/imadgeboyega/kiekky-kinship/internal/conversation"
	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
	"github.com/imadgeboyega/kiekky-kinship/internal/region"
)

var ErrInvalidArtifact = errors.New("invalid reference artifact")

// Artifact is the deployable reference configuration. It changes only through
// a configuration deployment, never at runtime.
type Artifact struct {
	Version         string                      `koanf:"version"`
	DefaultRegion   string                      `koanf:"default_region"`
	Regions         []region.Profile            `koanf:"regions"`
	AdjacencyGroups map[string][]string         `koanf:"adjacency_groups"`
	Communication   communication.Config        `koanf:"communication"`
	AffinityTypes   []affinity.Type             `koanf:"affinity_types"`
	Conversation    conversation.Config         `koanf:"conversation"`
	Model           matching.CompatibilityModel `koanf:"model"`
}

// Components are the built, validated engine dependencies
type Components struct {
	Version   string
	Regions   *region.KnowledgeBase
	Affinity  *affinity.Analyzer
	Matrix    *communication.Matrix
	Estimator *conversation.Estimator
	Model     *matching.CompatibilityModel
}

// Build validates every table and constructs the engine components.
// A model that fails validation surfaces matching.ErrInvalidModelConfiguration.
func (a *Artifact) Build() (*Components, error) {
	if a.Version == "" {
		return nil, fmt.Errorf("%w: version is required", ErrInvalidArtifact)
	}

	kb, err := region.New(a.Regions, a.AdjacencyGroups, a.DefaultRegion)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}

	matrix, err := communication.NewMatrix(a.Communication)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}

	for _, r := range a.Regions {
		if r.CommunicationStyle != "" && !matrix.Known(r.CommunicationStyle) {
			return nil, fmt.Errorf("%w: region %q uses unknown communication style %q",
				ErrInvalidArtifact, r.Tag, r.CommunicationStyle)
		}
	}

	analyzer, err := affinity.NewAnalyzer(a.AffinityTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}

	estimator, err := conversation.NewEstimator(a.Conversation)
	if err != nil {
		return nil, fmt.Errorf("%w: conversation: %w", ErrInvalidArtifact, err)
	}

	model := a.Model.Clone()
	model.SortTiers()
	if err := model.Validate(); err != nil {
		return nil, err
	}

	return &Components{
		Version:   a.Version,
		Regions:   kb,
		Affinity:  analyzer,
		Matrix:    matrix,
		Estimator: estimator,
		Model:     model,
	}, nil
}
