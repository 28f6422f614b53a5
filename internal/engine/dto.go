package engine

import (
	"github.com/imadgeboyega/kiekky-kinship/internal/learning"
	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
)

// ScoreRequestDTO names the two members to score
type ScoreRequestDTO struct {
	ProfileA string `json:"profile_a" validate:"required"`
	ProfileB string `json:"profile_b" validate:"required,nefield=ProfileA"`
}

// FeedbackBatchDTO is one batch of observed outcomes
type FeedbackBatchDTO struct {
	Records []learning.FeedbackRecord `json:"records" validate:"required,min=1,max=1000"`
}

// FeedbackReceipt reports what happened to a submitted batch
type FeedbackReceipt struct {
	Accepted []string          `json:"accepted"`
	Rejected map[string]string `json:"rejected,omitempty"`
	Samples  int64             `json:"samples"`
}

// ActivateRequestDTO carries the optimistic concurrency token
type ActivateRequestDTO struct {
	ExpectedActiveVersion string `json:"expected_active_version" validate:"required"`
}

// ProposalResponse is the outcome of a manual proposal
type ProposalResponse struct {
	Draft    *matching.CompatibilityModel `json:"draft,omitempty"`
	Triggers []string                     `json:"triggers,omitempty"`
	State    StateSummary                 `json:"state"`
}

// StateSummary is the learning state as reported over HTTP
type StateSummary struct {
	Samples      int64    `json:"samples"`
	Rated        int64    `json:"rated"`
	Positive     int64    `json:"positive"`
	Neutral      int64    `json:"neutral"`
	Negative     int64    `json:"negative"`
	Accuracy     *float64 `json:"accuracy,omitempty"`
	Satisfaction *float64 `json:"satisfaction,omitempty"`
}

func summarize(st learning.State) StateSummary {
	s := StateSummary{
		Samples:  st.Samples,
		Rated:    st.Rated,
		Positive: st.Positive,
		Neutral:  st.Neutral,
		Negative: st.Negative,
	}
	if acc, ok := st.Accuracy(); ok {
		s.Accuracy = &acc
	}
	if sat, ok := st.Satisfaction(); ok {
		s.Satisfaction = &sat
	}
	return s
}

// ActiveModelResponse pairs the active model with the reference version it runs on
type ActiveModelResponse struct {
	Model            *matching.CompatibilityModel `json:"model"`
	ReferenceVersion string                       `json:"reference_version"`
}
