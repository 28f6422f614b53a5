// internal/profile/models.go

package profile

import (
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/imadgeboyega/kiekky-kinship/internal/common/utils"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// Language proficiency tiers
const (
	LanguageUnspecified = iota
	LanguageBasic
	LanguageConversational
	LanguageFluent
	LanguageNative
)

// MaxSubScore is the upper bound of every numeric cultural sub-score
const MaxSubScore = 10.0

// CulturalProfile is a read-only snapshot of one member's cultural attributes.
// Region and CommunicationStyle are resolved against reference data at scoring time.
type CulturalProfile struct {
	ID                  string         `json:"id" db:"id" validate:"required"`
	DisplayName         string         `json:"display_name" db:"display_name"`
	Region              string         `json:"region" db:"region"`
	CommunicationStyle  string         `json:"communication_style" db:"communication_style"`
	Interests           pq.StringArray `json:"interests" db:"interests" validate:"max=50"`
	HeritageAttachment  float64        `json:"heritage_attachment" db:"heritage_attachment" validate:"gte=0,lte=10"`
	TraditionAdherence  float64        `json:"tradition_adherence" db:"tradition_adherence" validate:"gte=0,lte=10"`
	FamilyCentrality    float64        `json:"family_centrality" db:"family_centrality" validate:"gte=0,lte=10"`
	AffinityCapacity    float64        `json:"affinity_capacity" db:"affinity_capacity" validate:"gte=0,lte=10"`
	LanguageTier        int            `json:"language_tier" db:"language_tier" validate:"gte=0,lte=4"`
	EmotionalIndicators pq.StringArray `json:"emotional_indicators" db:"emotional_indicators"`
	About               string         `json:"about" db:"about" validate:"max=4000"`
	HumorStyle          string         `json:"humor_style" db:"humor_style"`
	ConflictStyle       string         `json:"conflict_style" db:"conflict_style"`
	ConversationRhythm  string         `json:"conversation_rhythm" db:"conversation_rhythm"`
	FutureGoals         pq.StringArray `json:"future_goals" db:"future_goals"`
	UpdatedAt           time.Time      `json:"updated_at" db:"updated_at"`
}

// Validate checks the snapshot's required fields and numeric bounds
func (p *CulturalProfile) Validate() error {
	if err := utils.ValidateStruct(p); err != nil {
		return errors.Join(ErrInvalidProfile, err)
	}
	return nil
}

// HasIndicators reports whether the profile carries any emotional indicator data
func (p *CulturalProfile) HasIndicators() bool {
	return len(p.EmotionalIndicators) > 0 || p.About != ""
}

// CandidateFilter narrows a candidate pool lookup
type CandidateFilter struct {
	Regions []string
	Limit   int
}
