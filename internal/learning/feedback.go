// internal/learning/feedback.go

package learning

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"

	"github.com/imadgeboyega/kiekky-kinship/internal/common/utils"
	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
)

var (
	ErrInvalidFeedback = errors.New("invalid feedback record")
	ErrVersionConflict = errors.New("active model version changed")
	ErrModelNotFound   = errors.New("model version not found")
	ErrNotDraft        = errors.New("model is not a draft")
)

// Outcome is what happened after a pairing was shown
type Outcome string

const (
	OutcomePositive Outcome = "positive"
	OutcomeNeutral  Outcome = "neutral"
	OutcomeNegative Outcome = "negative"
)

// Target maps the outcome onto [0, 1]
func (o Outcome) Target() float64 {
	switch o {
	case OutcomePositive:
		return 1
	case OutcomeNegative:
		return 0
	default:
		return 0.5
	}
}

// Decisive reports whether the outcome counts toward prediction accuracy
func (o Outcome) Decisive() bool {
	return o == OutcomePositive || o == OutcomeNegative
}

// SubScores is the per-dimension breakdown shown with a match, stored as JSONB
type SubScores map[matching.Dimension]float64

// Scan implements sql.Scanner interface
func (s *SubScores) Scan(value interface{}) error {
	if value == nil {
		*s = make(SubScores)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unexpected sub_scores column type %T", value)
	}

	return json.Unmarshal(bytes, s)
}

// Value implements driver.Valuer interface
func (s SubScores) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	return json.Marshal(s)
}

// FeedbackRecord is one observed outcome for a previously scored pairing
type FeedbackRecord struct {
	ID             string    `json:"id" db:"id"`
	ProfileA       string    `json:"profile_a" db:"profile_a" validate:"required"`
	ProfileB       string    `json:"profile_b" db:"profile_b" validate:"required,nefield=ProfileA"`
	Outcome        Outcome   `json:"outcome" db:"outcome" validate:"required,oneof=positive neutral negative"`
	Rating         *float64  `json:"rating,omitempty" db:"rating" validate:"omitempty,gte=1,lte=5"`
	PredictedScore float64   `json:"predicted_score" db:"predicted_score" validate:"gte=0,lte=100"`
	SubScores      SubScores `json:"sub_scores" db:"sub_scores"`
	ModelVersion   string    `json:"model_version" db:"model_version" validate:"required"`
	RecordedAt     time.Time `json:"recorded_at" db:"recorded_at"`
}

// Validate checks field presence and bounds. Sub-scores must be finite
// and within [0, 100].
func (r *FeedbackRecord) Validate() error {
	if err := utils.ValidateStruct(r); err != nil {
		return errors.Join(ErrInvalidFeedback, err)
	}
	if math.IsNaN(r.PredictedScore) {
		return fmt.Errorf("%w: predicted_score is NaN", ErrInvalidFeedback)
	}
	if r.Rating != nil && math.IsNaN(*r.Rating) {
		return fmt.Errorf("%w: rating is NaN", ErrInvalidFeedback)
	}
	for d, v := range r.SubScores {
		if math.IsNaN(v) || v < 0 || v > 100 {
			return fmt.Errorf("%w: sub_scores.%s must be in [0, 100], got %f", ErrInvalidFeedback, d, v)
		}
	}
	return nil
}
