// internal/activity/models.go

package activity

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

var ErrActivityNotFound = errors.New("activity not found")

// Activity is a catalog entry: an event or shared activity members can join
type Activity struct {
	ID            string         `json:"id" db:"id"`
	Title         string         `json:"title" db:"title"`
	InterestTags  pq.StringArray `json:"interest_tags" db:"interest_tags"`
	Region        string         `json:"region" db:"region"`
	CulturalFocus bool           `json:"cultural_focus" db:"cultural_focus"`
	StartsAt      *time.Time     `json:"starts_at,omitempty" db:"starts_at"`
}
