// internal/activity/repository.go

package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository is the activity catalog lookup the engine consumes
type Repository interface {
	ListUpcoming(ctx context.Context, after time.Time, limit int) ([]Activity, error)
	GetActivity(ctx context.Context, id string) (*Activity, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// ListUpcoming returns activities starting after the given time, plus undated
// ones, in catalog order so recommendation tie-breaks stay reproducible.
func (r *postgresRepository) ListUpcoming(ctx context.Context, after time.Time, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, title, interest_tags, region, cultural_focus, starts_at
		FROM activities
		WHERE starts_at IS NULL OR starts_at > $1
		ORDER BY created_at, id
		LIMIT $2`

	var activities []Activity
	if err := r.db.SelectContext(ctx, &activities, query, after, limit); err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// GetActivity retrieves one catalog entry
func (r *postgresRepository) GetActivity(ctx context.Context, id string) (*Activity, error) {
	var a Activity
	query := `
		SELECT id, title, interest_tags, region, cultural_focus, starts_at
		FROM activities
		WHERE id = $1`

	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &a, nil
}
