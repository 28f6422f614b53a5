// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository is the profile lookup capability the engine consumes
type Repository interface {
	GetProfile(ctx context.Context, id string) (*CulturalProfile, error)
	ListCandidates(ctx context.Context, excludeID string, filter *CandidateFilter) ([]*CulturalProfile, error)
}

const defaultCandidateLimit = 200

const profileColumns = `
	id, display_name, region, communication_style, interests,
	heritage_attachment, tradition_adherence, family_centrality, affinity_capacity,
	language_tier, emotional_indicators, about,
	humor_style, conflict_style, conversation_rhythm, future_goals,
	updated_at`

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// GetProfile retrieves one cultural profile snapshot
func (r *postgresRepository) GetProfile(ctx context.Context, id string) (*CulturalProfile, error) {
	var p CulturalProfile
	query := `SELECT` + profileColumns + `
		FROM cultural_profiles
		WHERE id = $1`

	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &p, nil
}

// ListCandidates returns other members, most recently updated first
func (r *postgresRepository) ListCandidates(ctx context.Context, excludeID string, filter *CandidateFilter) ([]*CulturalProfile, error) {
	limit := defaultCandidateLimit
	var regions []string
	if filter != nil {
		if filter.Limit > 0 {
			limit = filter.Limit
		}
		regions = filter.Regions
	}

	query := `SELECT` + profileColumns + `
		FROM cultural_profiles
		WHERE id <> $1
		  AND (cardinality($2::text[]) = 0 OR region = ANY($2))
		ORDER BY updated_at DESC, id
		LIMIT $3`

	var profiles []*CulturalProfile
	if err := r.db.SelectContext(ctx, &profiles, query, excludeID, pq.Array(regions), limit); err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	return profiles, nil
}
