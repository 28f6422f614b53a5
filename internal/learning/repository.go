// internal/learning/repository.go

package learning

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
)

// FeedbackStore persists feedback until the learning loop has ingested it
type FeedbackStore interface {
	Append(ctx context.Context, records []FeedbackRecord) error
	FetchPending(ctx context.Context, limit int) ([]FeedbackRecord, error)
	MarkProcessed(ctx context.Context, ids []string) error
}

// ModelStore persists model versions and their lifecycle status
type ModelStore interface {
	SaveModel(ctx context.Context, m *matching.CompatibilityModel) error
	UpdateStatus(ctx context.Context, version string, status matching.Status) error
	GetActive(ctx context.Context) (*matching.CompatibilityModel, error)
	ListByStatus(ctx context.Context, status matching.Status) ([]*matching.CompatibilityModel, error)
}

type postgresFeedbackStore struct {
	db *sqlx.DB
}

// NewPostgresFeedbackStore creates a new PostgreSQL feedback store
func NewPostgresFeedbackStore(db *sqlx.DB) FeedbackStore {
	return &postgresFeedbackStore{db: db}
}

// Append inserts records in one transaction, assigning IDs and timestamps
// where the caller left them empty
func (s *postgresFeedbackStore) Append(ctx context.Context, records []FeedbackRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin feedback transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO model_feedback (id, profile_a, profile_b, outcome, rating,
			predicted_score, sub_scores, model_version, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to prepare feedback insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.RecordedAt.IsZero() {
			r.RecordedAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.ProfileA, r.ProfileB, r.Outcome, r.Rating,
			r.PredictedScore, r.SubScores, r.ModelVersion, r.RecordedAt,
		); err != nil {
			return fmt.Errorf("failed to insert feedback %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// FetchPending returns unprocessed feedback, oldest first
func (s *postgresFeedbackStore) FetchPending(ctx context.Context, limit int) ([]FeedbackRecord, error) {
	if limit <= 0 {
		limit = 1000
	}

	query := `
		SELECT id, profile_a, profile_b, outcome, rating, predicted_score,
			sub_scores, model_version, recorded_at
		FROM model_feedback
		WHERE processed_at IS NULL
		ORDER BY recorded_at, id
		LIMIT $1`

	var records []FeedbackRecord
	if err := s.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch pending feedback: %w", err)
	}
	return records, nil
}

// MarkProcessed flags records as ingested so they are not drained again
func (s *postgresFeedbackStore) MarkProcessed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE model_feedback SET processed_at = NOW() WHERE id = ANY($1)`
	if _, err := s.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to mark feedback processed: %w", err)
	}
	return nil
}

type postgresModelStore struct {
	db *sqlx.DB
}

// NewPostgresModelStore creates a new PostgreSQL model store
func NewPostgresModelStore(db *sqlx.DB) ModelStore {
	return &postgresModelStore{db: db}
}

type modelRow struct {
	Version    string    `db:"version"`
	Status     string    `db:"status"`
	Definition []byte    `db:"definition"`
	CreatedAt  time.Time `db:"created_at"`
}

func (row modelRow) decode() (*matching.CompatibilityModel, error) {
	var m matching.CompatibilityModel
	if err := json.Unmarshal(row.Definition, &m); err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", row.Version, err)
	}
	m.Status = matching.Status(row.Status)
	m.CreatedAt = row.CreatedAt
	return &m, nil
}

// SaveModel inserts or replaces a model version
func (s *postgresModelStore) SaveModel(ctx context.Context, m *matching.CompatibilityModel) error {
	definition, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode model %s: %w", m.Version, err)
	}

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO model_versions (version, parent_version, status, definition, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)
		ON CONFLICT (version) DO UPDATE
		SET status = EXCLUDED.status, definition = EXCLUDED.definition`

	if _, err := s.db.ExecContext(ctx, query, m.Version, m.ParentVersion, m.Status, definition, createdAt); err != nil {
		return fmt.Errorf("failed to save model %s: %w", m.Version, err)
	}
	return nil
}

// UpdateStatus moves a stored version through its lifecycle
func (s *postgresModelStore) UpdateStatus(ctx context.Context, version string, status matching.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE model_versions SET status = $2, updated_at = NOW() WHERE version = $1`,
		version, status)
	if err != nil {
		return fmt.Errorf("failed to update model %s: %w", version, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrModelNotFound
	}
	return nil
}

// GetActive returns the persisted active model
func (s *postgresModelStore) GetActive(ctx context.Context) (*matching.CompatibilityModel, error) {
	var row modelRow
	query := `
		SELECT version, status, definition, created_at
		FROM model_versions
		WHERE status = 'active'
		ORDER BY updated_at DESC NULLS LAST
		LIMIT 1`

	if err := s.db.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrModelNotFound
		}
		return nil, fmt.Errorf("failed to get active model: %w", err)
	}
	return row.decode()
}

// ListByStatus returns stored versions with the given status, oldest first
func (s *postgresModelStore) ListByStatus(ctx context.Context, status matching.Status) ([]*matching.CompatibilityModel, error) {
	var rows []modelRow
	query := `
		SELECT version, status, definition, created_at
		FROM model_versions
		WHERE status = $1
		ORDER BY created_at, version`

	if err := s.db.SelectContext(ctx, &rows, query, status); err != nil {
		return nil, fmt.Errorf("failed to list %s models: %w", status, err)
	}

	models := make([]*matching.CompatibilityModel, 0, len(rows))
	for _, row := range rows {
		m, err := row.decode()
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}
