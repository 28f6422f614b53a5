package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/imadgeboyega/kiekky-kinship/internal/logging"
)

// migrations are idempotent and run in order on every start
var migrations = []string{
	// Cultural profile snapshots, written by the member-facing application
	`CREATE TABLE IF NOT EXISTS cultural_profiles (
		id VARCHAR(64) PRIMARY KEY,
		display_name VARCHAR(255) NOT NULL DEFAULT '',
		region VARCHAR(100) NOT NULL DEFAULT '',
		communication_style VARCHAR(50) NOT NULL DEFAULT '',
		interests TEXT[] NOT NULL DEFAULT '{}',
		heritage_attachment DOUBLE PRECISION NOT NULL DEFAULT 0,
		tradition_adherence DOUBLE PRECISION NOT NULL DEFAULT 0,
		family_centrality DOUBLE PRECISION NOT NULL DEFAULT 0,
		affinity_capacity DOUBLE PRECISION NOT NULL DEFAULT 0,
		language_tier SMALLINT NOT NULL DEFAULT 0,
		emotional_indicators TEXT[] NOT NULL DEFAULT '{}',
		about TEXT NOT NULL DEFAULT '',
		humor_style VARCHAR(50) NOT NULL DEFAULT '',
		conflict_style VARCHAR(50) NOT NULL DEFAULT '',
		conversation_rhythm VARCHAR(50) NOT NULL DEFAULT '',
		future_goals TEXT[] NOT NULL DEFAULT '{}',
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cultural_profiles_region ON cultural_profiles(region)`,
	`CREATE INDEX IF NOT EXISTS idx_cultural_profiles_updated ON cultural_profiles(updated_at DESC)`,

	// Activity catalog
	`CREATE TABLE IF NOT EXISTS activities (
		id VARCHAR(64) PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		interest_tags TEXT[] NOT NULL DEFAULT '{}',
		region VARCHAR(100) NOT NULL DEFAULT '',
		cultural_focus BOOLEAN NOT NULL DEFAULT FALSE,
		starts_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_starts_at ON activities(starts_at)`,

	// Observed outcomes awaiting the learning loop
	`CREATE TABLE IF NOT EXISTS model_feedback (
		id VARCHAR(64) PRIMARY KEY,
		profile_a VARCHAR(64) NOT NULL,
		profile_b VARCHAR(64) NOT NULL,
		outcome VARCHAR(20) NOT NULL CHECK (outcome IN ('positive', 'neutral', 'negative')),
		rating DOUBLE PRECISION,
		predicted_score DOUBLE PRECISION NOT NULL,
		sub_scores JSONB NOT NULL DEFAULT '{}',
		model_version VARCHAR(64) NOT NULL,
		recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		processed_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_model_feedback_pending ON model_feedback(recorded_at, id) WHERE processed_at IS NULL`,

	// Compatibility model versions and their lifecycle
	`CREATE TABLE IF NOT EXISTS model_versions (
		version VARCHAR(64) PRIMARY KEY,
		parent_version VARCHAR(64),
		status VARCHAR(20) NOT NULL CHECK (status IN ('draft', 'active', 'retired')),
		definition JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_model_versions_status ON model_versions(status)`,
}

func runMigrations(ctx context.Context, db *sqlx.DB) error {
	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	logging.Info().Int("statements", len(migrations)).Msg("Migrations applied")
	return nil
}
