// cmd/dbcheck/main.go
// Verifies the database from .env is reachable and reports engine table status

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/imadgeboyega/kiekky-kinship/internal/common/database"
	"github.com/imadgeboyega/kiekky-kinship/internal/learning"
	"github.com/imadgeboyega/kiekky-kinship/internal/logging"
)

var engineTables = []string{"cultural_profiles", "activities", "model_feedback", "model_versions"}

func main() {
	envFile := flag.String("env", ".env", "environment file to load")
	timeout := flag.Duration("timeout", 10*time.Second, "connection timeout")
	flag.Parse()

	logging.Init(logging.Config{Level: "info", Format: "console", Timestamp: true})

	if err := godotenv.Load(*envFile); err != nil {
		logging.Warn().Err(err).Str("file", *envFile).Msg("No env file loaded, using environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logging.Fatal().Msg("DATABASE_URL not found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.NewPostgresDBFromURL(ctx, dbURL, database.DefaultPoolConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Can't reach database")
	}
	defer db.Close()
	logging.Info().Msg("Connected to database")

	for _, table := range engineTables {
		var exists bool
		err := db.GetContext(ctx, &exists, `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)`, table)
		if err != nil {
			logging.Fatal().Err(err).Str("table", table).Msg("Table check failed")
		}
		if !exists {
			logging.Warn().Str("table", table).Msg("Missing table; start the API with RUN_MIGRATIONS=true")
			continue
		}

		var rows int64
		if err := db.GetContext(ctx, &rows, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
			logging.Fatal().Err(err).Str("table", table).Msg("Row count failed")
		}
		logging.Info().Str("table", table).Int64("rows", rows).Msg("Table present")
	}

	active, err := learning.NewPostgresModelStore(db).GetActive(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("No active model persisted yet")
		return
	}
	logging.Info().Str("version", active.Version).Time("created_at", active.CreatedAt).Msg("Active model")
}
