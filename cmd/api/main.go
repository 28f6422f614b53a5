// cmd/api/main.go
// Main entry point for the compatibility API
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/imadgeboyega/kiekky-kinship/internal/activity"
	"github.com/imadgeboyega/kiekky-kinship/internal/common/database"
	"github.com/imadgeboyega/kiekky-kinship/internal/config"
	"github.com/imadgeboyega/kiekky-kinship/internal/engine"
	"github.com/imadgeboyega/kiekky-kinship/internal/learning"
	"github.com/imadgeboyega/kiekky-kinship/internal/logging"
	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
	notifications "github.com/imadgeboyega/kiekky-kinship/internal/notification"
	"github.com/imadgeboyega/kiekky-kinship/internal/profile"
	"github.com/imadgeboyega/kiekky-kinship/internal/reference"
)

func main() {
	// 1. Load environment variables
	envErr := godotenv.Load()

	// 2. Load configuration and logging
	cfg := config.Load()
	logging.Init(logging.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Caller:    cfg.LogCaller,
		Timestamp: true,
	})
	if envErr != nil {
		logging.Warn().Err(envErr).Msg("No .env file found, using environment variables")
	}

	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("Configuration validation failed")
	}
	logging.Info().Str("environment", cfg.Environment).Msg("Starting Kinship compatibility API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Connect to PostgreSQL
	db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()
	logging.Info().Msg("Connected to PostgreSQL")

	if cfg.RunMigrations {
		if err := runMigrations(ctx, db); err != nil {
			logging.Fatal().Err(err).Msg("Failed to run migrations")
		}
		logging.Info().Msg("Database migrations completed")
	}

	// 4. Load the reference artifact
	artifact, err := loadArtifact(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load reference artifact")
	}
	components, err := artifact.Build()
	if err != nil {
		logging.Fatal().Err(err).Str("version", artifact.Version).Msg("Reference artifact is invalid")
	}

	// 5. Profile store, optionally behind Redis
	var profiles profile.Repository = profile.NewPostgresRepository(db)
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			logging.Warn().Err(err).Msg("Redis unavailable, continuing without profile cache")
		} else {
			defer redisClient.Close()
			profiles = profile.NewCachedRepository(profiles, redisClient, cfg.ProfileCacheTTL)
			logging.Info().Msg("Connected to Redis")
		}
	}

	// 6. Learning loop, model registry and stores
	feedbackStore := learning.NewPostgresFeedbackStore(db)
	modelStore := learning.NewPostgresModelStore(db)

	registry, err := restoreRegistry(ctx, modelStore, components.Model)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to restore model registry")
	}

	eng := engine.New(components, learning.NewLoop(), cfg.EngineWorkers)

	scheduler := learning.NewScheduler(feedbackStore, modelStore, eng.Loop(), registry, buildNotifier(cfg), learning.SchedulerConfig{
		Interval:   cfg.FeedbackInterval,
		BatchSize:  cfg.FeedbackBatchSize,
		TimeBudget: cfg.FeedbackTimeBudget,
	})
	if cfg.EnableScheduler {
		go scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	// 7. HTTP surface
	service := engine.NewService(engine.Dependencies{
		Engine:         eng,
		Profiles:       profiles,
		Activities:     activity.NewPostgresRepository(db),
		Feedback:       feedbackStore,
		Models:         modelStore,
		Registry:       registry,
		Scheduler:      scheduler,
		CandidateLimit: cfg.CandidateLimit,
		ActivityLimit:  cfg.ActivityLimit,
	})
	router := engine.NewRouter(engine.NewHandler(service), engine.RouterConfig{
		CORSOrigins:     cfg.CORSOrigins,
		RateLimit:       cfg.RateLimit,
		RateLimitWindow: cfg.RateLimitWindow,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logging.Info().
			Str("port", cfg.Port).
			Str("reference_version", components.Version).
			Str("model_version", registry.Active().Version).
			Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logging.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}
	logging.Info().Msg("Server stopped")
}

// loadArtifact reads the reference artifact from S3 when a bucket is
// configured, otherwise from the local file
func loadArtifact(cfg *config.Config) (*reference.Artifact, error) {
	if cfg.ReferenceS3Bucket == "" {
		return reference.LoadFile(cfg.ReferenceFile)
	}
	src, err := reference.NewS3Provider(cfg.AWSRegion, cfg.ReferenceS3Bucket, cfg.ReferenceS3Key)
	if err != nil {
		return nil, err
	}
	return reference.Load(src)
}

// restoreRegistry resumes from the persisted active model and pending drafts.
// On first start the artifact's model is persisted as the active version.
func restoreRegistry(ctx context.Context, store learning.ModelStore, initial *matching.CompatibilityModel) (*learning.Registry, error) {
	active, err := store.GetActive(ctx)
	switch {
	case errors.Is(err, learning.ErrModelNotFound):
		active = initial.Clone()
		active.Status = matching.StatusActive
		if err := store.SaveModel(ctx, active); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	registry, err := learning.NewRegistry(active)
	if err != nil {
		return nil, err
	}

	drafts, err := store.ListByStatus(ctx, matching.StatusDraft)
	if err != nil {
		return nil, err
	}
	for _, d := range drafts {
		if err := registry.Submit(d); err != nil {
			logging.Warn().Err(err).Str("version", d.Version).Msg("Skipping stored draft")
		}
	}
	return registry, nil
}

// buildNotifier picks the draft-review channels. With no provider
// configured, reviews are only logged.
func buildNotifier(cfg *config.Config) learning.DraftNotifier {
	var email notifications.EmailService
	switch cfg.EmailProvider {
	case config.ProviderSendGrid:
		svc, err := notifications.NewSendGridEmailService(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName)
		if err != nil {
			logging.Warn().Err(err).Msg("SendGrid unavailable")
		} else {
			email = svc
		}
	case config.ProviderMock:
		email = notifications.NewMockEmailService()
	}

	var sms notifications.SMSService
	switch cfg.SMSProvider {
	case config.ProviderTwilio:
		svc, err := notifications.NewTwilioSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		if err != nil {
			logging.Warn().Err(err).Msg("Twilio unavailable")
		} else {
			sms = svc
		}
	case config.ProviderMock:
		sms = notifications.NewMockSMSService()
	}

	n := notifications.NewReviewNotifier(email, sms, cfg.ReviewerEmails, cfg.ReviewerPhones)
	if len(n.Channels()) == 0 {
		return notifications.NewLogNotifier()
	}
	return n
}
