// internal/config/config.go
// Centralized configuration management
// Loads from environment variables with sensible defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names
const (
	ProviderMock     = "mock"
	ProviderNone     = "none"
	ProviderSendGrid = "sendgrid"
	ProviderTwilio   = "twilio"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	RateLimit       int
	RateLimitWindow time.Duration

	// Database
	DatabaseURL     string
	RedisURL        string
	ProfileCacheTTL time.Duration
	RunMigrations   bool

	// Reference artifact: a local YAML path, or an S3 object when the bucket is set
	ReferenceFile     string
	ReferenceS3Bucket string
	ReferenceS3Key    string
	AWSRegion         string

	// Logging
	LogLevel  string
	LogFormat string
	LogCaller bool

	// Engine
	EngineWorkers  int
	CandidateLimit int
	ActivityLimit  int

	// Feedback drain
	EnableScheduler    bool
	FeedbackInterval   time.Duration
	FeedbackBatchSize  int
	FeedbackTimeBudget time.Duration

	// Draft-review notifications
	EmailProvider  string
	EmailFrom      string
	EmailFromName  string
	SendGridAPIKey string
	ReviewerEmails []string

	SMSProvider      string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	ReviewerPhones   []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		// Server
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ReadTimeout:     getEnvDuration("READ_TIMEOUT", "15s"),
		WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", "15s"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", "30s"),
		CORSOrigins:     getEnvList("CORS_ORIGINS", "*"),
		RateLimit:       getEnvInt("RATE_LIMIT_REQUESTS", 300),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", "1m"),

		// Database
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		ProfileCacheTTL: getEnvDuration("PROFILE_CACHE_TTL", "5m"),
		RunMigrations:   getEnvBool("RUN_MIGRATIONS", true),

		// Reference artifact
		ReferenceFile:     getEnv("REFERENCE_FILE", "configs/reference.yaml"),
		ReferenceS3Bucket: getEnv("REFERENCE_S3_BUCKET", ""),
		ReferenceS3Key:    getEnv("REFERENCE_S3_KEY", "reference.yaml"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogCaller: getEnvBool("LOG_CALLER", false),

		// Engine
		EngineWorkers:  getEnvInt("ENGINE_WORKERS", 0),
		CandidateLimit: getEnvInt("CANDIDATE_LIMIT", 200),
		ActivityLimit:  getEnvInt("ACTIVITY_LIMIT", 100),

		// Feedback drain
		EnableScheduler:    getEnvBool("ENABLE_LEARNING_SCHEDULER", true),
		FeedbackInterval:   getEnvDuration("FEEDBACK_DRAIN_INTERVAL", "5m"),
		FeedbackBatchSize:  getEnvInt("FEEDBACK_BATCH_SIZE", 1000),
		FeedbackTimeBudget: getEnvDuration("FEEDBACK_TIME_BUDGET", "10s"),

		// Notifications
		EmailProvider:  getEnv("EMAIL_PROVIDER", ProviderMock),
		EmailFrom:      getEnv("EMAIL_FROM", "models@kinship.local"),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Kinship"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		ReviewerEmails: getEnvList("REVIEWER_EMAILS", ""),

		SMSProvider:      getEnv("SMS_PROVIDER", ProviderNone),
		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		ReviewerPhones:   getEnvList("REVIEWER_PHONES", ""),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is required")
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.RateLimit > 0 && c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window must be positive")
	}

	// Reference artifact
	if c.ReferenceS3Bucket != "" && c.ReferenceS3Key == "" {
		return fmt.Errorf("reference S3 key is required when a bucket is set")
	}

	// Engine
	if c.EngineWorkers < 0 {
		return fmt.Errorf("engine workers must not be negative")
	}
	if c.CandidateLimit < 1 || c.CandidateLimit > 5000 {
		return fmt.Errorf("candidate limit must be between 1 and 5000")
	}
	if c.ActivityLimit < 1 || c.ActivityLimit > 1000 {
		return fmt.Errorf("activity limit must be between 1 and 1000")
	}

	// Feedback drain
	if c.EnableScheduler {
		if c.FeedbackInterval < time.Second {
			return fmt.Errorf("feedback drain interval must be at least 1s")
		}
		if c.FeedbackBatchSize < 1 {
			return fmt.Errorf("feedback batch size must be positive")
		}
		if c.FeedbackTimeBudget < 0 {
			return fmt.Errorf("feedback time budget must not be negative")
		}
	}

	// Email validation
	switch c.EmailProvider {
	case ProviderSendGrid:
		if c.SendGridAPIKey == "" || c.EmailFrom == "" {
			return fmt.Errorf("SendGrid configuration incomplete")
		}
		if len(c.ReviewerEmails) == 0 {
			return fmt.Errorf("reviewer emails are required with the SendGrid provider")
		}
	case ProviderMock:
		if c.IsProduction() {
			return fmt.Errorf("mock email provider cannot be used in production")
		}
	case ProviderNone:
	default:
		return fmt.Errorf("invalid email provider: %s", c.EmailProvider)
	}

	// SMS validation
	switch c.SMSProvider {
	case ProviderTwilio:
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioFromNumber == "" {
			return fmt.Errorf("Twilio configuration incomplete")
		}
		if len(c.ReviewerPhones) == 0 {
			return fmt.Errorf("reviewer phones are required with the Twilio provider")
		}
	case ProviderMock:
		if c.IsProduction() {
			return fmt.Errorf("mock SMS provider cannot be used in production")
		}
	case ProviderNone, "":
	default:
		return fmt.Errorf("invalid SMS provider: %s", c.SMSProvider)
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Helper functions

// getEnv gets a string value from environment with a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment with a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration value from environment with a default
func getEnvDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		// If parsing fails, try to parse the default
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

// getEnvBool gets a boolean value from environment with a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping empty entries
func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
