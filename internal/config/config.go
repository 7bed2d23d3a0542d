package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	HTTPAddr      string
	DatabaseURL   string
	MigrationsDir string
	CORSAllowAll  bool
	CORSOrigins   []string

	// Task queue
	RedisURL         string
	AsynqQueue       string
	AsynqConcurrency int

	// Lead distribution
	QuotaBaseline        int
	QuotaElevated        int
	AssignmentLockTTL    time.Duration
	ShortExpiryWindow    time.Duration
	LongExpiryWindow     time.Duration
	HiredLockDuration    time.Duration
	CoolOffLockDuration  time.Duration
	DistributionInterval time.Duration

	// Campaign batches
	BatchSize         int
	SendDelay         time.Duration
	BatchRequeueDelay time.Duration

	// Outreach channels
	SMSAPIURL        string
	SMSAPIKey        string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromName    string
	EmailFromAddress string
	EmailSubject     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		CORSAllowAll:  strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true"),
		CORSOrigins:   splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200")),

		RedisURL:         getEnv("REDIS_URL", ""),
		AsynqQueue:       getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: getPositiveInt("ASYNQ_CONCURRENCY", 10),

		QuotaBaseline:        getPositiveInt("QUOTA_BASELINE", 50),
		QuotaElevated:        getPositiveInt("QUOTA_ELEVATED", 200),
		AssignmentLockTTL:    getDuration("ASSIGNMENT_LOCK_TTL", 24*time.Hour),
		ShortExpiryWindow:    getDuration("SHORT_EXPIRY_WINDOW", 24*time.Hour),
		LongExpiryWindow:     getDuration("LONG_EXPIRY_WINDOW", 7*24*time.Hour),
		HiredLockDuration:    getDuration("HIRED_LOCK_DURATION", 60*24*time.Hour),
		CoolOffLockDuration:  getDuration("COOLOFF_LOCK_DURATION", 7*24*time.Hour),
		DistributionInterval: getDuration("DISTRIBUTION_INTERVAL", 24*time.Hour),

		BatchSize:         getPositiveInt("CAMPAIGN_BATCH_SIZE", 20),
		SendDelay:         getDuration("CAMPAIGN_SEND_DELAY", 3*time.Second),
		BatchRequeueDelay: getDuration("CAMPAIGN_REQUEUE_DELAY", 5*time.Second),

		SMSAPIURL:        getEnv("SMS_API_URL", ""),
		SMSAPIKey:        getEnv("SMS_API_KEY", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getPositiveInt("SMTP_PORT", 587),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Lead Market"),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailSubject:     getEnv("EMAIL_SUBJECT", "New opportunity"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.QuotaElevated < cfg.QuotaBaseline {
		return nil, fmt.Errorf("QUOTA_ELEVATED cannot be below QUOTA_BASELINE")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getPositiveInt(key string, fallback int) int {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}
