// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetEmailProvider() string
	GetBrevoAPIKey() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	SMTPConfig
}

// SMTPConfig provides settings for direct SMTP delivery.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
}

// NotificationConfig provides settings for the notification module.
type NotificationConfig interface {
	GetAppBaseURL() string
	GetNotificationMaxRetries() int
	GetNotificationRatePerSecond() float64
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq-backed task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// QualificationConfig provides settings for the lead qualification pipeline.
type QualificationConfig interface {
	GetQualificationBatchSize() int
	GetQualificationInterval() time.Duration
	GetQualificationMaxAttempts() int
	GetQualificationClaimTTL() time.Duration
	GetQualificationStoreTimeout() time.Duration
	GetQualificationNotifyTimeout() time.Duration
	GetQualificationConcurrency() int
	GetQualificationSimulatedDelay() time.Duration
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketRunReports() string
	IsMinIOEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env              string
	HTTPAddr         string
	DatabaseURL      string
	MigrationsOnBoot bool
	JWTAccessSecret  string
	CORSAllowAll     bool
	CORSOrigins      []string
	CORSAllowCreds   bool
	AppBaseURL       string

	EmailEnabled     bool
	EmailProvider    string
	BrevoAPIKey      string
	EmailFromName    string
	EmailFromAddress string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string

	NotificationMaxRetries    int
	NotificationRatePerSecond float64

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int

	QualificationBatchSize      int
	QualificationInterval       time.Duration
	QualificationMaxAttempts    int
	QualificationClaimTTL       time.Duration
	QualificationStoreTimeout   time.Duration
	QualificationNotifyTimeout  time.Duration
	QualificationConcurrency    int
	QualificationSimulatedDelay time.Duration

	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinioBucketRunReports string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetEmailProvider() string    { return c.EmailProvider }
func (c *Config) GetBrevoAPIKey() string      { return c.BrevoAPIKey }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string     { return c.SMTPHost }
func (c *Config) GetSMTPPort() int        { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string { return c.SMTPPassword }

// NotificationConfig implementation
func (c *Config) GetAppBaseURL() string                 { return c.AppBaseURL }
func (c *Config) GetNotificationMaxRetries() int        { return c.NotificationMaxRetries }
func (c *Config) GetNotificationRatePerSecond() float64 { return c.NotificationRatePerSecond }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }

// QualificationConfig implementation
func (c *Config) GetQualificationBatchSize() int              { return c.QualificationBatchSize }
func (c *Config) GetQualificationInterval() time.Duration     { return c.QualificationInterval }
func (c *Config) GetQualificationMaxAttempts() int            { return c.QualificationMaxAttempts }
func (c *Config) GetQualificationClaimTTL() time.Duration     { return c.QualificationClaimTTL }
func (c *Config) GetQualificationStoreTimeout() time.Duration { return c.QualificationStoreTimeout }
func (c *Config) GetQualificationNotifyTimeout() time.Duration {
	return c.QualificationNotifyTimeout
}
func (c *Config) GetQualificationConcurrency() int { return c.QualificationConcurrency }
func (c *Config) GetQualificationSimulatedDelay() time.Duration {
	return c.QualificationSimulatedDelay
}

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string         { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string        { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string        { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool             { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketRunReports() string { return c.MinioBucketRunReports }
func (c *Config) IsMinIOEnabled() bool             { return c.MinIOEndpoint != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")
	emailProvider := strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "brevo")))
	brevoAPIKey := getEnv("BREVO_API_KEY", "")
	smtpHost := getEnv("SMTP_HOST", "")

	providerConfigured := (emailProvider == "brevo" && brevoAPIKey != "") || (emailProvider == "smtp" && smtpHost != "")

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		MigrationsOnBoot: strings.EqualFold(getEnv("MIGRATIONS_ON_BOOT", "true"), "true"),
		JWTAccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:     corsAllowAll,
		CORSOrigins:      corsOrigins,
		CORSAllowCreds:   strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:       getEnv("APP_BASE_URL", "http://localhost:4200"),

		EmailEnabled:     emailEnabled && providerConfigured,
		EmailProvider:    emailProvider,
		BrevoAPIKey:      brevoAPIKey,
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Leads"),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		SMTPHost:         smtpHost,
		SMTPPort:         mustInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),

		NotificationMaxRetries:    mustInt(getEnv("NOTIFICATION_MAX_RETRIES", "3"), 3),
		NotificationRatePerSecond: mustFloat(getEnv("NOTIFICATION_RATE_PER_SECOND", "5"), 5),

		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: mustInt(getEnv("ASYNQ_CONCURRENCY", "10"), 10),

		QualificationBatchSize:      mustInt(getEnv("QUALIFICATION_BATCH_SIZE", "20"), 20),
		QualificationInterval:       mustDuration(getEnv("QUALIFICATION_INTERVAL", "1m")),
		QualificationMaxAttempts:    mustInt(getEnv("QUALIFICATION_MAX_ATTEMPTS", "5"), 5),
		QualificationClaimTTL:       mustDuration(getEnv("QUALIFICATION_CLAIM_TTL", "10m")),
		QualificationStoreTimeout:   mustDuration(getEnv("QUALIFICATION_STORE_TIMEOUT", "5s")),
		QualificationNotifyTimeout:  mustDuration(getEnv("QUALIFICATION_NOTIFY_TIMEOUT", "15s")),
		QualificationConcurrency:    mustInt(getEnv("QUALIFICATION_CONCURRENCY", "1"), 1),
		QualificationSimulatedDelay: mustDuration(getEnv("QUALIFICATION_SIMULATED_DELAY", "0s")),

		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketRunReports: getEnv("MINIO_BUCKET_RUN_REPORTS", "qualification-runs"),
	}

	if err := cfg.validate(emailEnabled); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate(emailRequested bool) error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.EmailProvider != "brevo" && c.EmailProvider != "smtp" {
		return fmt.Errorf("EMAIL_PROVIDER must be brevo or smtp, got %q", c.EmailProvider)
	}
	if emailRequested && !c.EmailEnabled {
		if c.EmailProvider == "smtp" {
			return fmt.Errorf("SMTP_HOST is required when EMAIL_ENABLED is true and EMAIL_PROVIDER is smtp")
		}
		return fmt.Errorf("BREVO_API_KEY is required when EMAIL_ENABLED is true")
	}
	if c.EmailEnabled && c.EmailFromAddress == "" {
		return fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if c.QualificationBatchSize < 1 {
		return fmt.Errorf("QUALIFICATION_BATCH_SIZE must be positive")
	}
	if c.QualificationInterval <= 0 {
		return fmt.Errorf("QUALIFICATION_INTERVAL must be a positive duration")
	}
	if c.QualificationMaxAttempts < 1 {
		return fmt.Errorf("QUALIFICATION_MAX_ATTEMPTS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string, fallback int) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return result
}

func mustFloat(value string, fallback float64) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return result
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

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
