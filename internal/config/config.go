package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	AppMode   string
	Port      string
	LogLevel  string
	Database  DatabaseConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	Mail      MailConfig
	Policy    PolicyConfig
	Scheduler SchedulerConfig
	Dispatch  DispatchConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret          string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure      bool
	SameSite    string
	Domain      string
	AccessName  string
	RefreshName string
}

// MailConfig holds outgoing mail configuration
type MailConfig struct {
	Enabled     bool
	From        string
	FromName    string
	SMTP        SMTPConfig
	Retry       RetryConfig
	Church      ChurchInfo
	ReminderURL string
}

// SMTPConfig holds SMTP server settings
type SMTPConfig struct {
	Host           string
	Port           int
	Username       string
	Password       string
	Auth           bool
	StartTLS       bool
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
}

// RetryConfig controls exponential backoff of email attempts
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
}

// ChurchInfo is printed in the footer of every email
type ChurchInfo struct {
	Name  string
	Phone string
	Email string
}

// PolicyConfig holds the membership policy thresholds
type PolicyConfig struct {
	MaxConsecutiveMissed  int
	ReminderLeadDays      int
	ReactivationGraceDays int
	MinimumPaymentAmount  decimal.Decimal
}

// SchedulerConfig holds cron specs for background jobs
type SchedulerConfig struct {
	Enabled           bool
	CounterSpec       string
	DeactivationSpec  string
	ReminderSpec      string
	TokenCleanupSpec  string
	ReminderThreshold int
}

// DispatchConfig sizes the delivery worker pool
type DispatchConfig struct {
	Workers          int
	QueueSize        int
	RecipientPacing  time.Duration
	RecoverOnStartup bool
}

// RateLimitConfig holds per-minute request budgets per client IP
type RateLimitConfig struct {
	APIPerMinute  int
	AuthPerMinute int
	BulkPerMinute int
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("⚠️ .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	policy, err := loadPolicyConfig()
	if err != nil {
		return nil, err
	}

	// Build config based on APP_MODE
	config := &Config{
		AppMode:   appMode,
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Database:  loadDatabaseConfig(appMode),
		JWT:       loadJWTConfig(appMode),
		Cookie:    loadCookieConfig(appMode),
		Mail:      loadMailConfig(),
		Policy:    policy,
		Scheduler: loadSchedulerConfig(),
		Dispatch:  loadDispatchConfig(),
		RateLimit: RateLimitConfig{
			APIPerMinute:  getEnvInt("RATE_LIMIT_API_PER_MINUTE", 100),
			AuthPerMinute: getEnvInt("RATE_LIMIT_AUTH_PER_MINUTE", 5),
			BulkPerMinute: getEnvInt("RATE_LIMIT_BULK_PER_MINUTE", 3),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Set global config
	AppConfig = config

	log.Info().Str("mode", appMode).Msg("✅ Configuration loaded successfully")
	return config, nil
}

// Validate rejects settings the application cannot run with
func (c *Config) Validate() error {
	if c.IsProd() && (c.JWT.Secret == defaultJWTSecret || c.JWT.RefreshSecret == defaultRefreshSecret) {
		return fmt.Errorf("JWT secrets must be set in prod mode")
	}
	if c.Mail.Retry.MaxAttempts < 1 {
		return fmt.Errorf("MAIL_RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.Mail.Retry.Multiplier < 1 {
		return fmt.Errorf("MAIL_RETRY_MULTIPLIER must be at least 1")
	}
	if c.Dispatch.Workers < 1 {
		return fmt.Errorf("DISPATCH_WORKERS must be at least 1")
	}
	if c.Policy.MaxConsecutiveMissed < 1 {
		return fmt.Errorf("POLICY_MAX_CONSECUTIVE_MISSED must be at least 1")
	}
	return nil
}

const (
	defaultJWTSecret     = "default_secret"
	defaultRefreshSecret = "default_refresh_secret"
)

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "membertracker"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	accessSecs := getEnvInt("ACCESS_TOKEN_SECONDS", 1800)
	refreshDays := getEnvInt("REFRESH_TOKEN_DAYS", 30)

	return JWTConfig{
		Secret:          getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		RefreshSecret:   getEnv(prefix+"JWT_REFRESH_SECRET", defaultRefreshSecret),
		AccessTokenTTL:  time.Duration(accessSecs) * time.Second,
		RefreshTokenTTL: time.Duration(refreshDays) * 24 * time.Hour,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := modePrefix(mode)

	return CookieConfig{
		Secure:      getEnvBool(prefix+"COOKIE_SECURE", mode == "prod"),
		SameSite:    getEnv("COOKIE_SAMESITE", "lax"),
		Domain:      getEnv("COOKIE_DOMAIN", ""),
		AccessName:  getEnv("COOKIE_ACCESS_NAME", "sid"),
		RefreshName: getEnv("COOKIE_REFRESH_NAME", "sid_refresh"),
	}
}

func loadMailConfig() MailConfig {
	return MailConfig{
		Enabled:  getEnvBool("MAIL_ENABLED", false),
		From:     getEnv("MAIL_FROM", "noreply@church.example.com"),
		FromName: getEnv("MAIL_FROM_NAME", "Felege Selam Church"),
		SMTP: SMTPConfig{
			Host:           getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:           getEnvInt("SMTP_PORT", 587),
			Username:       getEnv("SMTP_USERNAME", ""),
			Password:       getEnv("SMTP_PASSWORD", ""),
			Auth:           getEnvBool("SMTP_AUTH", true),
			StartTLS:       getEnvBool("SMTP_STARTTLS", true),
			ConnectTimeout: time.Duration(getEnvInt("SMTP_CONNECT_TIMEOUT_MS", 5000)) * time.Millisecond,
			WriteTimeout:   time.Duration(getEnvInt("SMTP_WRITE_TIMEOUT_MS", 5000)) * time.Millisecond,
		},
		Retry: RetryConfig{
			MaxAttempts:  getEnvInt("MAIL_RETRY_MAX_ATTEMPTS", 3),
			InitialDelay: time.Duration(getEnvInt("MAIL_RETRY_INITIAL_DELAY_MS", 1000)) * time.Millisecond,
			Multiplier:   getEnvFloat("MAIL_RETRY_MULTIPLIER", 2.0),
			MaxDelay:     time.Duration(getEnvInt("MAIL_RETRY_MAX_DELAY_MS", 10000)) * time.Millisecond,
		},
		Church: ChurchInfo{
			Name:  getEnv("CHURCH_NAME", "Felege Selam Church"),
			Phone: getEnv("CHURCH_PHONE", "(555) 123-4567"),
			Email: getEnv("CHURCH_EMAIL", "office@church.example.com"),
		},
		ReminderURL: getEnv("MAIL_PAYMENT_URL", ""),
	}
}

func loadPolicyConfig() (PolicyConfig, error) {
	minimum, err := decimal.NewFromString(getEnv("POLICY_MINIMUM_PAYMENT_AMOUNT", "10.00"))
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("invalid POLICY_MINIMUM_PAYMENT_AMOUNT: %w", err)
	}
	return PolicyConfig{
		MaxConsecutiveMissed:  getEnvInt("POLICY_MAX_CONSECUTIVE_MISSED", 3),
		ReminderLeadDays:      getEnvInt("POLICY_REMINDER_LEAD_DAYS", 7),
		ReactivationGraceDays: getEnvInt("POLICY_REACTIVATION_GRACE_DAYS", 30),
		MinimumPaymentAmount:  minimum,
	}, nil
}

func loadSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           getEnvBool("SCHEDULER_ENABLED", true),
		CounterSpec:       getEnv("SCHEDULER_COUNTER_SPEC", "0 6 * * *"),
		DeactivationSpec:  getEnv("SCHEDULER_DEACTIVATION_SPEC", "30 6 * * *"),
		ReminderSpec:      getEnv("SCHEDULER_REMINDER_SPEC", "0 9 * * *"),
		TokenCleanupSpec:  getEnv("SCHEDULER_TOKEN_CLEANUP_SPEC", "0 3 * * *"),
		ReminderThreshold: getEnvInt("SCHEDULER_REMINDER_THRESHOLD", 2),
	}
}

func loadDispatchConfig() DispatchConfig {
	return DispatchConfig{
		Workers:          getEnvInt("DISPATCH_WORKERS", 4),
		QueueSize:        getEnvInt("DISPATCH_QUEUE_SIZE", 64),
		RecipientPacing:  time.Duration(getEnvInt("DISPATCH_RECIPIENT_PACING_MS", 100)) * time.Millisecond,
		RecoverOnStartup: getEnvBool("DISPATCH_RECOVER_PENDING", true),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://members.church.example.com"
	}
	return origins
}
