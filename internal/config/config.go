package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	Debug           bool
	AppBaseURL      string
	SessionDuration time.Duration
	TokenSecret     string

	// Database
	DatabaseType   string // sqlite, postgres, mysql or local
	DatabasePath   string
	DatabaseURL    string
	LocalStorePath string

	// Reading plan
	PlanYear     int
	PlanTimezone string

	AvatarMaxBytes     int64
	RateLimitPerMinute int

	// Redis devotional cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisCacheTTL time.Duration

	// Gemini
	GeminiAPIKey       string
	GeminiModel        string
	DevotionalLanguage string

	// Google OAuth
	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string

	// SES reminders
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	ReminderHour int

	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// LoadEnvFile preloads variables from a .env file. A missing default file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		return godotenv.Load()
	}
	return godotenv.Load(path)
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	cfg := &Config{
		ServerPort:      getEnv("PORT", "8080"),
		Debug:           getEnvBool("DEBUG", false),
		AppBaseURL:      strings.TrimSuffix(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),
		SessionDuration: getEnvDuration("SESSION_DURATION", 720*time.Hour),
		TokenSecret:     os.Getenv("TOKEN_SECRET"),

		DatabaseType:   strings.ToLower(getEnv("DATABASE_TYPE", "sqlite")),
		DatabasePath:   getEnv("DB_PATH", "./ontheway.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		LocalStorePath: os.Getenv("LOCAL_STORE_PATH"),

		PlanYear:     getEnvInt("PLAN_YEAR", 2026),
		PlanTimezone: getEnv("PLAN_TIMEZONE", "America/Sao_Paulo"),

		AvatarMaxBytes:     int64(getEnvInt("AVATAR_MAX_BYTES", 2*1024*1024)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisCacheTTL: getEnvDuration("REDIS_CACHE_TTL", 48*time.Hour),

		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		DevotionalLanguage: getEnv("DEVOTIONAL_LANGUAGE", "Português"),

		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectBaseURL: os.Getenv("OAUTH_REDIRECT_BASE_URL"),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: os.Getenv("SES_FROM_EMAIL"),
		SESFromName:  getEnv("SES_FROM_NAME", "On The Way"),
		ReminderHour: getEnvInt("REMINDER_HOUR", 7),

		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogPath:       os.Getenv("LOG_PATH"),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 7),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}

	// Debug runs get an ephemeral secret so sessions work out of the box.
	if cfg.TokenSecret == "" && cfg.Debug {
		cfg.TokenSecret = randomSecret()
	}

	return cfg
}

// Validate reports configuration combinations the server cannot run with
func (c *Config) Validate() error {
	var errs []error

	switch c.DatabaseType {
	case "sqlite", "local":
	case "postgres", "mysql":
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("DATABASE_URL is required for %s", c.DatabaseType))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_TYPE %q", c.DatabaseType))
	}

	if c.PlanYear < 1900 || c.PlanYear > 2999 {
		errs = append(errs, fmt.Errorf("PLAN_YEAR %d out of range", c.PlanYear))
	}
	if _, err := time.LoadLocation(c.PlanTimezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid PLAN_TIMEZONE %q: %w", c.PlanTimezone, err))
	}
	if c.TokenSecret == "" {
		errs = append(errs, errors.New("TOKEN_SECRET must be set"))
	}
	if c.SessionDuration <= 0 {
		errs = append(errs, errors.New("SESSION_DURATION must be positive"))
	}
	if c.ReminderHour < 0 || c.ReminderHour > 23 {
		errs = append(errs, fmt.Errorf("REMINDER_HOUR %d out of range", c.ReminderHour))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}

	return errors.Join(errs...)
}

// Location returns the plan time zone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.PlanTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GoogleOAuthEnabled reports whether Google sign-in is configured
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "insecure-debug-secret"
	}
	return hex.EncodeToString(b)
}
