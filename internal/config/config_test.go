package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "s3cret")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("PLAN_YEAR", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, 2026, cfg.PlanYear)
	assert.Equal(t, "America/Sao_Paulo", cfg.PlanTimezone)
	assert.Equal(t, 720*time.Hour, cfg.SessionDuration)
	assert.Equal(t, int64(2*1024*1024), cfg.AvatarMaxBytes)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 7, cfg.ReminderHour)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "s3cret")
	t.Setenv("PLAN_YEAR", "2028")
	t.Setenv("SESSION_DURATION", "2h")
	t.Setenv("DATABASE_TYPE", "LOCAL")
	t.Setenv("APP_BASE_URL", "https://otw.example.com/")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()

	assert.Equal(t, 2028, cfg.PlanYear)
	assert.Equal(t, 2*time.Hour, cfg.SessionDuration)
	assert.Equal(t, "local", cfg.DatabaseType)
	assert.Equal(t, "https://otw.example.com", cfg.AppBaseURL)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
}

func TestDebugGeneratesSecret(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "")
	t.Setenv("DEBUG", "true")

	cfg := Load()
	assert.Len(t, cfg.TokenSecret, 64)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabaseType:       "sqlite",
			PlanYear:           2026,
			PlanTimezone:       "UTC",
			TokenSecret:        "x",
			SessionDuration:    time.Hour,
			ReminderHour:       7,
			RateLimitPerMinute: 30,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"postgres without url", func(c *Config) { c.DatabaseType = "postgres" }, "DATABASE_URL"},
		{"unknown database", func(c *Config) { c.DatabaseType = "oracle" }, "unsupported DATABASE_TYPE"},
		{"year out of range", func(c *Config) { c.PlanYear = 12 }, "PLAN_YEAR"},
		{"bad timezone", func(c *Config) { c.PlanTimezone = "Mars/Olympus" }, "PLAN_TIMEZONE"},
		{"missing secret", func(c *Config) { c.TokenSecret = "" }, "TOKEN_SECRET"},
		{"reminder hour", func(c *Config) { c.ReminderHour = 24 }, "REMINDER_HOUR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("OTW_TEST_ONLY_KEY=hello\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("OTW_TEST_ONLY_KEY") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("OTW_TEST_ONLY_KEY"))

	assert.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
