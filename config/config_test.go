package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30, cfg.RateLimit.PerMinute)
	assert.Equal(t, 10000, cfg.RateLimit.MaxKeys)
	assert.Equal(t, 60*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, "gpt-4o-mini-tts", cfg.TTS.Model)
	assert.Equal(t, "alloy", cfg.TTS.Voice)
	assert.Equal(t, "data/media", cfg.Media.Root)
	assert.Equal(t, "/media", cfg.Media.BaseURL)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.True(t, cfg.Logging.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Endpoint)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("STORAGE_TYPE", "postgresql")
	t.Setenv("STORAGE_POSTGRES_URL", "postgres://localhost/lessonforge")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5, cfg.RateLimit.PerMinute)
	assert.Equal(t, "gsk-test", cfg.Providers.GroqAPIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Providers.GeminiModel)
	assert.Equal(t, "postgresql", cfg.Storage.Type)
	assert.Equal(t, "postgres://localhost/lessonforge", cfg.Storage.PostgresURL)
}

func TestLoad_ProvidersDisabledWithoutKeys(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Providers.GroqAPIKey)
	assert.Empty(t, cfg.Providers.GeminiAPIKey)
	assert.Empty(t, cfg.Providers.OpenAIAPIKey)
}
