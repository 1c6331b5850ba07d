// Package config provides configuration management for the application.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig
	RateLimit RateLimitConfig
	Providers ProvidersConfig
	TTS       TTSConfig
	Media     MediaConfig
	Storage   StorageConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port          string
	BodySizeLimit int64
}

// RateLimitConfig holds sliding-window rate limiter configuration
type RateLimitConfig struct {
	PerMinute int
	MaxKeys   int
}

// ProvidersConfig holds per-provider credentials and model overrides.
// An empty API key disables the provider entirely.
type ProvidersConfig struct {
	GroqAPIKey   string
	GroqModel    string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string

	// Timeout bounds each individual provider attempt so a hung provider
	// cannot stall the whole fallback chain.
	Timeout time.Duration
}

// TTSConfig holds narration synthesis configuration
type TTSConfig struct {
	// Model is the preferred synthesis model. When the backend rejects it,
	// the adapter retries once with the hardcoded fallback (tts-1).
	Model string
	Voice string
}

// MediaConfig holds media artifact storage configuration
type MediaConfig struct {
	// Root is the directory artifacts are written under
	Root string
	// BaseURL is the public URL prefix artifacts are served from
	BaseURL string
	// FFmpegPath and FFprobePath override binary lookup on PATH
	FFmpegPath  string
	FFprobePath string
	// FontPath optionally points at a TTF for the caption renderer
	FontPath string
}

// StorageConfig selects the interaction log backend
type StorageConfig struct {
	// Type is one of "sqlite", "postgresql", "mongodb"
	Type string

	SQLitePath    string
	PostgresURL   string
	MongoURL      string
	MongoDatabase string
}

// LoggingConfig holds interaction logging configuration
type LoggingConfig struct {
	Enabled       bool
	BufferSize    int
	FlushInterval time.Duration
	RetentionDays int
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled  bool
	Endpoint string
}

// DefaultBodySizeLimit is the max request body size in bytes (1MB).
// Completion and video requests are small JSON documents.
const DefaultBodySizeLimit int64 = 1 << 20

// Load reads configuration from the environment, with an optional .env
// file in the working directory. Environment variables always win.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // .env is optional

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	viper.SetDefault("RATE_LIMIT_MAX_KEYS", 10000)
	viper.SetDefault("PROVIDER_TIMEOUT_SECONDS", 60)
	viper.SetDefault("OPENAI_TTS_MODEL", "gpt-4o-mini-tts")
	viper.SetDefault("TTS_VOICE", "alloy")
	viper.SetDefault("MEDIA_ROOT", "data/media")
	viper.SetDefault("MEDIA_BASE_URL", "/media")
	viper.SetDefault("STORAGE_TYPE", "sqlite")
	viper.SetDefault("STORAGE_SQLITE_PATH", "data/lessonforge.db")
	viper.SetDefault("STORAGE_MONGO_DATABASE", "lessonforge")
	viper.SetDefault("LOGGING_ENABLED", true)
	viper.SetDefault("LOGGING_BUFFER_SIZE", 1000)
	viper.SetDefault("LOGGING_FLUSH_INTERVAL_SECONDS", 5)
	viper.SetDefault("LOGGING_RETENTION_DAYS", 30)
	viper.SetDefault("METRICS_ENDPOINT", "/metrics")

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:          viper.GetString("PORT"),
			BodySizeLimit: viper.GetInt64("BODY_SIZE_LIMIT"),
		},
		RateLimit: RateLimitConfig{
			PerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
			MaxKeys:   viper.GetInt("RATE_LIMIT_MAX_KEYS"),
		},
		Providers: ProvidersConfig{
			GroqAPIKey:   viper.GetString("GROQ_API_KEY"),
			GroqModel:    viper.GetString("GROQ_MODEL"),
			GeminiAPIKey: viper.GetString("GEMINI_API_KEY"),
			GeminiModel:  viper.GetString("GEMINI_MODEL"),
			OpenAIAPIKey: viper.GetString("OPENAI_API_KEY"),
			OpenAIModel:  viper.GetString("OPENAI_MODEL"),
			Timeout:      time.Duration(viper.GetInt("PROVIDER_TIMEOUT_SECONDS")) * time.Second,
		},
		TTS: TTSConfig{
			Model: viper.GetString("OPENAI_TTS_MODEL"),
			Voice: viper.GetString("TTS_VOICE"),
		},
		Media: MediaConfig{
			Root:        viper.GetString("MEDIA_ROOT"),
			BaseURL:     viper.GetString("MEDIA_BASE_URL"),
			FFmpegPath:  viper.GetString("FFMPEG_PATH"),
			FFprobePath: viper.GetString("FFPROBE_PATH"),
			FontPath:    viper.GetString("CAPTION_FONT"),
		},
		Storage: StorageConfig{
			Type:          viper.GetString("STORAGE_TYPE"),
			SQLitePath:    viper.GetString("STORAGE_SQLITE_PATH"),
			PostgresURL:   viper.GetString("STORAGE_POSTGRES_URL"),
			MongoURL:      viper.GetString("STORAGE_MONGO_URL"),
			MongoDatabase: viper.GetString("STORAGE_MONGO_DATABASE"),
		},
		Logging: LoggingConfig{
			Enabled:       viper.GetBool("LOGGING_ENABLED"),
			BufferSize:    viper.GetInt("LOGGING_BUFFER_SIZE"),
			FlushInterval: time.Duration(viper.GetInt("LOGGING_FLUSH_INTERVAL_SECONDS")) * time.Second,
			RetentionDays: viper.GetInt("LOGGING_RETENTION_DAYS"),
		},
		Metrics: MetricsConfig{
			Enabled:  viper.GetBool("METRICS_ENABLED"),
			Endpoint: viper.GetString("METRICS_ENDPOINT"),
		},
	}

	return cfg, nil
}
