// Package app wires the application together and manages component
// lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"lessonforge/config"
	"lessonforge/internal/gateway"
	"lessonforge/internal/interactionlog"
	"lessonforge/internal/media/artifact"
	"lessonforge/internal/media/caption"
	"lessonforge/internal/media/compose"
	"lessonforge/internal/media/pipeline"
	providerchain "lessonforge/internal/providers/chain"
	"lessonforge/internal/ratelimit"
	"lessonforge/internal/server"
)

// App holds the assembled application. The caller must call Shutdown to
// release resources.
type App struct {
	config       *config.Config
	interactions *interactionlog.Result
	server       *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// New builds the application from configuration
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &App{config: cfg}

	interactions, err := interactionlog.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize interaction logging: %w", err)
	}
	app.interactions = interactions

	chain := providerchain.BuildChain(cfg.Providers)
	synthesizer := providerchain.BuildSynthesizer(cfg.Providers, cfg.TTS)

	videos := pipeline.New(
		caption.NewRenderer(cfg.Media.FontPath),
		synthesizer,
		compose.New(cfg.Media.FFmpegPath, cfg.Media.FFprobePath),
		artifact.New(cfg.Media.Root, cfg.Media.BaseURL),
		cfg.TTS.Voice,
	)

	gw := gateway.New(chain, interactions.Logger, videos)
	limiter := ratelimit.New(cfg.RateLimit.PerMinute, cfg.RateLimit.MaxKeys)

	app.logStartupInfo()

	app.server = server.New(gw, videos, limiter, interactions.Logger, &server.Config{
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsEndpoint: cfg.Metrics.Endpoint,
		BodySizeLimit:   cfg.Server.BodySizeLimit,
		MediaRoot:       cfg.Media.Root,
		MediaBaseURL:    cfg.Media.BaseURL,
	})

	return app, nil
}

// Start starts the HTTP server on the given address. Blocks until the
// server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	slog.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown tears the app down: HTTP server first, then the interaction
// log (which flushes pending records). Idempotent.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	slog.Info("shutting down application...")

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	if a.interactions != nil {
		if err := a.interactions.Close(); err != nil {
			slog.Error("interaction log close error", "error", err)
			errs = append(errs, fmt.Errorf("interaction log close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	slog.Info("application shutdown complete")
	return nil
}

// logStartupInfo logs the effective configuration on startup.
func (a *App) logStartupInfo() {
	cfg := a.config

	if cfg.Metrics.Enabled {
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		slog.Info("prometheus metrics disabled")
	}

	if cfg.Logging.Enabled {
		slog.Info("interaction logging enabled",
			"storage_type", cfg.Storage.Type,
			"retention_days", cfg.Logging.RetentionDays,
		)
	} else {
		slog.Info("interaction logging disabled")
	}

	slog.Info("rate limiting configured",
		"per_minute", cfg.RateLimit.PerMinute,
		"max_keys", cfg.RateLimit.MaxKeys,
	)
	slog.Info("media storage configured",
		"root", cfg.Media.Root,
		"base_url", cfg.Media.BaseURL,
	)
}
