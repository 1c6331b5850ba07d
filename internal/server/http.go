package server

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lessonforge/config"
	"lessonforge/internal/gateway"
	"lessonforge/internal/interactionlog"
	"lessonforge/internal/media/pipeline"
	"lessonforge/internal/ratelimit"
)

// Server wraps the Echo server
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// Config holds server configuration options
type Config struct {
	MetricsEnabled  bool   // Whether to expose the Prometheus metrics endpoint
	MetricsEndpoint string // HTTP path for the metrics endpoint (default: /metrics)
	BodySizeLimit   int64  // Max request body size in bytes (default: 1MB)
	MediaRoot       string // Directory generated media is served from
	MediaBaseURL    string // URL prefix media is served under; non-local prefixes disable serving
}

// New creates a new HTTP server
func New(gw *gateway.Service, videos *pipeline.Pipeline, limiter *ratelimit.Limiter, log interactionlog.Recorder, cfg *Config) *Server {
	e := echo.New()
	e.HideBanner = true

	handler := NewHandler(gw, videos, limiter, log)

	metricsPath := "/metrics"
	if cfg != nil && cfg.MetricsEnabled && cfg.MetricsEndpoint != "" {
		// Normalize to prevent traversal
		metricsPath = path.Clean(cfg.MetricsEndpoint)
	}

	// Global middleware stack (order matters)
	e.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig()))
	e.Use(middleware.Recover())

	bodySizeLimit := config.DefaultBodySizeLimit
	if cfg != nil && cfg.BodySizeLimit > 0 {
		bodySizeLimit = cfg.BodySizeLimit
	}
	e.Use(middleware.BodyLimit(strconv.FormatInt(bodySizeLimit, 10)))

	// Public routes
	e.GET("/health", handler.Health)
	if cfg != nil && cfg.MetricsEnabled {
		e.GET(metricsPath, echo.WrapHandler(promhttp.Handler()))
	}

	// Generated media, when served from this process
	if cfg != nil && cfg.MediaRoot != "" && len(cfg.MediaBaseURL) > 1 && cfg.MediaBaseURL[0] == '/' {
		e.Static(cfg.MediaBaseURL, cfg.MediaRoot)
	}

	// API routes
	e.POST("/v1/ask", handler.Ask)
	e.POST("/v1/lessons/generate", handler.GenerateLesson)
	e.POST("/v1/videos", handler.GenerateVideo)

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// requestLoggerConfig routes echo's request log through slog
func requestLoggerConfig() middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	}
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
