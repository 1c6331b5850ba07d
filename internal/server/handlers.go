// Package server provides HTTP handlers and server setup for the lesson
// and video generation API.
package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"lessonforge/internal/core"
	"lessonforge/internal/gateway"
	"lessonforge/internal/interactionlog"
	"lessonforge/internal/media/pipeline"
	"lessonforge/internal/observability"
	"lessonforge/internal/ratelimit"
)

// Handler holds the HTTP handlers
type Handler struct {
	gateway *gateway.Service
	videos  *pipeline.Pipeline
	limiter *ratelimit.Limiter
	log     interactionlog.Recorder
}

// NewHandler creates a new handler
func NewHandler(gw *gateway.Service, videos *pipeline.Pipeline, limiter *ratelimit.Limiter, log interactionlog.Recorder) *Handler {
	return &Handler{
		gateway: gw,
		videos:  videos,
		limiter: limiter,
		log:     log,
	}
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// askRequest is the body of POST /v1/ask
type askRequest struct {
	Question string `json:"question"`
}

// Ask handles POST /v1/ask
func (h *Handler) Ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body: "+err.Error(), err))
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return handleError(c, core.NewInvalidRequestError("question is required", nil))
	}

	if err := h.rateCheck(c, "ask"); err != nil {
		return handleError(c, err)
	}

	result := h.gateway.Ask(c.Request().Context(), question)
	return c.JSON(http.StatusOK, askResponse(result))
}

// askResponse shapes the wire response for an ask result
func askResponse(result *core.CompletionResult) map[string]interface{} {
	resp := map[string]interface{}{
		"answer":   result.Text,
		"provider": result.Provider,
	}
	if result.Usage != nil {
		resp["usage"] = result.Usage
	}
	if result.Err != "" {
		resp["error"] = result.Err
	}
	return resp
}

// lessonRequest is the body of POST /v1/lessons/generate
type lessonRequest struct {
	Topic string `json:"topic"`
}

// GenerateLesson handles POST /v1/lessons/generate
func (h *Handler) GenerateLesson(c echo.Context) error {
	var req lessonRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body: "+err.Error(), err))
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return handleError(c, core.NewInvalidRequestError("topic is required", nil))
	}

	if err := h.rateCheck(c, "lesson"); err != nil {
		return handleError(c, err)
	}

	lesson := h.gateway.GenerateLesson(c.Request().Context(), topic)
	return c.JSON(http.StatusOK, lesson)
}

// videoRequest is the body of POST /v1/videos
type videoRequest struct {
	Text           string `json:"text"`
	Subfolder      string `json:"subfolder"`
	FilenamePrefix string `json:"filename_prefix"`
	Seconds        int    `json:"seconds"`
}

// videoResponse is the success body of POST /v1/videos
type videoResponse struct {
	VideoURL string `json:"video_url"`
	Warning  string `json:"warning,omitempty"`
}

// GenerateVideo handles POST /v1/videos
func (h *Handler) GenerateVideo(c echo.Context) error {
	var req videoRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body: "+err.Error(), err))
	}
	if strings.TrimSpace(req.Text) == "" {
		return handleError(c, core.NewInvalidRequestError("text is required", nil))
	}

	if err := h.rateCheck(c, "video"); err != nil {
		return handleError(c, err)
	}

	artifact, warning, err := h.videos.Generate(c.Request().Context(), core.VideoJob{
		CaptionText:           req.Text,
		Subfolder:             req.Subfolder,
		FilenamePrefix:        req.FilenamePrefix,
		TargetDurationSeconds: req.Seconds,
	})
	if err != nil {
		return handleError(c, err)
	}

	h.log.Write(&interactionlog.Record{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Mode:         interactionlog.ModeVideo,
		Provider:     core.ProvenanceNone,
		Question:     req.Text,
		Answer:       artifact.PublicURL,
		ErrorMessage: warning,
	})

	return c.JSON(http.StatusOK, videoResponse{VideoURL: artifact.PublicURL, Warning: warning})
}

// rateCheck applies the per-IP sliding-window limit for one operation.
// Operations have independent budgets, keyed "<op>:<ip>".
func (h *Handler) rateCheck(c echo.Context, op string) error {
	allowed, _ := h.limiter.Allow(op + ":" + c.RealIP())
	if !allowed {
		observability.RateLimitedRequests.Inc()
		return core.NewRateLimitedError("Rate limit exceeded. Please wait a minute.")
	}
	return nil
}

// handleError converts gateway errors to appropriate HTTP responses
func handleError(c echo.Context, err error) error {
	var gatewayErr *core.GatewayError
	if errors.As(err, &gatewayErr) {
		return c.JSON(gatewayErr.HTTPStatusCode(), gatewayErr.ToJSON())
	}

	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "internal_error",
			"message": "an unexpected error occurred",
		},
	})
}
