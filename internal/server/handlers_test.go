package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lessonforge/internal/core"
	"lessonforge/internal/gateway"
	"lessonforge/internal/interactionlog"
	"lessonforge/internal/media/artifact"
	"lessonforge/internal/media/caption"
	"lessonforge/internal/media/pipeline"
	"lessonforge/internal/ratelimit"
)

// stubCompleter answers every completion with fixed text
type stubCompleter struct {
	text string
	err  error
}

func (s *stubCompleter) Name() string { return core.ProvenanceGroq }

func (s *stubCompleter) Complete(_ context.Context, _ *core.CompletionRequest) (*core.Completion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &core.Completion{Text: s.text}, nil
}

// stubComposer touches the output file
type stubComposer struct{}

func (stubComposer) Compose(_ context.Context, _, _, videoPath string, _ int) error {
	return os.WriteFile(videoPath, []byte("mp4"), 0644)
}

func newTestServer(t *testing.T, completer core.Completer, limit int) *Server {
	t.Helper()

	log := &interactionlog.NoopLogger{}
	videos := pipeline.New(
		caption.NewRenderer("does-not-exist.ttf"),
		nil,
		stubComposer{},
		artifact.New(t.TempDir(), "/media"),
		"alloy",
	)

	var chain []core.Completer
	if completer != nil {
		chain = append(chain, completer)
	}
	gw := gateway.New(chain, log, videos)

	return New(gw, videos, ratelimit.New(limit, 0), log, &Config{})
}

func postJSON(t *testing.T, srv *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil, 30)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestAsk_Success(t *testing.T) {
	srv := newTestServer(t, &stubCompleter{text: "An interface is a method set."}, 30)

	rec := postJSON(t, srv, "/v1/ask", `{"question": "What is an interface?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "An interface is a method set.", resp["answer"])
	assert.Equal(t, core.ProvenanceGroq, resp["provider"])
}

func TestAsk_FallbackWhenNoProviders(t *testing.T) {
	srv := newTestServer(t, nil, 30)

	rec := postJSON(t, srv, "/v1/ask", `{"question": "channels"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, core.ProvenanceFallback, resp["provider"])
	assert.Contains(t, resp["answer"], "channels")
}

func TestAsk_MissingQuestion(t *testing.T) {
	srv := newTestServer(t, &stubCompleter{text: "x"}, 30)

	rec := postJSON(t, srv, "/v1/ask", `{"question": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "question is required")
}

func TestAsk_RateLimited(t *testing.T) {
	srv := newTestServer(t, &stubCompleter{text: "x"}, 1)

	rec := postJSON(t, srv, "/v1/ask", `{"question": "one"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, srv, "/v1/ask", `{"question": "two"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limited")
}

func TestRateLimits_PerOperation(t *testing.T) {
	srv := newTestServer(t, &stubCompleter{text: "x"}, 1)

	rec := postJSON(t, srv, "/v1/ask", `{"question": "one"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// The lesson budget is independent of the ask budget.
	rec = postJSON(t, srv, "/v1/lessons/generate", `{"topic": "maps"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateLesson_Success(t *testing.T) {
	srv := newTestServer(t, &stubCompleter{text: "## Overview\nLesson body."}, 30)

	rec := postJSON(t, srv, "/v1/lessons/generate", `{"topic": "Goroutines"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var lesson gateway.Lesson
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lesson))
	assert.Equal(t, "Introduction to Goroutines", lesson.Title)
	assert.Equal(t, "## Overview\nLesson body.", lesson.Transcript)
	assert.Contains(t, lesson.VideoURL, "/media/videos/ai_lessons/")
}

func TestGenerateLesson_MissingTopic(t *testing.T) {
	srv := newTestServer(t, nil, 30)

	rec := postJSON(t, srv, "/v1/lessons/generate", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateVideo_Success(t *testing.T) {
	srv := newTestServer(t, nil, 30)

	rec := postJSON(t, srv, "/v1/videos",
		`{"text": "Title\nBody text.", "subfolder": "clips", "filename_prefix": "demo", "seconds": 4}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp videoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.VideoURL, "/media/videos/clips/demo_")
	// No synthesizer configured, so the clip is flagged silent.
	assert.Equal(t, "narration synthesis not configured", resp.Warning)
}

func TestGenerateVideo_MissingText(t *testing.T) {
	srv := newTestServer(t, nil, 30)

	rec := postJSON(t, srv, "/v1/videos", `{"subfolder": "clips"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleError_UnknownErrorIs500(t *testing.T) {
	srv := newTestServer(t, nil, 30)

	// An unparseable body surfaces as invalid_request from Bind.
	rec := postJSON(t, srv, "/v1/ask", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}
