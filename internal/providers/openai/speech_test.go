package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lessonforge/internal/core"
)

func TestSynthesize_Success(t *testing.T) {
	var gotReq speechRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/speech", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	s := NewSpeechWithHTTPClient("test-key", "gpt-4o-mini-tts", server.Client())
	s.SetBaseURL(server.URL)

	audio, err := s.Synthesize(context.Background(), "Welcome to the lesson.", "alloy")
	require.NoError(t, err)

	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.Equal(t, "gpt-4o-mini-tts", gotReq.Model)
	assert.Equal(t, "alloy", gotReq.Voice)
	assert.Equal(t, "Welcome to the lesson.", gotReq.Input)
}

func TestSynthesize_ModelRejectionRetriesTTS1(t *testing.T) {
	var models []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req speechRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		models = append(models, req.Model)
		if req.Model != fallbackSpeechModel {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": {"message": "unknown model"}}`))
			return
		}
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	s := NewSpeechWithHTTPClient("test-key", "gpt-4o-mini-tts", server.Client())
	s.SetBaseURL(server.URL)

	audio, err := s.Synthesize(context.Background(), "hello", "alloy")
	require.NoError(t, err)

	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.Equal(t, []string{"gpt-4o-mini-tts", fallbackSpeechModel}, models)
}

func TestSynthesize_EmptyAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewSpeechWithHTTPClient("test-key", "", server.Client())
	s.SetBaseURL(server.URL)

	_, err := s.Synthesize(context.Background(), "hello", "alloy")
	require.Error(t, err)

	var gatewayErr *core.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, core.ErrorTypeSynthesis, gatewayErr.Type)
}

func TestSynthesize_MissingAPIKey(t *testing.T) {
	s := NewSpeech("", "", 0)

	_, err := s.Synthesize(context.Background(), "hello", "alloy")
	require.Error(t, err)

	var gatewayErr *core.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, core.ErrorTypeClientUnavailable, gatewayErr.Type)
}
