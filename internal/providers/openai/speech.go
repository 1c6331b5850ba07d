package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"lessonforge/internal/core"
	"lessonforge/internal/pkg/llmclient"
)

// fallbackSpeechModel is a known-compatible synthesis model used when the
// backend rejects the preferred one.
const fallbackSpeechModel = "tts-1"

// Speech implements core.SpeechSynthesizer against the OpenAI
// audio/speech endpoint.
type Speech struct {
	client *llmclient.Client
	apiKey string
	model  string
}

// NewSpeech creates a narration synthesizer. model is the preferred
// synthesis model; when the backend rejects it, Synthesize retries once
// with tts-1 before giving up.
func NewSpeech(apiKey, model string, timeout time.Duration) *Speech {
	s := &Speech{apiKey: apiKey, model: model}
	cfg := llmclient.DefaultConfig("openai", defaultBaseURL)
	cfg.AttemptTimeout = timeout
	s.client = llmclient.New(cfg, s.setHeaders)
	return s
}

// NewSpeechWithHTTPClient creates a synthesizer with a custom HTTP client.
// If httpClient is nil, http.DefaultClient is used.
func NewSpeechWithHTTPClient(apiKey, model string, httpClient *http.Client) *Speech {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	s := &Speech{apiKey: apiKey, model: model}
	s.client = llmclient.NewWithHTTPClient(httpClient, llmclient.DefaultConfig("openai", defaultBaseURL), s.setHeaders)
	return s
}

// SetBaseURL allows configuring a custom base URL
func (s *Speech) SetBaseURL(url string) {
	s.client.SetBaseURL(url)
}

func (s *Speech) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
}

// speechRequest is the JSON body for the audio/speech endpoint
type speechRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

// Synthesize returns MP3 bytes for the given text. All failures come back
// as *core.GatewayError values; the caller decides whether they are fatal.
func (s *Speech) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if s.apiKey == "" {
		return nil, core.NewClientUnavailableError("openai", "OPENAI_API_KEY is not set")
	}

	model := s.model
	if model == "" {
		model = fallbackSpeechModel
	}

	audio, err := s.synthesize(ctx, model, voice, text)
	if err != nil && model != fallbackSpeechModel && isModelRejection(err) {
		audio, err = s.synthesize(ctx, fallbackSpeechModel, voice, text)
	}
	if err != nil {
		return nil, core.NewSynthesisError("openai", err.Error(), err)
	}
	if len(audio) == 0 {
		return nil, core.NewSynthesisError("openai", "backend returned no audio", nil)
	}
	return audio, nil
}

func (s *Speech) synthesize(ctx context.Context, model, voice, text string) ([]byte, error) {
	resp, err := s.client.DoRaw(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/audio/speech",
		Body:     speechRequest{Model: model, Voice: voice, Input: text},
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// isModelRejection reports whether the error looks like the backend
// rejecting the requested model (as opposed to a transport failure, which
// a second attempt with a different model would not fix).
func isModelRejection(err error) bool {
	var gatewayErr *core.GatewayError
	if !errors.As(err, &gatewayErr) {
		return false
	}
	return strings.Contains(gatewayErr.Message, "status 400") ||
		strings.Contains(gatewayErr.Message, "status 404")
}
