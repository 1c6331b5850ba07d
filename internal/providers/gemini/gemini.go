// Package gemini provides Google Gemini API integration via the native
// generateContent endpoint.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"lessonforge/internal/core"
	"lessonforge/internal/pkg/httpclient"
	"lessonforge/internal/providers"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
	// fallbackModel is retried once when the backend rejects the
	// configured model (the flash line gets renamed across versions).
	fallbackModel = "gemini-1.5-flash"
)

// Provider implements the core.Completer interface for Google Gemini
type Provider struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
}

// New creates a new Gemini provider. model is the environment-configured
// default and may be empty.
func New(apiKey, model string, timeout time.Duration) *Provider {
	return &Provider{
		httpClient: httpclient.NewDefaultHTTPClient(),
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		timeout:    timeout,
	}
}

// NewWithHTTPClient creates a Gemini provider with a custom HTTP client.
// If httpClient is nil, http.DefaultClient is used.
func NewWithHTTPClient(apiKey, model string, httpClient *http.Client) *Provider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Provider{
		httpClient: httpClient,
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
	}
}

// SetBaseURL allows configuring a custom base URL for the provider
func (p *Provider) SetBaseURL(url string) {
	p.baseURL = url
}

// Name returns the provenance tag for this provider
func (p *Provider) Name() string {
	return core.ProvenanceGemini
}

// generateRequest is the JSON body for the native generateContent endpoint
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// FlattenMessages collapses a conversation into a single prompt for the
// native Gemini API, prefixing system and user turns the way the chat
// roles read. Messages with empty content are skipped.
func FlattenMessages(messages []core.Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		switch m.Role {
		case core.RoleSystem:
			parts = append(parts, "System: "+m.Content)
		case core.RoleUser:
			parts = append(parts, "User: "+m.Content)
		default:
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n")
}

// Complete sends a completion request to Gemini. When the backend rejects
// the configured model it retries once with the known-good fallback model.
func (p *Provider) Complete(ctx context.Context, req *core.CompletionRequest) (*core.Completion, error) {
	if p.apiKey == "" {
		return nil, core.NewClientUnavailableError(p.Name(), "GEMINI_API_KEY is not set")
	}

	model := providers.ResolveModel(req.Model, p.model, defaultModel)

	completion, err := p.generate(ctx, model, req)
	if err != nil && model != fallbackModel && isModelRejection(err) {
		completion, err = p.generate(ctx, fallbackModel, req)
	}
	return completion, err
}

// generate performs a single generateContent call for one model
func (p *Provider) generate(ctx context.Context, model string, req *core.CompletionRequest) (*core.Completion, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: FlattenMessages(req.Messages)}}}},
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	})
	if err != nil {
		return nil, core.NewInvalidRequestError("failed to marshal request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, core.NewInvalidRequestError("failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// The native API takes the key as a header, not a bearer token
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.NewRemoteError(p.Name(), "failed to send request: "+err.Error(), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewRemoteError(p.Name(), "failed to read response: "+err.Error(), err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, core.ParseProviderError(p.Name(), resp.StatusCode, respBody)
	}

	return p.parseCompletion(model, respBody)
}

// parseCompletion extracts the candidate text and usage metadata from the
// native response. gjson keeps this tolerant of the response shape
// evolving around the fields we need.
func (p *Provider) parseCompletion(model string, body []byte) (*core.Completion, error) {
	text := strings.TrimSpace(gjson.GetBytes(body, "candidates.0.content.parts.0.text").String())
	if text == "" {
		return nil, core.NewEmptyResponseError(p.Name())
	}

	completion := &core.Completion{Text: text, Model: model}
	if usage := gjson.GetBytes(body, "usageMetadata"); usage.Exists() {
		completion.Usage = &core.Usage{
			PromptTokens:     int(usage.Get("promptTokenCount").Int()),
			CompletionTokens: int(usage.Get("candidatesTokenCount").Int()),
			TotalTokens:      int(usage.Get("totalTokenCount").Int()),
		}
	}
	return completion, nil
}

// isModelRejection reports whether the error looks like an unknown-model
// response rather than a transport failure.
func isModelRejection(err error) bool {
	var gatewayErr *core.GatewayError
	if !errors.As(err, &gatewayErr) {
		return false
	}
	return strings.Contains(gatewayErr.Message, "status 400") ||
		strings.Contains(gatewayErr.Message, "status 404")
}
