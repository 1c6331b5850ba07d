// Package openai provides OpenAI API integration: chat completions and
// narration synthesis via the audio/speech endpoint.
package openai

import (
	"context"
	"net/http"
	"time"

	"lessonforge/internal/core"
	"lessonforge/internal/pkg/llmclient"
	"lessonforge/internal/providers"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

// Provider implements the core.Completer interface for OpenAI
type Provider struct {
	client *llmclient.Client
	apiKey string
	model  string
}

// New creates a new OpenAI provider. model is the environment-configured
// default and may be empty.
func New(apiKey, model string, timeout time.Duration) *Provider {
	p := &Provider{apiKey: apiKey, model: model}
	cfg := llmclient.DefaultConfig("openai", defaultBaseURL)
	cfg.AttemptTimeout = timeout
	p.client = llmclient.New(cfg, p.setHeaders)
	return p
}

// NewWithHTTPClient creates an OpenAI provider with a custom HTTP client.
// If httpClient is nil, http.DefaultClient is used.
func NewWithHTTPClient(apiKey, model string, httpClient *http.Client) *Provider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	p := &Provider{apiKey: apiKey, model: model}
	p.client = llmclient.NewWithHTTPClient(httpClient, llmclient.DefaultConfig("openai", defaultBaseURL), p.setHeaders)
	return p
}

// SetBaseURL allows configuring a custom base URL for the provider
func (p *Provider) SetBaseURL(url string) {
	p.client.SetBaseURL(url)
}

// Name returns the provenance tag for this provider
func (p *Provider) Name() string {
	return core.ProvenanceOpenAI
}

// setHeaders sets the required headers for OpenAI API requests
func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
}

// Complete sends a chat completion request to OpenAI
func (p *Provider) Complete(ctx context.Context, req *core.CompletionRequest) (*core.Completion, error) {
	if p.apiKey == "" {
		return nil, core.NewClientUnavailableError(p.Name(), "OPENAI_API_KEY is not set")
	}

	model := providers.ResolveModel(req.Model, p.model, defaultModel)

	var resp providers.ChatResponse
	err := p.client.Do(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/chat/completions",
		Body:     providers.NewChatRequest(model, req),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Model == "" {
		resp.Model = model
	}

	return providers.CompletionFromResponse(p.Name(), &resp)
}
