// Package groq provides Groq API integration via its OpenAI-compatible endpoint.
package groq

import (
	"context"
	"net/http"
	"time"

	"lessonforge/internal/core"
	"lessonforge/internal/pkg/llmclient"
	"lessonforge/internal/providers"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama3-70b-8192"
)

// Provider implements the core.Completer interface for Groq
type Provider struct {
	client *llmclient.Client
	apiKey string
	model  string
}

// New creates a new Groq provider. model is the environment-configured
// default and may be empty.
func New(apiKey, model string, timeout time.Duration) *Provider {
	p := &Provider{apiKey: apiKey, model: model}
	cfg := llmclient.DefaultConfig("groq", defaultBaseURL)
	cfg.AttemptTimeout = timeout
	p.client = llmclient.New(cfg, p.setHeaders)
	return p
}

// NewWithHTTPClient creates a Groq provider with a custom HTTP client.
// If httpClient is nil, http.DefaultClient is used.
func NewWithHTTPClient(apiKey, model string, httpClient *http.Client) *Provider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	p := &Provider{apiKey: apiKey, model: model}
	p.client = llmclient.NewWithHTTPClient(httpClient, llmclient.DefaultConfig("groq", defaultBaseURL), p.setHeaders)
	return p
}

// SetBaseURL allows configuring a custom base URL for the provider
func (p *Provider) SetBaseURL(url string) {
	p.client.SetBaseURL(url)
}

// Name returns the provenance tag for this provider
func (p *Provider) Name() string {
	return core.ProvenanceGroq
}

// setHeaders sets the required headers for Groq API requests
func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
}

// Complete sends a chat completion request to Groq
func (p *Provider) Complete(ctx context.Context, req *core.CompletionRequest) (*core.Completion, error) {
	if p.apiKey == "" {
		return nil, core.NewClientUnavailableError(p.Name(), "GROQ_API_KEY is not set")
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
