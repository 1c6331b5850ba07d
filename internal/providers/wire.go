// Package providers builds the ordered provider chain and holds the
// OpenAI-compatible wire types shared by the adapters that speak it.
package providers

import (
	"strings"

	"lessonforge/internal/core"
)

// ChatRequest is the JSON body for OpenAI-compatible chat completions
type ChatRequest struct {
	Model       string         `json:"model"`
	Messages    []core.Message `json:"messages"`
	Temperature float64        `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
}

// ChatResponse is the OpenAI-compatible chat completion response
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice represents a single completion choice
type Choice struct {
	Message      core.Message `json:"message"`
	FinishReason string       `json:"finish_reason"`
	Index        int          `json:"index"`
}

// Usage mirrors the OpenAI-compatible usage block
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewChatRequest shapes a gateway request for an OpenAI-compatible provider
func NewChatRequest(model string, req *core.CompletionRequest) *ChatRequest {
	return &ChatRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
}

// CompletionFromResponse normalizes an OpenAI-compatible response into a
// core.Completion. A response with no choices or whitespace-only content
// is reported as an empty-response failure, not a success.
func CompletionFromResponse(provider string, resp *ChatResponse) (*core.Completion, error) {
	if len(resp.Choices) == 0 {
		return nil, core.NewEmptyResponseError(provider)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, core.NewEmptyResponseError(provider)
	}

	completion := &core.Completion{
		Text:  text,
		Model: resp.Model,
	}
	if resp.Usage != nil {
		completion.Usage = &core.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return completion, nil
}

// ResolveModel resolves a model name with precedence:
// explicit request override > environment-configured default > hardcoded default.
func ResolveModel(override, configured, fallback string) string {
	for _, candidate := range []string{override, configured, fallback} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return fallback
}
