package core

import "strings"

// Message represents a single message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Well-known message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CompletionRequest represents a chat completion request as seen by the
// gateway and the provider adapters. It is immutable once issued.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	// Model optionally overrides the provider's configured model.
	Model string `json:"model,omitempty"`
}

// LastUserContent returns the content of the most recent user message,
// or an empty string if there is none. Used by the deterministic fallback.
func (r *CompletionRequest) LastUserContent() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return strings.TrimSpace(r.Messages[i].Content)
		}
	}
	return ""
}

// Usage represents token usage reported by a provider
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is a single successful provider attempt.
// Adapters guarantee Text is non-empty; an empty completion is an error.
type Completion struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
	Usage *Usage `json:"usage,omitempty"`
}

// Provenance values recorded on a CompletionResult
const (
	ProvenanceGroq     = "groq"
	ProvenanceGemini   = "gemini"
	ProvenanceOpenAI   = "openai"
	ProvenanceFallback = "fallback"
	ProvenanceNone     = "none"
)

// CompletionResult is the aggregate outcome of a gateway invocation.
// Text is always present: when every provider fails the gateway
// substitutes a deterministic fallback answer and tags it as such.
// Err carries the last provider error seen, for diagnostics only.
type CompletionResult struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Usage    *Usage `json:"usage,omitempty"`
	Err      string `json:"error,omitempty"`
}

// VideoJob describes one short-video generation request
type VideoJob struct {
	CaptionText           string
	Subfolder             string
	FilenamePrefix        string
	TargetDurationSeconds int
}

// MediaArtifact holds the file paths and public URL produced for one
// VideoJob. The image/audio/video files share a single random suffix so
// related files can be associated without a database lookup. Ownership of
// the files passes to the storage layer once the pipeline returns.
type MediaArtifact struct {
	ImagePath string
	AudioPath string // empty when narration synthesis failed or was skipped
	VideoPath string
	PublicURL string
}
