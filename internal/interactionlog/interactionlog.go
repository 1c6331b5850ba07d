// Package interactionlog persists a record of every assistant exchange:
// question, answer, which provider produced it, and token usage. Writes
// are best-effort; the answer path never waits on or fails because of
// the log.
package interactionlog

import (
	"context"
	"time"
)

// Interaction modes
const (
	ModeAsk    = "ask"
	ModeLesson = "generate_lesson"
	ModeVideo  = "generate_video"
)

// Store defines the interface for interaction log storage backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// WriteBatch writes multiple records to storage. Called by the
	// Logger when flushing buffered records.
	WriteBatch(ctx context.Context, records []*Record) error

	// Flush forces any pending writes to complete. Called during
	// graceful shutdown.
	Flush(ctx context.Context) error

	// Close releases resources and flushes pending writes.
	Close() error
}

// Record is a single logged exchange
type Record struct {
	// ID is a unique identifier for this record (UUID)
	ID string `json:"id" bson:"_id"`

	// Timestamp is when the exchange completed
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`

	// Mode is the operation that produced the record: "ask",
	// "generate_lesson", or "generate_video"
	Mode string `json:"mode" bson:"mode"`

	// Provider is the provenance tag of the answer: a provider name,
	// "fallback", or "none"
	Provider string `json:"provider" bson:"provider"`
	Model    string `json:"model,omitempty" bson:"model,omitempty"`

	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`

	PromptTokens     int `json:"prompt_tokens,omitempty" bson:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty" bson:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty" bson:"total_tokens,omitempty"`

	// ErrorMessage carries the last provider failure even when a later
	// provider or the deterministic fallback answered
	ErrorMessage string `json:"error_message,omitempty" bson:"error_message,omitempty"`
}

// Config holds interaction logging configuration
type Config struct {
	// Enabled controls whether interaction logging is active
	Enabled bool

	// BufferSize is the number of records to buffer before dropping
	BufferSize int

	// FlushInterval is how often buffered records are flushed
	FlushInterval time.Duration

	// RetentionDays is how long to keep records (0 = forever)
	RetentionDays int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		BufferSize:    1000,
		FlushInterval: 5 * time.Second,
		RetentionDays: 30,
	}
}
