package core

import "context"

// Completer is the polymorphic capability implemented by every chat
// provider adapter. Complete never panics across the boundary: all
// failures (missing credential, network error, malformed response, empty
// content) come back as a *GatewayError so the gateway can fall through
// to the next provider unconditionally.
type Completer interface {
	// Name returns the provenance tag for this provider ("groq", ...)
	Name() string

	// Complete executes a chat completion request. On success the returned
	// Completion carries non-empty text; an empty/whitespace-only
	// completion is reported as an ErrorTypeEmptyResponse error.
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)
}

// SpeechSynthesizer converts text to narration audio. Implementations
// retry once with a known-compatible fallback model when the backend
// rejects the preferred model.
type SpeechSynthesizer interface {
	// Synthesize returns encoded audio bytes (MP3) for the given text.
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Composer combines a rendered image and an optional audio track into a
// video file. When audioPath is empty the output is a silent video of
// exactly minDurationSeconds; otherwise the duration is the greater of
// minDurationSeconds and the audio length.
type Composer interface {
	Compose(ctx context.Context, imagePath, audioPath, videoPath string, minDurationSeconds int) error
}
