// Package gateway routes completion requests through the ordered provider
// chain and guarantees an answer: when every provider fails, a
// deterministic fallback is substituted and tagged as such.
package gateway

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"lessonforge/internal/core"
	"lessonforge/internal/interactionlog"
	"lessonforge/internal/observability"
)

// ClipGenerator produces a short video clip for a lesson. Implemented by
// the media pipeline; nil disables lesson clips.
type ClipGenerator interface {
	Generate(ctx context.Context, job core.VideoJob) (*core.MediaArtifact, string, error)
}

// Service is the completion gateway. It owns the provider chain, the
// interaction log sink, and the lesson clip generator.
type Service struct {
	chain []core.Completer
	log   interactionlog.Recorder
	clips ClipGenerator
}

// New creates a gateway Service. log may not be nil; pass a NoopLogger
// when interaction logging is disabled. clips may be nil.
func New(chain []core.Completer, log interactionlog.Recorder, clips ClipGenerator) *Service {
	return &Service{chain: chain, log: log, clips: clips}
}

// complete walks the provider chain in order and returns the first
// successful completion. Attempts are sequential; a request never races
// two providers. The last failed attempt's error stays on the result
// even when a later provider succeeds, so degraded providers remain
// visible in the interaction log.
func (s *Service) complete(ctx context.Context, req *core.CompletionRequest) *core.CompletionResult {
	result := &core.CompletionResult{Provider: core.ProvenanceNone}

	for _, p := range s.chain {
		completion, err := p.Complete(ctx, req)
		if err != nil {
			observability.ProviderAttempts.WithLabelValues(p.Name(), observability.OutcomeError).Inc()
			slog.Warn("provider attempt failed",
				"provider", p.Name(),
				"error", err,
			)
			result.Err = err.Error()
			continue
		}

		observability.ProviderAttempts.WithLabelValues(p.Name(), observability.OutcomeSuccess).Inc()
		result.Text = completion.Text
		result.Provider = p.Name()
		result.Model = completion.Model
		result.Usage = completion.Usage
		return result
	}

	return result
}

// record queues an interaction log record. Logging is best-effort and
// never affects the response.
func (s *Service) record(mode, question string, result *core.CompletionResult) {
	rec := &interactionlog.Record{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Mode:         mode,
		Provider:     result.Provider,
		Model:        result.Model,
		Question:     question,
		Answer:       result.Text,
		ErrorMessage: result.Err,
	}
	if result.Usage != nil {
		rec.PromptTokens = result.Usage.PromptTokens
		rec.CompletionTokens = result.Usage.CompletionTokens
		rec.TotalTokens = result.Usage.TotalTokens
	}
	s.log.Write(rec)
}

const askSystemPrompt = "You are a helpful tutor. Be concise and clear."

// Ask answers a free-form question. The response always contains an
// answer; its Provider field says where it came from.
func (s *Service) Ask(ctx context.Context, question string) *core.CompletionResult {
	question = strings.TrimSpace(question)

	result := s.complete(ctx, &core.CompletionRequest{
		Messages: []core.Message{
			{Role: core.RoleSystem, Content: askSystemPrompt},
			{Role: core.RoleUser, Content: question},
		},
		Temperature: 0.3,
		MaxTokens:   600,
	})

	if result.Text == "" {
		observability.FallbackAnswers.Inc()
		result.Provider = core.ProvenanceFallback
		result.Text = FallbackAnswer(question)
	}

	s.record(interactionlog.ModeAsk, question, result)
	return result
}

const lessonSystemPrompt = "You are an expert course author writing structured lessons."

// defaultLessonVideoURL is served when clip generation is disabled or
// fails. Lessons always carry a playable video URL.
const defaultLessonVideoURL = "https://samplelib.com/lib/preview/mp4/sample-5s.mp4"

const lessonClipSeconds = 8

// Lesson is a generated mini-lesson with its accompanying clip
type Lesson struct {
	Title      string `json:"title"`
	Transcript string `json:"transcript"`
	VideoURL   string `json:"video_url"`
	Provider   string `json:"provider"`
	Err        string `json:"error,omitempty"`
}

// GenerateLesson produces a structured mini-lesson on a topic plus a
// short caption video of its opening. The transcript falls back to a
// deterministic outline when every provider fails; the clip falls back
// to a stock URL when generation fails.
func (s *Service) GenerateLesson(ctx context.Context, topic string) *Lesson {
	topic = strings.TrimSpace(topic)
	title := "Introduction to " + topic

	prompt := "Create a structured mini-lesson on the topic below. Use clear section headings, " +
		"concise explanations, and bullet lists for key points. Keep it beginner-friendly. " +
		"Respond in plain UTF-8 text only (no JSON). Topic: " + topic

	result := s.complete(ctx, &core.CompletionRequest{
		Messages: []core.Message{
			{Role: core.RoleSystem, Content: lessonSystemPrompt},
			{Role: core.RoleUser, Content: prompt},
		},
		Temperature: 0.4,
		MaxTokens:   900,
	})

	if result.Text == "" {
		observability.FallbackAnswers.Inc()
		result.Provider = core.ProvenanceFallback
		result.Text = FallbackTranscript(title)
	}

	s.record(interactionlog.ModeLesson, "generate_lesson:"+topic, result)

	lesson := &Lesson{
		Title:      title,
		Transcript: result.Text,
		VideoURL:   defaultLessonVideoURL,
		Provider:   result.Provider,
		Err:        result.Err,
	}

	if s.clips != nil {
		lesson.VideoURL = s.generateClip(ctx, title, result.Text)
	}
	return lesson
}

// generateClip renders the lesson opening into a short video and returns
// its URL, or the stock URL when generation fails.
func (s *Service) generateClip(ctx context.Context, title, transcript string) string {
	captionText := title
	if first, _, _ := strings.Cut(strings.TrimSpace(transcript), "\n\n"); first != "" {
		captionText += "\n" + first
	}

	artifact, warning, err := s.clips.Generate(ctx, core.VideoJob{
		CaptionText:           captionText,
		Subfolder:             "ai_lessons",
		FilenamePrefix:        title,
		TargetDurationSeconds: lessonClipSeconds,
	})
	if err != nil {
		slog.Warn("lesson clip generation failed", "error", err)
		return defaultLessonVideoURL
	}
	if warning != "" {
		slog.Warn("lesson clip degraded", "warning", warning)
	}
	return artifact.PublicURL
}
