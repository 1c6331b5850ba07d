package chain

import (
	"log/slog"

	"lessonforge/config"
	"lessonforge/internal/core"
	"lessonforge/internal/providers/gemini"
	"lessonforge/internal/providers/groq"
	"lessonforge/internal/providers/openai"
)

// BuildChain constructs the fixed priority-ordered provider chain from
// configuration: groq (fastest) > gemini > openai. A provider without an
// API key is not attempted at all and is left out of the chain.
//
// The order is deliberately static. Attempts are sequential, never raced,
// and never reordered on runtime health: predictable cost and latency over
// worst-case latency reduction.
func BuildChain(cfg config.ProvidersConfig) []core.Completer {
	var chain []core.Completer
	if cfg.GroqAPIKey != "" {
		chain = append(chain, groq.New(cfg.GroqAPIKey, cfg.GroqModel, cfg.Timeout))
	}
	if cfg.GeminiAPIKey != "" {
		chain = append(chain, gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Timeout))
	}
	if cfg.OpenAIAPIKey != "" {
		chain = append(chain, openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.Timeout))
	}

	for _, p := range chain {
		slog.Info("provider registered", "provider", p.Name())
	}
	if len(chain) == 0 {
		slog.Warn("no providers configured, every completion will use the deterministic fallback")
	}

	return chain
}

// BuildSynthesizer constructs the narration synthesizer, or nil when no
// OpenAI credential is configured. A nil synthesizer downgrades video
// jobs to silent clips; it never fails them.
func BuildSynthesizer(cfg config.ProvidersConfig, tts config.TTSConfig) core.SpeechSynthesizer {
	if cfg.OpenAIAPIKey == "" {
		slog.Info("narration synthesis disabled, no OpenAI credential")
		return nil
	}
	return openai.NewSpeech(cfg.OpenAIAPIKey, tts.Model, cfg.Timeout)
}
