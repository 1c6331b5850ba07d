// Package pipeline runs one video job end to end: caption render,
// optional narration synthesis, mux, artifact placement. Render and mux
// failures are fatal to the job; synthesis failure only downgrades it to
// a silent clip.
package pipeline

import (
	"context"
	"image/png"
	"log/slog"
	"os"

	"lessonforge/internal/core"
	"lessonforge/internal/media/artifact"
	"lessonforge/internal/media/caption"
	"lessonforge/internal/observability"
)

// minDurationSeconds is the floor for the requested clip length.
const minDurationSeconds = 2

// Pipeline generates short videos. synthesizer may be nil, which makes
// every clip silent.
type Pipeline struct {
	renderer    *caption.Renderer
	synthesizer core.SpeechSynthesizer
	composer    core.Composer
	store       *artifact.Store
	voice       string
}

// New assembles a Pipeline from its stages.
func New(renderer *caption.Renderer, synthesizer core.SpeechSynthesizer, composer core.Composer, store *artifact.Store, voice string) *Pipeline {
	return &Pipeline{
		renderer:    renderer,
		synthesizer: synthesizer,
		composer:    composer,
		store:       store,
		voice:       voice,
	}
}

// Generate runs the job and returns the produced artifact plus a warning
// string when narration was skipped. On error nothing is left on disk.
func (p *Pipeline) Generate(ctx context.Context, job core.VideoJob) (*core.MediaArtifact, string, error) {
	if job.TargetDurationSeconds < minDurationSeconds {
		job.TargetDurationSeconds = minDurationSeconds
	}

	set, err := p.store.Plan(job.Subfolder, job.FilenamePrefix)
	if err != nil {
		observability.VideoJobs.WithLabelValues(observability.OutcomeError).Inc()
		return nil, "", core.NewRenderError(err.Error(), err)
	}

	if err := p.renderImage(job.CaptionText, set.ImagePath); err != nil {
		observability.VideoJobs.WithLabelValues(observability.OutcomeError).Inc()
		set.Discard()
		return nil, "", err
	}

	audioPath, warning := p.synthesizeNarration(ctx, job.CaptionText, set.AudioPath)

	if err := p.composer.Compose(ctx, set.ImagePath, audioPath, set.VideoPath, job.TargetDurationSeconds); err != nil {
		observability.VideoJobs.WithLabelValues(observability.OutcomeError).Inc()
		set.Discard()
		return nil, "", err
	}

	observability.VideoJobs.WithLabelValues(observability.OutcomeSuccess).Inc()
	return set.Artifact(audioPath != ""), warning, nil
}

// renderImage rasterizes the caption and writes it as PNG.
func (p *Pipeline) renderImage(text, path string) error {
	img := p.renderer.Render(text)

	f, err := os.Create(path)
	if err != nil {
		return core.NewRenderError("failed to create image file: "+err.Error(), err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return core.NewRenderError("failed to encode image: "+err.Error(), err)
	}
	if err := f.Close(); err != nil {
		return core.NewRenderError("failed to write image file: "+err.Error(), err)
	}
	return nil
}

// synthesizeNarration writes the narration MP3 and returns its path, or
// an empty path plus a warning when synthesis is unavailable or failed.
// The job carries on either way.
func (p *Pipeline) synthesizeNarration(ctx context.Context, text, path string) (string, string) {
	if p.synthesizer == nil {
		observability.SilentVideos.Inc()
		return "", "narration synthesis not configured"
	}

	audio, err := p.synthesizer.Synthesize(ctx, text, p.voice)
	if err != nil {
		observability.SilentVideos.Inc()
		slog.Warn("narration synthesis failed, producing silent video", "error", err)
		return "", err.Error()
	}

	if err := os.WriteFile(path, audio, 0644); err != nil {
		observability.SilentVideos.Inc()
		slog.Warn("failed to write narration file, producing silent video", "error", err)
		return "", err.Error()
	}
	return path, ""
}
