// Package compose muxes a still image and an optional narration track
// into an MP4 by shelling out to ffmpeg.
package compose

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"lessonforge/internal/core"
)

const (
	primaryVideoCodec = "libx264"
	// mpeg4 is more widely available than libx264; used as the retry
	// codec when the primary encode fails.
	fallbackVideoCodec = "mpeg4"

	audioCodec   = "aac"
	frameRate    = "24"
	videoBitrate = "1200k"
)

// FFmpeg implements core.Composer using the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
}

// New creates an FFmpeg composer. Empty paths resolve the binaries on
// PATH.
func New(ffmpegPath, ffprobePath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// Compose writes the video for imagePath (plus audioPath when non-empty)
// to videoPath. The output duration is minDurationSeconds, stretched to
// the narration length when the audio runs longer. A failed primary
// encode is retried once with the fallback codec; on total failure any
// partial output file is removed.
func (f *FFmpeg) Compose(ctx context.Context, imagePath, audioPath, videoPath string, minDurationSeconds int) error {
	duration := float64(minDurationSeconds)
	if audioPath != "" {
		if audioDuration, err := f.probeDuration(ctx, audioPath); err == nil && audioDuration > duration {
			duration = audioDuration
		}
	}

	err := f.encode(ctx, imagePath, audioPath, videoPath, duration, primaryVideoCodec)
	if err != nil {
		err = f.encode(ctx, imagePath, audioPath, videoPath, duration, fallbackVideoCodec)
	}
	if err != nil {
		_ = os.Remove(videoPath)
		return core.NewComposeError(err.Error(), err)
	}
	return nil
}

// encode runs one ffmpeg invocation
func (f *FFmpeg) encode(ctx context.Context, imagePath, audioPath, videoPath string, duration float64, codec string) error {
	args := []string{
		"-y",
		"-loop", "1",
		"-i", imagePath,
	}
	if audioPath != "" {
		args = append(args, "-i", audioPath)
	}
	args = append(args,
		"-t", strconv.FormatFloat(duration, 'f', 3, 64),
		"-r", frameRate,
		"-c:v", codec,
		"-b:v", videoBitrate,
		"-pix_fmt", "yuv420p",
	)
	if audioPath != "" {
		args = append(args, "-c:a", audioCodec)
	}
	args = append(args, videoPath)

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg (%s) failed: %w: %s", codec, err, lastLine(stderr.String()))
	}
	return nil
}

// probeDuration returns the audio file's duration in seconds via ffprobe.
func (f *FFmpeg) probeDuration(ctx context.Context, audioPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable ffprobe duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

// lastLine extracts the final non-empty line of ffmpeg's stderr, which
// is where it reports its actual error.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
