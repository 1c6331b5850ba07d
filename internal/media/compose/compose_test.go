package compose

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lessonforge/internal/core"
)

// writeStub writes an executable shell script standing in for ffmpeg or
// ffprobe and returns its path.
func writeStub(t *testing.T, name, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func TestCompose_WritesOutput(t *testing.T) {
	// Touch the last argument (the output path).
	ffmpeg := writeStub(t, "ffmpeg", `for last; do :; done; : > "$last"`)
	out := filepath.Join(t.TempDir(), "out.mp4")

	f := New(ffmpeg, "")
	require.NoError(t, f.Compose(context.Background(), "in.png", "", out, 8))

	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestCompose_FallsBackToSecondCodec(t *testing.T) {
	// Fail libx264, succeed mpeg4.
	ffmpeg := writeStub(t, "ffmpeg", `
case "$*" in
  *libx264*) echo "Unknown encoder 'libx264'" >&2; exit 1;;
esac
for last; do :; done; : > "$last"`)
	out := filepath.Join(t.TempDir(), "out.mp4")

	f := New(ffmpeg, "")
	require.NoError(t, f.Compose(context.Background(), "in.png", "", out, 8))

	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestCompose_TotalFailure_CleansUpAndTypesError(t *testing.T) {
	ffmpeg := writeStub(t, "ffmpeg", `for last; do :; done; : > "$last"; echo "boom" >&2; exit 1`)
	out := filepath.Join(t.TempDir(), "out.mp4")

	f := New(ffmpeg, "")
	err := f.Compose(context.Background(), "in.png", "", out, 8)
	require.Error(t, err)

	var gatewayErr *core.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, core.ErrorTypeCompose, gatewayErr.Type)
	assert.Contains(t, gatewayErr.Message, "boom")

	// No partial output left behind.
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCompose_AudioExtendsDuration(t *testing.T) {
	ffprobe := writeStub(t, "ffprobe", `echo "12.480000"`)
	// Record the args so we can assert on the -t value.
	argsFile := filepath.Join(t.TempDir(), "args")
	ffmpeg := writeStub(t, "ffmpeg", `echo "$*" > `+argsFile+`; for last; do :; done; : > "$last"`)
	out := filepath.Join(t.TempDir(), "out.mp4")

	f := New(ffmpeg, ffprobe)
	require.NoError(t, f.Compose(context.Background(), "in.png", "voice.mp3", out, 8))

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "-t 12.480")
	assert.Contains(t, string(args), "-c:a aac")
}

func TestCompose_ShortAudioKeepsMinimumDuration(t *testing.T) {
	ffprobe := writeStub(t, "ffprobe", `echo "3.0"`)
	argsFile := filepath.Join(t.TempDir(), "args")
	ffmpeg := writeStub(t, "ffmpeg", `echo "$*" > `+argsFile+`; for last; do :; done; : > "$last"`)
	out := filepath.Join(t.TempDir(), "out.mp4")

	f := New(ffmpeg, ffprobe)
	require.NoError(t, f.Compose(context.Background(), "in.png", "voice.mp3", out, 8))

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "-t 8.000")
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "real error", lastLine("noise\nmore noise\nreal error\n\n"))
	assert.Empty(t, lastLine("  \n "))
}
