// Package artifact names and places generated media files and maps them
// to public URLs. Files belonging to one job share a random suffix so
// they can be associated on disk without a database lookup.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"lessonforge/internal/core"
)

const (
	videosDir      = "videos"
	maxPrefixChars = 40
	suffixHexChars = 8
)

// Store places artifacts under a media root and derives their URLs from
// a base URL prefix.
type Store struct {
	root    string
	baseURL string
}

// New creates a Store rooted at root, serving URLs under baseURL.
func New(root, baseURL string) *Store {
	return &Store{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Set is the planned file layout for one video job. The paths do not
// exist yet; the pipeline writes them.
type Set struct {
	ImagePath string
	AudioPath string
	VideoPath string
	PublicURL string
}

// Plan allocates the file set for one job: it creates the output
// directory and returns the three sibling paths plus the video's URL.
func (s *Store) Plan(subfolder, filenamePrefix string) (*Set, error) {
	dir := filepath.Join(s.root, videosDir, sanitizeSegment(subfolder))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", dir, err)
	}

	base := fmt.Sprintf("%s_%s", SanitizePrefix(filenamePrefix), randomSuffix())

	return &Set{
		ImagePath: filepath.Join(dir, base+".png"),
		AudioPath: filepath.Join(dir, base+".mp3"),
		VideoPath: filepath.Join(dir, base+".mp4"),
		PublicURL: strings.Join([]string{s.baseURL, videosDir, sanitizeSegment(subfolder), base + ".mp4"}, "/"),
	}, nil
}

// Artifact converts a Set to the core representation. audioPresent is
// false when narration was skipped or failed.
func (set *Set) Artifact(audioPresent bool) *core.MediaArtifact {
	a := &core.MediaArtifact{
		ImagePath: set.ImagePath,
		VideoPath: set.VideoPath,
		PublicURL: set.PublicURL,
	}
	if audioPresent {
		a.AudioPath = set.AudioPath
	}
	return a
}

// Discard removes whatever files of the set exist. Used on the fatal
// error paths so a failed job leaves nothing behind.
func (set *Set) Discard() {
	for _, p := range []string{set.ImagePath, set.AudioPath, set.VideoPath} {
		_ = os.Remove(p)
	}
}

// SanitizePrefix makes a filename prefix filesystem- and URL-safe:
// spaces become underscores, path separators and dots are stripped, and
// the result is bounded. An empty result falls back to "clip".
func SanitizePrefix(prefix string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(prefix) {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '/' || r == '\\' || r == '.' || r == 0:
			// dropped
		default:
			b.WriteRune(r)
		}
	}

	out := b.String()
	if runes := []rune(out); len(runes) > maxPrefixChars {
		out = string(runes[:maxPrefixChars])
	}
	if out == "" {
		return "clip"
	}
	return out
}

// sanitizeSegment bounds a URL path segment the same way, defaulting to
// "clips" for an empty subfolder.
func sanitizeSegment(segment string) string {
	out := SanitizePrefix(segment)
	if out == "clip" && strings.TrimSpace(segment) == "" {
		return "clips"
	}
	return out
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixHexChars]
}
