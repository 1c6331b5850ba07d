// Package version holds build metadata injected at link time via
// -ldflags "-X lessonforge/internal/version.Version=...".
package version

import "fmt"

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)

// Info returns a single-line human-readable version string.
func Info() string {
	return fmt.Sprintf("lessonforge %s (commit %s, built %s)", Version, Commit, Date)
}
