// Package version provides build-time version information.
package version

// Set at build time using -ldflags, e.g.
//
//	-X github.com/ppiankov/pricelens/internal/version.Version=1.3.2
var (
	// Version is the semantic version. It also tags the persisted item corpus.
	Version = "0.1.0"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)
