// Package buildinfo holds the version stamped into taxotree binaries.
//
// The variables are set with ldflags at release time:
//
//	go build -ldflags "-X github.com/matzehuels/taxotree/pkg/buildinfo.Version=v0.4.0 \
//	    -X github.com/matzehuels/taxotree/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/taxotree/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the build information, one field per line.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// UserAgent identifies taxotree to remote sequence databases.
func UserAgent() string {
	return "taxotree/" + Version
}
