// Package buildinfo holds version information injected at build time:
//
//	go build -ldflags "-X github.com/matzehuels/apiscout/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/apiscout/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/apiscout/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent is sent with every registry request unless the config overrides it.
func UserAgent() string {
	return "apiscout/" + Version
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
