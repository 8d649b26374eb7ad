// Package version holds build metadata set through -ldflags, e.g.
//
//	go build -ldflags "-X dashcache/internal/version.Version=v0.3.0 -X dashcache/internal/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import "fmt"

var (
	Version   string = "dev"
	GitCommit string = "unknown"
	BuildTime string = "unknown"
)

func GetVersion() string {
	return Version
}

func GetFullVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime)
}
