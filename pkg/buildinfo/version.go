// Package buildinfo holds version information injected at link time:
//
//	go build -ldflags "-X github.com/devmap/devmap/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/devmap/devmap/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/devmap/devmap/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/devmap
package buildinfo

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information, one field per line.
func String() string {
	return fmt.Sprintf("devmap %s\ncommit: %s\nbuilt:  %s\ngo:     %s %s/%s",
		Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Template returns the --version template for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, %s)\n", Version, Commit, Date)
}
