// Package version holds build metadata injected via ldflags.
package version

import (
	"fmt"
	"runtime"
)

// These variables are set during build time via ldflags:
//
//	-X github.com/goclaw/kernelbus/pkg/version.Version=v0.3.0
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GoVersion = runtime.Version()
)

// Info returns the build metadata keyed as served by the admin /version route.
func Info() map[string]string {
	return map[string]string{
		"version":   Version,
		"buildTime": BuildTime,
		"gitCommit": GitCommit,
		"goVersion": GoVersion,
	}
}

// String renders the build metadata on one line.
func String() string {
	return fmt.Sprintf("kernelbus %s (commit %s, built %s, %s)", Version, GitCommit, BuildTime, GoVersion)
}
