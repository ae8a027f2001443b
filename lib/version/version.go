// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the luckee
// binary and the registry contract it hosts.
//
// Version information is injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/luckee-foundation/luckee/lib/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

// ContractName identifies the registry in its persisted configuration
// and in snapshot headers.
const ContractName = "luckee-registry"

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the release version, set manually for releases.
	Version = "0.1.0-dev"
)

// Short returns just the version number. The registry records it as
// the contract version when instantiate or migrate names none.
func Short() string {
	return Version
}

// Info returns the version with its commit and build time, for log
// lines and "luckee serve" startup.
func Info() string {
	commit := GitCommit
	if GitDirty == "true" {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, BuildTime)
}

// Full extends Info with the toolchain and platform, for "luckee version".
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
