// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build information for the luckee binary and
// the contract identity the registry persists.
//
// # Build information
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string (set manually for releases)
//
// These default to "unknown" / "0.1.0-dev" when not injected, which
// occurs during development builds and test runs.
//
// Formatting functions produce human-readable version strings:
//
//   - [Info] -- "0.1.0-dev (abc1234, 2026-02-10T...)" for log lines
//   - [Full] -- Info plus Go version and GOOS/GOARCH, for "luckee version"
//   - [Short] -- just the version number
//
// # Contract identity
//
// [ContractName] is written into the registry's persisted configuration
// at instantiate and into every snapshot header; import refuses a
// snapshot carrying any other name. [Short] is the contract version
// recorded at instantiate when the caller supplies none, and the
// version a migrate reports as current.
package version
