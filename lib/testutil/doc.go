// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Luckee packages.
//
// [SocketDir] creates a temporary directory in /tmp suitable for Unix
// domain sockets. Unix domain sockets have a 108-byte path limit
// (sun_path in sockaddr_un), and t.TempDir() can return paths long
// enough to exceed it. The directory is removed when the test
// completes.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so that individual
// tests do not need direct time.After calls.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no Luckee-internal dependencies.
package testutil
