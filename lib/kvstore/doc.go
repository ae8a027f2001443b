// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

// Package kvstore is the ordered byte key-value abstraction the registry
// persists through.
//
// A [DB] hands out a read-only [Reader] inside View and a writable
// [Store] inside Update. Update is atomic: if the callback returns an
// error, none of its writes become visible. Iteration visits keys in
// ascending byte order, and callbacks may write to the store they are
// iterating.
//
// Two implementations are provided. [Memory] keeps state in a
// copy-on-write B-tree and suits tests and ephemeral hosts. [SQLite]
// persists to a single WITHOUT ROWID table and runs every Update inside
// a savepoint.
package kvstore
