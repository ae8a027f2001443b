// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens the SQLite connection pool behind the
// durable registry store.
//
// It wraps zombiezen.com/go/sqlite with the pragmas a single-writer
// state store wants: WAL journaling so queries never block an execute,
// synchronous=NORMAL, a busy timeout for write contention, and an
// in-memory temp store. Each connection additionally runs the caller's
// schema script, so tables exist before the first [Pool.Take] returns.
//
// Connections are not safe for concurrent use. Hold one per goroutine
// via [Pool.Take] and [Pool.Put], or let [Pool.WithConn] manage the
// checkout.
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   "/var/lib/luckee/state.db",
//	    Schema: kvSchema,
//	    Logger: logger,
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
package sqlitepool
