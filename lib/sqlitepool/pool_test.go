// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/luckee-foundation/luckee/lib/sqlitepool"
)

const testSchema = `CREATE TABLE IF NOT EXISTS counters (name TEXT PRIMARY KEY, value INTEGER NOT NULL);`

func openTestPool(t *testing.T, onConnect func(*sqlite.Conn) error) *sqlitepool.Pool {
	t.Helper()
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:      filepath.Join(t.TempDir(), "test.db"),
		PoolSize:  4,
		Schema:    testSchema,
		OnConnect: onConnect,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return pool
}

func TestOpenAppliesPragmas(t *testing.T) {
	pool := openTestPool(t, nil)
	err := pool.WithConn(context.Background(), func(conn *sqlite.Conn) error {
		var journalMode string
		err := sqlitex.Execute(conn, "PRAGMA journal_mode", &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				journalMode = stmt.ColumnText(0)
				return nil
			},
		})
		if err != nil {
			return err
		}
		if journalMode != "wal" {
			t.Errorf("journal_mode = %q, want %q", journalMode, "wal")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithConn: %v", err)
	}
}

func TestSchemaAndOnConnect(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	pool := openTestPool(t, func(*sqlite.Conn) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})
	err := pool.WithConn(context.Background(), func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "INSERT INTO counters (name, value) VALUES (?, ?)", &sqlitex.ExecOptions{
			Args: []any{"token", 1},
		})
	})
	if err != nil {
		t.Fatalf("INSERT into schema table: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls == 0 {
		t.Error("OnConnect was not called")
	}
}

func TestConcurrentReads(t *testing.T) {
	pool := openTestPool(t, nil)
	err := pool.WithConn(context.Background(), func(conn *sqlite.Conn) error {
		return sqlitex.ExecuteScript(conn, `
			INSERT INTO counters (name, value) VALUES ('a', 1), ('b', 2), ('c', 3);
		`, nil)
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	const goroutines = 8
	var wg sync.WaitGroup
	errs := make(chan error, goroutines)
	sums := make(chan int64, goroutines)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var sum int64
			err := pool.WithConn(context.Background(), func(conn *sqlite.Conn) error {
				return sqlitex.Execute(conn, "SELECT value FROM counters", &sqlitex.ExecOptions{
					ResultFunc: func(stmt *sqlite.Stmt) error {
						sum += stmt.ColumnInt64(0)
						return nil
					},
				})
			})
			if err != nil {
				errs <- err
				return
			}
			sums <- sum
		}()
	}
	wg.Wait()
	close(errs)
	close(sums)
	for err := range errs {
		t.Errorf("reader: %v", err)
	}
	for sum := range sums {
		if sum != 6 {
			t.Errorf("sum = %d, want 6", sum)
		}
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := sqlitepool.Open(sqlitepool.Config{}); err == nil {
		t.Fatal("Open with empty path succeeded")
	}
}

func TestTakeHonorsCancelledContext(t *testing.T) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     filepath.Join(t.TempDir(), "single.db"),
		PoolSize: 1,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pool.Close()

	held, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pool.Take(ctx); err == nil {
		t.Error("Take with cancelled context succeeded while the only connection was held")
	}
	pool.Put(held)
}
