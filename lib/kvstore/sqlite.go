// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/luckee-foundation/luckee/lib/sqlitepool"
)

// Schema is the table layout SQLite stores in. Keys and values are
// always bound as BLOBs, so SQLite orders keys by memcmp like
// bytes.Compare.
const Schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   BLOB PRIMARY KEY,
	value BLOB NOT NULL
) WITHOUT ROWID;
`

// iterateBatch is the number of rows Iterate buffers per query. The
// buffered rows are released before the callback runs, so callbacks may
// write through the same connection.
const iterateBatch = 128

// SQLiteConfig configures OpenSQLite.
type SQLiteConfig struct {
	Path     string
	PoolSize int
	Logger   *slog.Logger
}

// SQLite is a DB persisted in a SQLite file.
type SQLite struct {
	pool *sqlitepool.Pool
}

// OpenSQLite opens (creating if needed) the database at cfg.Path.
func OpenSQLite(cfg SQLiteConfig) (*SQLite, error) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: cfg.PoolSize,
		Schema:   Schema,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore: %w", err)
	}
	return &SQLite{pool: pool}, nil
}

// View implements DB. The callback sees a single consistent snapshot.
func (d *SQLite) View(ctx context.Context, fn func(Reader) error) (err error) {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("kvstore: view: %w", err)
	}
	defer d.pool.Put(conn)

	release := sqlitex.Save(conn)
	defer release(&err)
	return fn(&sqliteTxn{conn: conn})
}

// Update implements DB. The callback runs inside an IMMEDIATE
// transaction that rolls back when it returns an error.
func (d *SQLite) Update(ctx context.Context, fn func(Store) error) (err error) {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("kvstore: update: %w", err)
	}
	defer d.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("kvstore: begin transaction: %w", err)
	}
	defer endTransaction(&err)
	return fn(&sqliteTxn{conn: conn})
}

// Close implements DB.
func (d *SQLite) Close() error {
	return d.pool.Close()
}

type sqliteTxn struct {
	conn *sqlite.Conn
}

func columnBlob(stmt *sqlite.Stmt, column int) []byte {
	blob := make([]byte, stmt.ColumnLen(column))
	stmt.ColumnBytes(column, blob)
	return blob
}

func (t *sqliteTxn) Get(key []byte) ([]byte, error) {
	var value []byte
	found := false
	err := sqlitex.Execute(t.conn, "SELECT value FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = columnBlob(stmt, 0)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore: get: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return value, nil
}

func (t *sqliteTxn) Set(key, value []byte) error {
	// An empty blob binds as NULL, hence the ifnull.
	err := sqlitex.Execute(t.conn,
		"INSERT INTO kv (key, value) VALUES (?, ifnull(?, X'')) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		&sqlitex.ExecOptions{Args: []any{key, value}})
	if err != nil {
		return fmt.Errorf("kvstore: set: %w", err)
	}
	return nil
}

func (t *sqliteTxn) Delete(key []byte) error {
	err := sqlitex.Execute(t.conn, "DELETE FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
	})
	if err != nil {
		return fmt.Errorf("kvstore: delete: %w", err)
	}
	return nil
}

type kvPair struct {
	key, value []byte
}

func (t *sqliteTxn) Iterate(prefix, start []byte, fn func(key, value []byte) error) error {
	cursor, ok := iterationStart(prefix, start)
	if !ok {
		return nil
	}
	end := PrefixEnd(prefix)
	batch := make([]kvPair, 0, iterateBatch)
	for {
		batch = batch[:0]
		query := "SELECT key, value FROM kv WHERE key >= ifnull(?, X'') ORDER BY key LIMIT ?"
		args := []any{cursor, iterateBatch}
		if end != nil {
			query = "SELECT key, value FROM kv WHERE key >= ifnull(?, X'') AND key < ? ORDER BY key LIMIT ?"
			args = []any{cursor, end, iterateBatch}
		}
		err := sqlitex.Execute(t.conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				batch = append(batch, kvPair{key: columnBlob(stmt, 0), value: columnBlob(stmt, 1)})
				return nil
			},
		})
		if err != nil {
			return fmt.Errorf("kvstore: iterate: %w", err)
		}
		for _, pair := range batch {
			if err := fn(pair.key, pair.value); err != nil {
				if errors.Is(err, ErrStop) {
					return nil
				}
				return err
			}
		}
		if len(batch) < iterateBatch {
			return nil
		}
		// Next cursor is the smallest key strictly after the last one.
		last := batch[len(batch)-1].key
		cursor = append(last[:len(last):len(last)], 0)
	}
}
