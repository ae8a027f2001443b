// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/google/btree"
)

const btreeDegree = 32

type entry struct {
	key   string
	value []byte
}

func entryLess(a, b entry) bool { return a.key < b.key }

// Map is an unsynchronized ordered Store backed by a B-tree. The zero
// value is not usable; call NewMap.
type Map struct {
	tree *btree.BTreeG[entry]
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{tree: btree.NewG(btreeDegree, entryLess)}
}

// Clone returns an independent copy. The copy shares structure with m
// until either side writes.
func (m *Map) Clone() *Map {
	return &Map{tree: m.tree.Clone()}
}

// Len returns the number of keys.
func (m *Map) Len() int { return m.tree.Len() }

// Get implements Reader.
func (m *Map) Get(key []byte) ([]byte, error) {
	item, ok := m.tree.Get(entry{key: string(key)})
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(item.value), nil
}

// Set implements Store.
func (m *Map) Set(key, value []byte) error {
	m.tree.ReplaceOrInsert(entry{key: string(key), value: bytes.Clone(value)})
	return nil
}

// Delete implements Store. Deleting an absent key is not an error.
func (m *Map) Delete(key []byte) error {
	m.tree.Delete(entry{key: string(key)})
	return nil
}

// Iterate implements Reader. It walks a snapshot, so fn may write to m.
func (m *Map) Iterate(prefix, start []byte, fn func(key, value []byte) error) error {
	from, ok := iterationStart(prefix, start)
	if !ok {
		return nil
	}
	snapshot := m.tree.Clone()
	var callbackErr error
	visit := func(item entry) bool {
		callbackErr = fn([]byte(item.key), item.value)
		return callbackErr == nil
	}
	if end := PrefixEnd(prefix); end != nil {
		snapshot.AscendRange(entry{key: string(from)}, entry{key: string(end)}, visit)
	} else {
		snapshot.AscendGreaterOrEqual(entry{key: string(from)}, visit)
	}
	if errors.Is(callbackErr, ErrStop) {
		return nil
	}
	return callbackErr
}

// Memory is an in-process DB. Each Update works on a copy-on-write
// clone that replaces the committed state only when the callback
// succeeds. Updates are serialized; Views run concurrently against the
// state committed when they started.
type Memory struct {
	writeMu sync.Mutex
	// mu guards state and closed. B-tree Clone mutates the source's
	// copy-on-write marker, so snapshots take the exclusive lock.
	mu     sync.Mutex
	state  *Map
	closed bool
}

// NewMemory returns an empty in-memory DB.
func NewMemory() *Memory {
	return &Memory{state: NewMap()}
}

var errClosed = errors.New("kvstore: database closed")

func (d *Memory) snapshot() (*Map, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errClosed
	}
	return d.state.Clone(), nil
}

// View implements DB.
func (d *Memory) View(ctx context.Context, fn func(Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot, err := d.snapshot()
	if err != nil {
		return err
	}
	return fn(snapshot)
}

// Update implements DB.
func (d *Memory) Update(ctx context.Context, fn func(Store) error) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	working, err := d.snapshot()
	if err != nil {
		return err
	}
	if err := fn(working); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errClosed
	}
	d.state = working
	return nil
}

// Close implements DB. Later calls fail.
func (d *Memory) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
