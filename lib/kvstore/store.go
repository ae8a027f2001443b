// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"bytes"
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = errors.New("kvstore: key not found")

	// ErrStop may be returned by an Iterate callback to end iteration
	// early. Iterate then returns nil.
	ErrStop = errors.New("kvstore: stop iteration")
)

// Reader is read access to a consistent view of the store.
type Reader interface {
	// Get returns the value for key, or ErrNotFound. The returned slice
	// is owned by the caller.
	Get(key []byte) ([]byte, error)

	// Iterate calls fn for every key with the given prefix that is
	// greater than or equal to start, in ascending order. A nil start
	// begins at the prefix. Slices passed to fn are only valid for the
	// duration of the call.
	Iterate(prefix, start []byte, fn func(key, value []byte) error) error
}

// Store is read-write access inside an Update.
type Store interface {
	Reader
	Set(key, value []byte) error
	Delete(key []byte) error
}

// DB is a transactional key-value database.
type DB interface {
	View(ctx context.Context, fn func(Reader) error) error
	Update(ctx context.Context, fn func(Store) error) error
	Close() error
}

// PrefixEnd returns the smallest key greater than every key with the
// given prefix, or nil when no such key exists (the prefix is empty or
// all 0xff).
func PrefixEnd(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// iterationStart clamps start into the prefix range. It returns false
// when start lies beyond every key with the prefix.
func iterationStart(prefix, start []byte) ([]byte, bool) {
	if start == nil || bytes.Compare(start, prefix) < 0 {
		return prefix, true
	}
	if bytes.HasPrefix(start, prefix) {
		return start, true
	}
	return nil, false
}

// Has reports whether key exists.
func Has(r Reader, key []byte) (bool, error) {
	_, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Copy writes every key-value pair under prefix from src into dst.
func Copy(dst Store, src Reader, prefix []byte) (int, error) {
	count := 0
	err := src.Iterate(prefix, nil, func(key, value []byte) error {
		count++
		return dst.Set(key, value)
	})
	return count, err
}
