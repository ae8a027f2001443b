// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/luckee-foundation/luckee/lib/codec"
	"github.com/luckee-foundation/luckee/lib/kvstore"
)

// Env is the execution context of one call: the block it runs in.
type Env struct {
	Height uint64
	Time   time.Time
}

// Limits bounds the work a single call may request.
type Limits struct {
	// DefaultPageSize applies when a query passes limit 0.
	DefaultPageSize uint32
	// MaxPageSize clamps larger page requests.
	MaxPageSize uint32
	// MaxBatchMint caps the items in one BatchMint.
	MaxBatchMint int
	// MaxSynthesisInputs caps the input tokens in one synthesis, and
	// therefore the total input count of any recipe.
	MaxSynthesisInputs int
}

// DefaultLimits returns the limits used when Options leaves them zero.
func DefaultLimits() Limits {
	return Limits{
		DefaultPageSize:    30,
		MaxPageSize:        30,
		MaxBatchMint:       100,
		MaxSynthesisInputs: 50,
	}
}

func (l Limits) withDefaults() Limits {
	defaults := DefaultLimits()
	if l.DefaultPageSize == 0 {
		l.DefaultPageSize = defaults.DefaultPageSize
	}
	if l.MaxPageSize == 0 {
		l.MaxPageSize = defaults.MaxPageSize
	}
	if l.DefaultPageSize > l.MaxPageSize {
		l.DefaultPageSize = l.MaxPageSize
	}
	if l.MaxBatchMint <= 0 {
		l.MaxBatchMint = defaults.MaxBatchMint
	}
	if l.MaxSynthesisInputs <= 0 {
		l.MaxSynthesisInputs = defaults.MaxSynthesisInputs
	}
	return l
}

// Options configures a View or Registry.
type Options struct {
	Limits Limits
	Logger *slog.Logger
}

// View answers read-only queries against one consistent state.
type View struct {
	reader kvstore.Reader
	env    Env
	limits Limits
	logger *slog.Logger
}

// NewView wraps a reader. Expiry checks in queries use env.
func NewView(reader kvstore.Reader, env Env, opts Options) *View {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &View{
		reader: reader,
		env:    env,
		limits: opts.Limits.withDefaults(),
		logger: logger,
	}
}

// Registry executes one call's mutations against a store. Every
// operation validates completely before its first write, so a failed
// operation leaves the store untouched. The caller owns the
// transaction: it commits the store when the operation succeeds and
// discards it otherwise.
//
// A Registry is not safe for concurrent use; create one per call.
type Registry struct {
	*View
	store  kvstore.Store
	events []Event
}

// New returns a Registry that reads and writes through store.
func New(store kvstore.Store, env Env, opts Options) *Registry {
	return &Registry{View: NewView(store, env, opts), store: store}
}

// Events returns the events emitted by successful operations so far.
func (r *Registry) Events() []Event {
	return r.events
}

func (r *Registry) emit(event Event) {
	r.events = append(r.events, event)
}

// Limits returns the effective limits.
func (v *View) Limits() Limits { return v.limits }

// Env returns the execution context.
func (v *View) Env() Env { return v.env }

func (v *View) pageSize(limit uint32) int {
	if limit == 0 {
		return int(v.limits.DefaultPageSize)
	}
	return int(min(limit, v.limits.MaxPageSize))
}

// load decodes the value at key into target. Absent keys return
// kvstore.ErrNotFound unchanged so callers can name the entity.
func (v *View) load(key []byte, target any) error {
	data, err := v.reader.Get(key)
	if err != nil {
		return err
	}
	return unmarshalValue(key, data, target)
}

func unmarshalValue(key, value []byte, target any) error {
	if err := codec.Unmarshal(value, target); err != nil {
		return fmt.Errorf("registry: decoding %q: %w", key, err)
	}
	return nil
}

func (v *View) has(key []byte) (bool, error) {
	return kvstore.Has(v.reader, key)
}

func (v *View) counter(key []byte) (uint64, error) {
	data, err := v.reader.Get(key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("registry: counter %q has %d bytes", key, len(data))
	}
	return decodeID(data), nil
}

func (r *Registry) save(key []byte, value any) error {
	data, err := codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("registry: encoding %q: %w", key, err)
	}
	return r.store.Set(key, data)
}

func (r *Registry) setCounter(key []byte, value uint64) error {
	return r.store.Set(key, encodeCounter(value))
}

// addSupply adjusts the live token count by delta.
func (r *Registry) addSupply(delta int64) error {
	supply, err := r.counter(keySupply)
	if err != nil {
		return err
	}
	if delta < 0 && uint64(-delta) > supply {
		return fmt.Errorf("registry: supply underflow: %d%+d", supply, delta)
	}
	return r.setCounter(keySupply, uint64(int64(supply)+delta))
}
