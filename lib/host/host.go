// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/luckee-foundation/luckee/lib/clock"
	"github.com/luckee-foundation/luckee/lib/codec"
	"github.com/luckee-foundation/luckee/lib/kvstore"
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/registry"
)

// keyHeight holds the height of the last executed call. It lives
// outside every registry prefix.
var keyHeight = []byte("host/height")

// ExecuteFunc runs one mutating action. The raw parameter is the full
// CBOR request (including the "action" field); the handler decodes its
// own fields from it. A non-nil result is CBOR-encoded into
// Result.Data.
type ExecuteFunc func(r *registry.Registry, caller ref.Address, raw []byte) (any, error)

// QueryFunc answers one read-only action.
type QueryFunc func(v *registry.View, raw []byte) (any, error)

// Config configures a Host.
type Config struct {
	// DB is the state every call runs against. Required.
	DB kvstore.DB

	// Clock supplies block time. Defaults to the real clock.
	Clock clock.Clock

	// Limits bounds page sizes, batch mints, and synthesis inputs.
	// Zero fields take registry defaults.
	Limits registry.Limits

	Logger *slog.Logger
}

// Result is the outcome of one successful Execute.
type Result struct {
	Action string           `json:"action"`
	Height uint64           `json:"height"`
	Events []registry.Event `json:"events,omitempty"`
	Data   codec.RawMessage `json:"data,omitempty"`
}

// Host executes registry actions against a kvstore.DB. Each Execute
// runs in one DB.Update transaction: the call either commits every
// write or none of them. The block height advances by one per
// successful Execute and block time comes from the clock.
//
// A Host is safe for concurrent use; the DB serializes writers.
type Host struct {
	db      kvstore.DB
	clock   clock.Clock
	options registry.Options
	logger  *slog.Logger

	execute map[string]ExecuteFunc
	query   map[string]QueryFunc
}

// New creates a Host with every registry action registered.
func New(cfg Config) (*Host, error) {
	if cfg.DB == nil {
		return nil, errors.New("host: DB is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	h := &Host{
		db:      cfg.DB,
		clock:   cfg.Clock,
		options: registry.Options{Limits: cfg.Limits, Logger: cfg.Logger},
		logger:  cfg.Logger,
		execute: make(map[string]ExecuteFunc),
		query:   make(map[string]QueryFunc),
	}
	registerExecuteActions(h)
	registerQueryActions(h)
	return h, nil
}

// HandleExecute registers a mutating action. Panics if the action is
// already registered.
func (h *Host) HandleExecute(action string, handler ExecuteFunc) {
	if _, exists := h.execute[action]; exists {
		panic(fmt.Sprintf("host: duplicate execute handler for action %q", action))
	}
	h.execute[action] = handler
}

// HandleQuery registers a read-only action. Panics if the action is
// already registered.
func (h *Host) HandleQuery(action string, handler QueryFunc) {
	if _, exists := h.query[action]; exists {
		panic(fmt.Sprintf("host: duplicate query handler for action %q", action))
	}
	h.query[action] = handler
}

// Execute decodes the action from msg and runs it for caller.
func (h *Host) Execute(ctx context.Context, caller ref.Address, msg []byte) (*Result, error) {
	action, err := decodeAction(msg)
	if err != nil {
		return nil, err
	}
	handler, exists := h.execute[action]
	if !exists {
		return nil, unknownAction(action)
	}
	return h.run(ctx, action, caller, func(r *registry.Registry) (any, error) {
		return handler(r, caller, msg)
	})
}

// Instantiate initializes the registry with caller as instantiator.
func (h *Host) Instantiate(ctx context.Context, caller ref.Address, params registry.InstantiateParams) (*Result, error) {
	return h.run(ctx, "instantiate", caller, func(r *registry.Registry) (any, error) {
		return nil, r.Instantiate(caller, params)
	})
}

// Maintain runs fn with a Registry inside one transaction without
// advancing the block height. Used by index repair.
func (h *Host) Maintain(ctx context.Context, fn func(r *registry.Registry) error) error {
	return h.db.Update(ctx, func(store kvstore.Store) error {
		height, err := loadHeight(store)
		if err != nil {
			return err
		}
		return fn(registry.New(store, registry.Env{Height: height, Time: h.clock.Now()}, h.options))
	})
}

func (h *Host) run(ctx context.Context, action string, caller ref.Address, fn func(r *registry.Registry) (any, error)) (*Result, error) {
	var result *Result
	err := h.db.Update(ctx, func(store kvstore.Store) error {
		height, err := loadHeight(store)
		if err != nil {
			return err
		}
		height++
		reg := registry.New(store, registry.Env{Height: height, Time: h.clock.Now()}, h.options)

		data, err := fn(reg)
		if err != nil {
			return err
		}
		if err := store.Set(keyHeight, binary.BigEndian.AppendUint64(nil, height)); err != nil {
			return err
		}
		result = &Result{Action: action, Height: height, Events: reg.Events()}
		if data != nil {
			encoded, err := codec.Marshal(data)
			if err != nil {
				return fmt.Errorf("host: encoding %s result: %w", action, err)
			}
			result.Data = encoded
		}
		return nil
	})
	if err != nil {
		h.logger.Debug("action failed",
			"action", action,
			"caller", caller,
			"error", err,
		)
		return nil, err
	}
	h.logger.Debug("action executed",
		"action", action,
		"caller", caller,
		"height", result.Height,
		"events", len(result.Events),
	)
	return result, nil
}

// Query decodes the action from msg and answers it against the current
// state. The returned bytes are the CBOR-encoded answer.
func (h *Host) Query(ctx context.Context, msg []byte) (codec.RawMessage, error) {
	action, err := decodeAction(msg)
	if err != nil {
		return nil, err
	}
	handler, exists := h.query[action]
	if !exists {
		return nil, unknownAction(action)
	}
	var encoded []byte
	err = h.db.View(ctx, func(reader kvstore.Reader) error {
		height, err := loadHeight(reader)
		if err != nil {
			return err
		}
		view := registry.NewView(reader, registry.Env{Height: height, Time: h.clock.Now()}, h.options)
		answer, err := handler(view, msg)
		if err != nil {
			return err
		}
		encoded, err = codec.Marshal(answer)
		if err != nil {
			return fmt.Errorf("host: encoding %s answer: %w", action, err)
		}
		return nil
	})
	if err != nil {
		h.logger.Debug("query failed", "action", action, "error", err)
		return nil, err
	}
	return encoded, nil
}

// Height returns the height of the last executed call.
func (h *Host) Height(ctx context.Context) (uint64, error) {
	var height uint64
	err := h.db.View(ctx, func(reader kvstore.Reader) error {
		var err error
		height, err = loadHeight(reader)
		return err
	})
	return height, err
}

// Actions lists the registered execute and query action names.
func (h *Host) Actions() (execute, query []string) {
	for action := range h.execute {
		execute = append(execute, action)
	}
	for action := range h.query {
		query = append(query, action)
	}
	return execute, query
}

func loadHeight(reader kvstore.Reader) (uint64, error) {
	data, err := reader.Get(keyHeight)
	if errors.Is(err, kvstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("host: height has %d bytes", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

func decodeAction(msg []byte) (string, error) {
	var header struct {
		Action string `json:"action"`
	}
	if err := codec.Unmarshal(msg, &header); err != nil {
		return "", invalidInput("invalid request: %v", err)
	}
	if header.Action == "" {
		return "", invalidInput("missing required field: action")
	}
	return header.Action, nil
}

func unknownAction(action string) error {
	return invalidInput("unknown action %q", action)
}

// invalidInput reports a malformed request with the registry's
// invalid_input code so that callers see one error taxonomy.
func invalidInput(format string, args ...any) error {
	return &registry.Error{Code: registry.CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// decode unmarshals the action-specific fields of raw into target.
func decode(raw []byte, target any) error {
	if err := codec.Unmarshal(raw, target); err != nil {
		return invalidInput("invalid request: %v", err)
	}
	return nil
}
