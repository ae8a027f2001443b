// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/luckee-foundation/luckee/lib/config"
	"github.com/luckee-foundation/luckee/lib/host"
	"github.com/luckee-foundation/luckee/lib/kvstore"
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/registry"
)

// newFlagSet returns a flag set with the --config flag every
// subcommand accepts.
func (c *cli) newFlagSet(name string, configPath *string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("luckee "+name, pflag.ContinueOnError)
	flagSet.SetOutput(c.stderr)
	flagSet.StringVar(configPath, "config", "", "path to luckee.yaml (default: $LUCKEE_CONFIG)")
	return flagSet
}

// parseFlags parses args and reports whether the command should stop
// because help was printed.
func parseFlags(flagSet *pflag.FlagSet, args []string) (bool, error) {
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. The auto format writes text to
// a terminal and JSON everywhere else.
func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	options := &slog.HandlerOptions{Level: level}

	format := cfg.Format
	if format == "auto" {
		format = "json"
		if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
			format = "text"
		}
	}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, options)), nil
	}
	return slog.New(slog.NewJSONHandler(w, options)), nil
}

func registryLimits(cfg config.LimitsConfig) registry.Limits {
	return registry.Limits{
		DefaultPageSize:    cfg.DefaultPageSize,
		MaxPageSize:        cfg.MaxPageSize,
		MaxBatchMint:       cfg.MaxBatchMint,
		MaxSynthesisInputs: cfg.MaxSynthesisInputs,
	}
}

// node is an opened state database with a host over it.
type node struct {
	config *config.Config
	logger *slog.Logger
	db     *kvstore.SQLite
	host   *host.Host
}

func (c *cli) openNode(configPath string) (*node, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Log, c.stderr)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}

	db, err := kvstore.OpenSQLite(kvstore.SQLiteConfig{
		Path:     cfg.Database.Path,
		PoolSize: cfg.Database.PoolSize,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Database.Path, err)
	}

	registryHost, err := host.New(host.Config{
		DB:     db,
		Limits: registryLimits(cfg.Limits),
		Logger: logger,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &node{config: cfg, logger: logger, db: db, host: registryHost}, nil
}

func (n *node) Close() error {
	return n.db.Close()
}

func parseCaller(raw string) (ref.Address, error) {
	if raw == "" {
		return ref.Address{}, fmt.Errorf("--caller is required")
	}
	caller, err := ref.ParseAddress(raw)
	if err != nil {
		return ref.Address{}, fmt.Errorf("--caller: %w", err)
	}
	return caller, nil
}
