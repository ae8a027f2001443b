// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/luckee-foundation/luckee/lib/host"
	"github.com/luckee-foundation/luckee/lib/version"
)

// runServe serves the registry until the context is cancelled
// (SIGINT or SIGTERM).
func (c *cli) runServe(ctx context.Context, args []string) error {
	var configPath, socketPath string
	flagSet := c.newFlagSet("serve", &configPath)
	flagSet.StringVar(&socketPath, "socket", "", "socket path (default: host.socket_path from config)")
	if done, err := parseFlags(flagSet, args); done || err != nil {
		return err
	}

	local, err := c.openNode(configPath)
	if err != nil {
		return err
	}
	defer local.Close()

	if socketPath == "" {
		socketPath = local.config.Host.SocketPath
	}
	height, err := local.host.Height(ctx)
	if err != nil {
		return err
	}
	local.logger.Info("luckee starting",
		"version", version.Info(),
		"environment", local.config.Environment,
		"database", local.config.Database.Path,
		"height", height,
	)

	server := host.NewServer(local.host, socketPath, local.logger)
	if err := server.Serve(ctx, nil); err != nil {
		return err
	}
	local.logger.Info("luckee stopped")
	return nil
}
