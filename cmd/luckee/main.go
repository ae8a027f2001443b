// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/luckee-foundation/luckee/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := app.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the process streams so commands can be exercised in
// tests without touching the real stdin and stdout.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		c.printUsage()
		return fmt.Errorf("subcommand required")
	}

	subcommand, rest := args[0], args[1:]
	switch subcommand {
	case "init":
		return c.runInit(ctx, rest)
	case "exec":
		return c.runExec(ctx, rest)
	case "query":
		return c.runQuery(ctx, rest)
	case "serve":
		return c.runServe(ctx, rest)
	case "check":
		return c.runCheck(ctx, rest)
	case "export":
		return c.runExport(ctx, rest)
	case "import":
		return c.runImport(ctx, rest)
	case "keygen":
		return c.runKeygen()
	case "actions":
		return c.runActions(rest)
	case "version", "--version":
		fmt.Fprintf(c.stdout, "luckee %s\n", version.Full())
		return nil
	case "-h", "--help", "help":
		c.printUsage()
		return nil
	default:
		c.printUsage()
		return fmt.Errorf("unknown subcommand: %q", subcommand)
	}
}

func (c *cli) printUsage() {
	fmt.Fprintf(c.stderr, `Usage: luckee <subcommand> [flags]

Subcommands:
  init        Instantiate the registry from the contract section of the config
  exec        Execute a JSONC message file (or - for stdin) as --caller
  query       Answer a JSONC query message file (or - for stdin)
  serve       Serve the registry on a Unix socket
  check       Verify index consistency (--repair rebuilds the indexes)
  export      Write a snapshot of the state database
  import      Load a snapshot into an empty state database
  keygen      Generate an age keypair for encrypted snapshots
  actions     List the execute and query actions
  version     Print version information

Configuration is read from --config or LUCKEE_CONFIG.
Run 'luckee <subcommand> --help' for subcommand flags.
`)
}
