// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"filippo.io/age"

	"github.com/luckee-foundation/luckee/lib/snapshot"
)

// runExport writes a snapshot of the state database.
func (c *cli) runExport(ctx context.Context, args []string) error {
	var configPath, outPath string
	var recipientKeys []string
	flagSet := c.newFlagSet("export", &configPath)
	flagSet.StringVarP(&outPath, "out", "o", "-", "snapshot file, or - for stdout")
	flagSet.StringArrayVarP(&recipientKeys, "recipient", "r", nil, "encrypt to this age public key (repeatable)")
	if done, err := parseFlags(flagSet, args); done || err != nil {
		return err
	}

	recipients, err := snapshot.ParseRecipients(recipientKeys)
	if err != nil {
		return err
	}
	local, err := c.openNode(configPath)
	if err != nil {
		return err
	}
	defer local.Close()

	var out io.Writer = c.stdout
	var file *os.File
	if outPath != "-" {
		if file, err = os.Create(outPath); err != nil {
			return fmt.Errorf("creating snapshot: %w", err)
		}
		out = file
	}

	stats, err := snapshot.Export(ctx, local.db, out, snapshot.ExportOptions{Recipients: recipients})
	if file != nil {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(outPath)
		}
	}
	if err != nil {
		return err
	}
	local.logger.Info("snapshot exported",
		"entries", stats.Entries,
		"checksum", stats.Checksum,
		"encrypted", len(recipients) > 0,
	)
	return nil
}

// runImport loads a snapshot into an empty state database.
func (c *cli) runImport(ctx context.Context, args []string) error {
	var configPath, inPath, identityPath string
	flagSet := c.newFlagSet("import", &configPath)
	flagSet.StringVarP(&inPath, "in", "i", "-", "snapshot file, or - for stdin")
	flagSet.StringVar(&identityPath, "identity", "", "age identity file for encrypted snapshots")
	if done, err := parseFlags(flagSet, args); done || err != nil {
		return err
	}

	var identities []age.Identity
	if identityPath != "" {
		var err error
		if identities, err = snapshot.LoadIdentities(identityPath); err != nil {
			return err
		}
	}

	var in io.Reader = c.stdin
	if inPath != "-" {
		file, err := os.Open(inPath)
		if err != nil {
			return fmt.Errorf("opening snapshot: %w", err)
		}
		defer file.Close()
		in = file
	}

	local, err := c.openNode(configPath)
	if err != nil {
		return err
	}
	defer local.Close()

	stats, err := snapshot.Import(ctx, local.db, in, identities)
	if err != nil {
		return err
	}
	local.logger.Info("snapshot imported",
		"entries", stats.Entries,
		"contract", stats.Header.Contract,
		"created", stats.Header.Created,
	)
	return c.writeJSON(stats)
}

// runKeygen generates an age keypair. The identity goes to stdout for
// redirecting into a file; the public key goes to stderr.
func (c *cli) runKeygen() error {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating keypair: %w", err)
	}
	fmt.Fprintf(c.stdout, "# public key: %s\n%s\n", identity.Recipient(), identity)
	fmt.Fprintf(c.stderr, "Public key: %s\n", identity.Recipient())
	return nil
}
