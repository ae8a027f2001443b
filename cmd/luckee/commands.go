// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/luckee-foundation/luckee/lib/codec"
	"github.com/luckee-foundation/luckee/lib/host"
	"github.com/luckee-foundation/luckee/lib/kvstore"
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/registry"
)

// runInit instantiates the registry with the config's contract section.
func (c *cli) runInit(ctx context.Context, args []string) error {
	var configPath, callerFlag string
	flagSet := c.newFlagSet("init", &configPath)
	flagSet.StringVar(&callerFlag, "caller", "", "instantiating address (becomes admin unless contract.admin is set)")
	if done, err := parseFlags(flagSet, args); done || err != nil {
		return err
	}

	caller, err := parseCaller(callerFlag)
	if err != nil {
		return err
	}
	local, err := c.openNode(configPath)
	if err != nil {
		return err
	}
	defer local.Close()

	params, err := instantiateParams(local.config.Contract.Name, local.config.Contract.Symbol,
		local.config.Contract.Admin, local.config.Contract.Minter)
	if err != nil {
		return err
	}
	params.BaseURI = local.config.Contract.BaseURI
	params.SeedDefaultRecipes = local.config.Contract.SeedDefaultRecipes

	result, err := local.host.Instantiate(ctx, caller, params)
	if err != nil {
		return err
	}
	local.logger.Info("registry instantiated",
		"database", local.config.Database.Path,
		"name", params.Name,
		"symbol", params.Symbol,
	)
	return c.writeResult(result)
}

func instantiateParams(name, symbol, admin, minter string) (registry.InstantiateParams, error) {
	params := registry.InstantiateParams{Name: name, Symbol: symbol}
	var err error
	if admin != "" {
		if params.Admin, err = ref.ParseAddress(admin); err != nil {
			return params, fmt.Errorf("contract.admin: %w", err)
		}
	}
	if minter != "" {
		if params.Minter, err = ref.ParseAddress(minter); err != nil {
			return params, fmt.Errorf("contract.minter: %w", err)
		}
	}
	return params, nil
}

// runExec executes one message, locally or against a serving node.
func (c *cli) runExec(ctx context.Context, args []string) error {
	var configPath, callerFlag, socketPath string
	flagSet := c.newFlagSet("exec", &configPath)
	flagSet.StringVar(&callerFlag, "caller", "", "address the message executes as (required)")
	flagSet.StringVar(&socketPath, "socket", "", "send to a running 'luckee serve' instead of opening the database")
	if done, err := parseFlags(flagSet, args); done || err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("usage: luckee exec [flags] <message.jsonc|->")
	}

	caller, err := parseCaller(callerFlag)
	if err != nil {
		return err
	}
	msg, err := c.loadMessage(flagSet.Arg(0))
	if err != nil {
		return err
	}

	var result *host.Result
	if socketPath != "" {
		result, err = host.NewClient(socketPath).Execute(ctx, caller, msg)
	} else {
		var local *node
		if local, err = c.openNode(configPath); err != nil {
			return err
		}
		defer local.Close()
		result, err = local.host.Execute(ctx, caller, msg)
	}
	if err != nil {
		return err
	}
	return c.writeResult(result)
}

// runQuery answers one query message.
func (c *cli) runQuery(ctx context.Context, args []string) error {
	var configPath, socketPath string
	flagSet := c.newFlagSet("query", &configPath)
	flagSet.StringVar(&socketPath, "socket", "", "query a running 'luckee serve' instead of opening the database")
	if done, err := parseFlags(flagSet, args); done || err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("usage: luckee query [flags] <message.jsonc|->")
	}

	msg, err := c.loadMessage(flagSet.Arg(0))
	if err != nil {
		return err
	}

	var answer codec.RawMessage
	if socketPath != "" {
		answer, err = host.NewClient(socketPath).Query(ctx, msg)
	} else {
		var local *node
		if local, err = c.openNode(configPath); err != nil {
			return err
		}
		defer local.Close()
		answer, err = local.host.Query(ctx, msg)
	}
	if err != nil {
		return err
	}
	value, err := decodeData(answer)
	if err != nil {
		return err
	}
	return c.writeJSON(value)
}

func (c *cli) loadMessage(path string) ([]byte, error) {
	data, err := c.readInput(path)
	if err != nil {
		return nil, fmt.Errorf("reading message: %w", err)
	}
	return encodeMessage(data)
}

// runCheck verifies the derived indexes and optionally rebuilds them.
// It fails when problems remain.
func (c *cli) runCheck(ctx context.Context, args []string) error {
	var configPath string
	var repair bool
	flagSet := c.newFlagSet("check", &configPath)
	flagSet.BoolVar(&repair, "repair", false, "rebuild indexes and counters from the ledger")
	if done, err := parseFlags(flagSet, args); done || err != nil {
		return err
	}

	local, err := c.openNode(configPath)
	if err != nil {
		return err
	}
	defer local.Close()

	report, err := checkIndexes(ctx, local.host)
	if err != nil {
		return err
	}
	if !report.OK() && repair {
		local.logger.Warn("index problems found, rebuilding", "problems", len(report.Problems))
		err := local.host.Maintain(ctx, func(r *registry.Registry) error {
			_, err := r.RebuildIndexes()
			return err
		})
		if err != nil {
			return fmt.Errorf("rebuilding indexes: %w", err)
		}
		if report, err = checkIndexes(ctx, local.host); err != nil {
			return err
		}
	}

	if err := c.writeJSON(report); err != nil {
		return err
	}
	if !report.OK() {
		return fmt.Errorf("%d index problems", len(report.Problems))
	}
	return nil
}

func checkIndexes(ctx context.Context, registryHost *host.Host) (*registry.Report, error) {
	msg, err := codec.Marshal(map[string]string{"action": "check_indexes"})
	if err != nil {
		return nil, err
	}
	answer, err := registryHost.Query(ctx, msg)
	if err != nil {
		return nil, err
	}
	var report registry.Report
	if err := codec.Unmarshal(answer, &report); err != nil {
		return nil, fmt.Errorf("decoding index report: %w", err)
	}
	return &report, nil
}

// runActions lists the registered actions. It needs no database.
func (c *cli) runActions(args []string) error {
	var configPath string
	flagSet := c.newFlagSet("actions", &configPath)
	if done, err := parseFlags(flagSet, args); done || err != nil {
		return err
	}

	registryHost, err := host.New(host.Config{DB: kvstore.NewMemory()})
	if err != nil {
		return err
	}
	execute, query := registryHost.Actions()
	slices.Sort(execute)
	slices.Sort(query)
	return c.writeJSON(map[string][]string{"execute": execute, "query": query})
}
