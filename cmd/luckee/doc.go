// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

// Luckee runs a typed collectible registry backed by a SQLite state
// file. It instantiates the registry, executes and queries JSONC
// messages locally or through a serving node, verifies and repairs
// derived indexes, and moves state between databases as (optionally
// age-encrypted) snapshots.
//
// Messages are JSON objects with an "action" field naming the
// operation, for example:
//
//	{
//	  "action": "synthesize",
//	  "inputs": [1, 2, 3, 4, 5],
//	  "target": "Firefly", // five Clovers
//	}
//
// Run "luckee actions" for the list of execute and query actions.
package main
