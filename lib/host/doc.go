// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

// Package host runs registry operations as discrete calls against a
// kvstore.DB, the way a chain runtime runs contract messages.
//
// A message is a CBOR map with an "action" field naming the operation
// plus that operation's fields:
//
//	{"action": "synthesize", "inputs": [4, 9], "target": "Firefly"}
//
// [Host.Execute] runs a mutating action for a caller inside one
// transaction, so a failing call leaves no trace. Every successful call
// advances a persisted block height by one; block time comes from the
// configured clock. The [Result] carries the emitted events and the
// action's CBOR-encoded return data. [Host.Query] answers read-only
// actions against the current state.
//
// [Server] exposes a Host on a Unix socket with one CBOR request and
// one CBOR response per connection, and [Client] calls it. Failures
// carry the registry error code so remote callers can match them with
// errors.Is against the registry sentinels.
package host
