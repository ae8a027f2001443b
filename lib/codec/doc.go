// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the single CBOR configuration every Luckee package
// encodes with.
//
// Persisted registry values (token records, metadata, recipes, contract
// configuration, synthesis history), host request and response
// envelopes, and snapshot streams all go through this package. The
// encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so equal
// values always produce equal bytes. The state digest depends on that.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types carry `json` tags only. fxamacker/cbor falls back to them, so
// one tag governs field names and omitempty for the CLI's JSON output
// and for CBOR alike.
package codec
