// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable identity references for
// Luckee accounts. Every party that owns, approves, mints, or
// administers tokens is represented by an [Address]: a validated value
// type whose zero value means "unset".
//
// Constructors validate their inputs and return errors for invalid
// names. Once constructed, an Address is immutable and compares with ==.
//
// Serialization uses encoding.TextMarshaler, so an Address appears as a
// plain string in both JSON and CBOR (see lib/codec).
package ref
