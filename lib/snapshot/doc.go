// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot exports and restores a complete registry database.
//
// A snapshot is a CBOR sequence compressed with zstd: a [Header], one
// item per key-value pair in key order, and a trailer with the entry
// count and a BLAKE3 checksum over the entries. Export can encrypt the
// compressed stream to age X25519 recipients; Import detects the age
// header and decrypts with the identities it is given.
//
// Snapshots copy every key, derived indexes included, so an imported
// database is immediately queryable. Run registry CheckIndexes after
// import to confirm.
package snapshot
