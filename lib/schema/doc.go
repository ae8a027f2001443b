// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines the typed content stored by the Luckee token
// registry: the closed [Kind] and [Scale] enumerations, per-token
// [NftMeta], synthesis [Recipe] tables, and approval [Expiration].
//
// Types carry `json` tags because they cross both the CBOR storage
// boundary (lib/codec reads json tags as fallback) and JSON operator
// tooling. Kind and Scale marshal as their names, not their ordinals,
// so stored data survives reordering of the Go constants only if the
// names stay stable. The ordinals themselves are the rarity order and
// are part of the contract.
//
// Every content type has a Validate method. Validation errors for
// recipes are sentinel values so that callers can classify them;
// everything else returns descriptive errors.
//
// This package depends only on lib/ref.
package schema
