// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry implements the Luckee token registry: an ownership
// ledger of typed collectible tokens with an embedded synthesis engine
// that burns recipe-matching inputs and mints one higher-tier output.
//
// All state lives in a [kvstore.Store] under a fixed key layout (see
// keys.go). The primary state is the token ledger (owner and approvals
// per id) and the metadata store (immutable [schema.NftMeta] per id).
// Four secondary indexes (owner, kind, series, collection group) are
// pure projections of those two and are written in the same call as
// every ledger change, always in the order ledger, metadata, indexes.
// [View.CheckIndexes] recomputes the projections and reports any
// divergence; [Registry.RebuildIndexes] regenerates them.
//
// A [View] answers queries. A [Registry] embeds a View and adds the
// mutating operations, grouped by concern:
//
//   - TokenLedger: TransferNft, Approve, Revoke, ApproveAll, RevokeAll,
//     Burn
//   - MintGateway: Mint, BatchMint
//   - RecipeRegistry: SetRecipe, RemoveRecipe
//   - SynthesisEngine: Synthesize (and View.PreviewSynthesis)
//   - AdminControl: Instantiate, SetMinter, UpdateMinter, UpdateAdmin,
//     UpdateBaseURI, Pause, Unpause, Migrate
//
// Every mutating operation performs all of its validation before its
// first write, so a failed call leaves the store as it found it even
// without a rollback. The host still runs each call in one kvstore
// transaction. Failures are [*Error] values classified by [Code];
// match them with errors.Is against [ErrNotFound], [ErrUnauthorized]
// and the other sentinels.
package registry
