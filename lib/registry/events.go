// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/schema"
)

// EventType names the operation an Event records.
type EventType string

const (
	EventInstantiate   EventType = "instantiate"
	EventMint          EventType = "mint"
	EventBatchMint     EventType = "batch_mint"
	EventTransfer      EventType = "transfer_nft"
	EventApprove       EventType = "approve"
	EventRevoke        EventType = "revoke"
	EventApproveAll    EventType = "approve_all"
	EventRevokeAll     EventType = "revoke_all"
	EventBurn          EventType = "burn"
	EventSynthesize    EventType = "synthesize"
	EventSetRecipe     EventType = "set_recipe"
	EventRemoveRecipe  EventType = "remove_recipe"
	EventSetMinter     EventType = "set_minter"
	EventUpdateMinter  EventType = "update_minter"
	EventUpdateAdmin   EventType = "update_admin"
	EventUpdateBaseURI EventType = "update_base_uri"
	EventPause         EventType = "pause"
	EventUnpause       EventType = "unpause"
	EventMigrate       EventType = "migrate"
)

// Event is the structured record a successful mutation emits. Only the
// fields relevant to Type are set.
type Event struct {
	Type   EventType   `json:"type"`
	Caller ref.Address `json:"caller,omitzero"`

	// TokenIDs lists the tokens created, moved, or destroyed.
	TokenIDs []uint64 `json:"token_ids,omitempty"`

	// Kind is the kind of a minted or burned token, the target of a
	// synthesis, or the target of a recipe change.
	Kind *schema.Kind `json:"kind,omitempty"`

	Owner     ref.Address `json:"owner,omitzero"`
	Recipient ref.Address `json:"recipient,omitzero"`
	Spender   ref.Address `json:"spender,omitzero"`
	Operator  ref.Address `json:"operator,omitzero"`
	Minter    ref.Address `json:"minter,omitzero"`
	Allowed   *bool       `json:"allowed,omitempty"`

	Expires *schema.Expiration `json:"expires,omitempty"`

	// Items lists every token a batch mint created.
	Items []MintedToken `json:"items,omitempty"`

	// Inputs and Output are set on synthesize events.
	Inputs []uint64 `json:"inputs,omitempty"`
	Output uint64   `json:"output,omitempty"`
	Series string   `json:"series_id,omitempty"`

	BaseURI string `json:"base_uri,omitempty"`
	Version string `json:"version,omitempty"`
}

// MintedToken describes one token created by a batch mint.
type MintedToken struct {
	TokenID  uint64      `json:"token_id"`
	Owner    ref.Address `json:"owner"`
	Kind     schema.Kind `json:"kind"`
	SeriesID string      `json:"series_id"`
}

func kindPtr(kind schema.Kind) *schema.Kind { return &kind }
