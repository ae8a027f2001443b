// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"time"

	"github.com/luckee-foundation/luckee/lib/ref"
)

// Expiration bounds the life of an approval. Zero fields are unset; an
// Expiration with both fields unset never expires.
type Expiration struct {
	// AtHeight expires the approval once the block height reaches it.
	AtHeight uint64 `json:"at_height,omitempty"`

	// AtTime expires the approval once block time (Unix seconds)
	// reaches it.
	AtTime uint64 `json:"at_time,omitempty"`
}

// Never reports whether the expiration is unbounded.
func (e Expiration) Never() bool {
	return e.AtHeight == 0 && e.AtTime == 0
}

// Expired reports whether the expiration has passed at the given block
// height and time.
func (e Expiration) Expired(height uint64, now time.Time) bool {
	if e.AtHeight != 0 && height >= e.AtHeight {
		return true
	}
	if e.AtTime != 0 && now.Unix() >= 0 && uint64(now.Unix()) >= e.AtTime {
		return true
	}
	return false
}

// Approval grants Spender the right to transfer or consume one token
// until Expires.
type Approval struct {
	Spender ref.Address `json:"spender"`
	Expires Expiration  `json:"expires"`
}
