// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"errors"
	"fmt"
	"slices"
)

// MaxGroupingIDLength bounds series and collection group identifiers.
const MaxGroupingIDLength = 100

// MaxPhysicalSKULength bounds the opaque physical SKU binding.
const MaxPhysicalSKULength = 256

// NftMeta is the typed extension stored 1:1 with every token. It is
// written once when the token is created and never modified.
type NftMeta struct {
	// Kind is the collectible type, which also fixes the rarity.
	Kind Kind `json:"kind"`

	// ScaleOrigin records the reward tier that produced a directly
	// minted token.
	ScaleOrigin Scale `json:"scale_origin"`

	// PhysicalSKU optionally binds the token to a real-world item.
	// Empty means unbound.
	PhysicalSKU string `json:"physical_sku,omitempty"`

	// CraftedFrom lists, in ascending order, the token IDs consumed by
	// the synthesis call that produced this token. Nil for directly
	// minted tokens.
	CraftedFrom []uint64 `json:"crafted_from,omitempty"`

	// SeriesID groups tokens from one mint batch, drop, or synthesis.
	SeriesID string `json:"series_id"`

	// CollectionGroupID optionally groups tokens across series. Empty
	// means no group.
	CollectionGroupID string `json:"collection_group_id,omitempty"`

	// SerialInSeries is the token's position within its series.
	SerialInSeries uint32 `json:"serial_in_series"`
}

// Crafted reports whether the token was produced by synthesis.
func (m *NftMeta) Crafted() bool {
	return len(m.CraftedFrom) > 0
}

// Clone returns a deep copy. CraftedFrom is the only reference field.
func (m NftMeta) Clone() NftMeta {
	m.CraftedFrom = slices.Clone(m.CraftedFrom)
	return m
}

// Equal reports whether two metadata values are identical.
func (m *NftMeta) Equal(other *NftMeta) bool {
	return m.Kind == other.Kind &&
		m.ScaleOrigin == other.ScaleOrigin &&
		m.PhysicalSKU == other.PhysicalSKU &&
		slices.Equal(m.CraftedFrom, other.CraftedFrom) &&
		m.SeriesID == other.SeriesID &&
		m.CollectionGroupID == other.CollectionGroupID &&
		m.SerialInSeries == other.SerialInSeries
}

// Validate checks that the metadata is well formed. It does not check
// lineage against the ledger; the registry owns that invariant.
func (m *NftMeta) Validate() error {
	if !m.Kind.IsValid() {
		return fmt.Errorf("nft meta: invalid kind %d", uint8(m.Kind))
	}
	if !m.ScaleOrigin.IsValid() {
		return fmt.Errorf("nft meta: invalid scale_origin %d", uint8(m.ScaleOrigin))
	}
	if len(m.PhysicalSKU) > MaxPhysicalSKULength {
		return fmt.Errorf("nft meta: physical_sku is %d bytes, maximum is %d", len(m.PhysicalSKU), MaxPhysicalSKULength)
	}
	if err := ValidateSeriesID(m.SeriesID); err != nil {
		return fmt.Errorf("nft meta: %w", err)
	}
	if m.CollectionGroupID != "" {
		if err := ValidateGroupID(m.CollectionGroupID); err != nil {
			return fmt.Errorf("nft meta: %w", err)
		}
	}
	for i := 1; i < len(m.CraftedFrom); i++ {
		if m.CraftedFrom[i] <= m.CraftedFrom[i-1] {
			return errors.New("nft meta: crafted_from must be strictly ascending")
		}
	}
	return nil
}

// ValidateSeriesID checks a series identifier: non-empty, at most 100
// bytes, ASCII letters, digits, '_' and '-' only.
func ValidateSeriesID(seriesID string) error {
	return validateGroupingID("series_id", seriesID)
}

// ValidateGroupID checks a collection group identifier with the same
// rules as ValidateSeriesID.
func ValidateGroupID(groupID string) error {
	return validateGroupingID("collection_group_id", groupID)
}

func validateGroupingID(label, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", label)
	}
	if len(value) > MaxGroupingIDLength {
		return fmt.Errorf("%s is %d bytes, maximum is %d", label, len(value), MaxGroupingIDLength)
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return fmt.Errorf("%s: invalid character %q at position %d", label, c, i)
		}
	}
	return nil
}
