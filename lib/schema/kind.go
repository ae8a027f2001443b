// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "fmt"

// Kind is one of the nine collectible token types. The numeric value is
// the rarity ordinal: Clover (0) is the most common, Genesis (8) the
// rarest.
type Kind uint8

const (
	// Clover is the consolation token handed out for a losing draw.
	Clover Kind = iota
	// Firefly is the lowest prize, normally obtained by synthesis.
	Firefly
	// CrimsonKoi is the first prize of a Tiny-scale draw.
	CrimsonKoi
	// MagicalLamp is the first prize of a Small-scale draw.
	MagicalLamp
	// FatesSpindle is the first prize of a Medium-scale draw.
	FatesSpindle
	// Sage is the first prize of a Large-scale draw.
	Sage
	// Polaris is the first prize of a Huge-scale draw.
	Polaris
	// WheelOfDestiny is only reachable through synthesis.
	WheelOfDestiny
	// Genesis is the top tier, only reachable through synthesis.
	Genesis
)

// KindCount is the number of Kind values.
const KindCount = 9

// AllKinds returns every Kind in rarity order.
func AllKinds() []Kind {
	kinds := make([]Kind, KindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// IsValid reports whether k is one of the nine defined kinds.
func (k Kind) IsValid() bool {
	return k < KindCount
}

// String returns the kind's canonical name, e.g. "CrimsonKoi".
func (k Kind) String() string {
	switch k {
	case Clover:
		return "Clover"
	case Firefly:
		return "Firefly"
	case CrimsonKoi:
		return "CrimsonKoi"
	case MagicalLamp:
		return "MagicalLamp"
	case FatesSpindle:
		return "FatesSpindle"
	case Sage:
		return "Sage"
	case Polaris:
		return "Polaris"
	case WheelOfDestiny:
		return "WheelOfDestiny"
	case Genesis:
		return "Genesis"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind converts a canonical kind name back into a Kind.
func ParseKind(name string) (Kind, error) {
	for _, kind := range AllKinds() {
		if kind.String() == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", name)
}

// Rarity returns the rarity ordinal, 0 (Clover) through 8 (Genesis).
func (k Kind) Rarity() uint8 {
	switch k {
	case Clover, Firefly, CrimsonKoi, MagicalLamp, FatesSpindle,
		Sage, Polaris, WheelOfDestiny, Genesis:
		return uint8(k)
	default:
		panic(fmt.Sprintf("schema: Rarity on invalid %s", k))
	}
}

// RarityName returns the display name of the kind's rarity tier.
func (k Kind) RarityName() string {
	switch k {
	case Clover:
		return "Common"
	case Firefly:
		return "Uncommon"
	case CrimsonKoi:
		return "Rare"
	case MagicalLamp:
		return "Epic"
	case FatesSpindle:
		return "Legendary"
	case Sage:
		return "Mythic"
	case Polaris:
		return "Divine"
	case WheelOfDestiny:
		return "Transcendent"
	case Genesis:
		return "Genesis"
	default:
		return "Unknown"
	}
}

// ExchangeValue returns the kind's worth measured in Clovers.
func (k Kind) ExchangeValue() uint32 {
	switch k {
	case Clover:
		return 1
	case Firefly:
		return 2
	case CrimsonKoi:
		return 4
	case MagicalLamp:
		return 20
	case FatesSpindle:
		return 200
	case Sage:
		return 2000
	case Polaris:
		return 20000
	case WheelOfDestiny:
		return 200000
	case Genesis:
		return 2000000
	default:
		return 0
	}
}

// RarerThan reports whether k sits above other in the rarity order.
func (k Kind) RarerThan(other Kind) bool {
	return k.Rarity() > other.Rarity()
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid %s", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(data []byte) error {
	parsed, err := ParseKind(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
