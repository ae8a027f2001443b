// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "fmt"

// Scale is the reward tier of the draw that produced a token. Only
// meaningful for tokens obtained by direct mint; synthesized tokens
// record Tiny.
type Scale uint8

const (
	Tiny Scale = iota
	Small
	Medium
	Large
	Huge
)

// ScaleCount is the number of Scale values.
const ScaleCount = 5

// AllScales returns every Scale from smallest to largest.
func AllScales() []Scale {
	return []Scale{Tiny, Small, Medium, Large, Huge}
}

// IsValid reports whether s is one of the five defined scales.
func (s Scale) IsValid() bool {
	return s < ScaleCount
}

func (s Scale) String() string {
	switch s {
	case Tiny:
		return "Tiny"
	case Small:
		return "Small"
	case Medium:
		return "Medium"
	case Large:
		return "Large"
	case Huge:
		return "Huge"
	default:
		return fmt.Sprintf("Scale(%d)", uint8(s))
	}
}

// ParseScale converts a canonical scale name back into a Scale.
func ParseScale(name string) (Scale, error) {
	for _, scale := range AllScales() {
		if scale.String() == name {
			return scale, nil
		}
	}
	return 0, fmt.Errorf("unknown scale %q", name)
}

// FirstPrize returns the kind awarded as first prize at this scale.
func (s Scale) FirstPrize() Kind {
	switch s {
	case Tiny:
		return CrimsonKoi
	case Small:
		return MagicalLamp
	case Medium:
		return FatesSpindle
	case Large:
		return Sage
	case Huge:
		return Polaris
	default:
		panic(fmt.Sprintf("schema: FirstPrize on invalid %s", s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Scale) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid %s", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scale) UnmarshalText(data []byte) error {
	parsed, err := ParseScale(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
