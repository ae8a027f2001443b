// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"encoding/json"
	"testing"
)

func TestKindOrdering(t *testing.T) {
	t.Parallel()
	kinds := AllKinds()
	if len(kinds) != KindCount {
		t.Fatalf("len(AllKinds()) = %d, want %d", len(kinds), KindCount)
	}
	if kinds[0] != Clover || kinds[KindCount-1] != Genesis {
		t.Fatalf("AllKinds() = %v, want Clover first and Genesis last", kinds)
	}
	for i := 1; i < len(kinds); i++ {
		if !kinds[i].RarerThan(kinds[i-1]) {
			t.Errorf("%s.RarerThan(%s) = false", kinds[i], kinds[i-1])
		}
		if kinds[i].ExchangeValue() <= kinds[i-1].ExchangeValue() {
			t.Errorf("%s exchange value %d is not above %s (%d)",
				kinds[i], kinds[i].ExchangeValue(), kinds[i-1], kinds[i-1].ExchangeValue())
		}
	}
}

func TestKindRarityMatchesOrdinal(t *testing.T) {
	t.Parallel()
	for _, kind := range AllKinds() {
		if kind.Rarity() != uint8(kind) {
			t.Errorf("%s.Rarity() = %d, want %d", kind, kind.Rarity(), uint8(kind))
		}
	}
	if Genesis.RarityName() != "Genesis" || Clover.RarityName() != "Common" {
		t.Errorf("unexpected rarity names: Clover=%q Genesis=%q", Clover.RarityName(), Genesis.RarityName())
	}
}

func TestKindExchangeValues(t *testing.T) {
	t.Parallel()
	want := map[Kind]uint32{
		Clover:         1,
		Firefly:        2,
		CrimsonKoi:     4,
		MagicalLamp:    20,
		FatesSpindle:   200,
		Sage:           2000,
		Polaris:        20000,
		WheelOfDestiny: 200000,
		Genesis:        2000000,
	}
	for kind, value := range want {
		if got := kind.ExchangeValue(); got != value {
			t.Errorf("%s.ExchangeValue() = %d, want %d", kind, got, value)
		}
	}
	if got := Kind(KindCount).ExchangeValue(); got != 0 {
		t.Errorf("invalid kind ExchangeValue() = %d, want 0", got)
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()
	for _, kind := range AllKinds() {
		parsed, err := ParseKind(kind.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", kind.String(), err)
		}
		if parsed != kind {
			t.Errorf("ParseKind(%q) = %s, want %s", kind.String(), parsed, kind)
		}
	}
	for _, name := range []string{"", "clover", "Dragon", "Kind(9)"} {
		if _, err := ParseKind(name); err == nil {
			t.Errorf("ParseKind(%q) succeeded, want error", name)
		}
	}
}

func TestKindJSON(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(FatesSpindle)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"FatesSpindle"` {
		t.Errorf("Marshal = %s, want %q", data, "FatesSpindle")
	}
	var decoded Kind
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != FatesSpindle {
		t.Errorf("Unmarshal = %s, want FatesSpindle", decoded)
	}
	if _, err := json.Marshal(Kind(42)); err == nil {
		t.Error("Marshal of invalid kind succeeded")
	}
	if err := json.Unmarshal([]byte(`"Unicorn"`), &decoded); err == nil {
		t.Error("Unmarshal of unknown kind succeeded")
	}
}

func TestKindRarityPanicsOnInvalid(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatal("Rarity() on invalid kind did not panic")
		}
	}()
	Kind(KindCount).Rarity()
}
