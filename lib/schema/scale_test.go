// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"encoding/json"
	"testing"
)

func TestScaleFirstPrize(t *testing.T) {
	t.Parallel()
	want := []Kind{CrimsonKoi, MagicalLamp, FatesSpindle, Sage, Polaris}
	scales := AllScales()
	if len(scales) != len(want) {
		t.Fatalf("len(AllScales()) = %d, want %d", len(scales), len(want))
	}
	for i, scale := range scales {
		if got := scale.FirstPrize(); got != want[i] {
			t.Errorf("%s.FirstPrize() = %s, want %s", scale, got, want[i])
		}
	}
}

func TestParseScale(t *testing.T) {
	t.Parallel()
	for _, scale := range AllScales() {
		parsed, err := ParseScale(scale.String())
		if err != nil {
			t.Fatalf("ParseScale(%q): %v", scale.String(), err)
		}
		if parsed != scale {
			t.Errorf("ParseScale(%q) = %s, want %s", scale.String(), parsed, scale)
		}
	}
	if _, err := ParseScale("Gigantic"); err == nil {
		t.Error("ParseScale(Gigantic) succeeded")
	}
}

func TestScaleJSON(t *testing.T) {
	t.Parallel()
	var decoded struct {
		Scale Scale `json:"scale"`
	}
	if err := json.Unmarshal([]byte(`{"scale":"Huge"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Scale != Huge {
		t.Errorf("Scale = %s, want Huge", decoded.Scale)
	}
	data, err := json.Marshal(decoded)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"scale":"Huge"}` {
		t.Errorf("Marshal = %s", data)
	}
	if _, err := json.Marshal(Scale(ScaleCount)); err == nil {
		t.Error("Marshal of invalid scale succeeded")
	}
}
