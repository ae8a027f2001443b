// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"fmt"
	"maps"
	"testing"
	"time"

	"github.com/luckee-foundation/luckee/lib/kvstore"
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/schema"
)

var (
	admin  = ref.MustParseAddress("admin")
	minter = ref.MustParseAddress("minter")
	alice  = ref.MustParseAddress("alice")
	bob    = ref.MustParseAddress("bob")
	carol  = ref.MustParseAddress("carol")
)

var blockTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fixture is an instantiated registry over an in-memory store. Calls
// run directly against the store with no rollback, so a failed call
// that wrote anything is visible to the test.
type fixture struct {
	t      *testing.T
	store  *kvstore.Map
	env    Env
	limits Limits
	events []Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		store: kvstore.NewMap(),
		env:   Env{Height: 100, Time: blockTime},
	}
	f.mustDo(func(r *Registry) error {
		return r.Instantiate(admin, InstantiateParams{
			Name:               "Luckee",
			Symbol:             "LKE",
			Minter:             minter,
			BaseURI:            "https://nft.luckee.example/meta/",
			SeedDefaultRecipes: true,
			Version:            "1.0.0",
		})
	})
	return f
}

func (f *fixture) registry() *Registry {
	return New(f.store, f.env, Options{Limits: f.limits})
}

func (f *fixture) view() *View {
	return NewView(f.store, f.env, Options{Limits: f.limits})
}

func (f *fixture) do(fn func(r *Registry) error) error {
	r := f.registry()
	if err := fn(r); err != nil {
		return err
	}
	f.events = append(f.events, r.Events()...)
	return nil
}

func (f *fixture) mustDo(fn func(r *Registry) error) {
	f.t.Helper()
	if err := f.do(fn); err != nil {
		f.t.Fatalf("unexpected error: %v", err)
	}
}

// lastEvent returns the most recent event.
func (f *fixture) lastEvent() Event {
	f.t.Helper()
	if len(f.events) == 0 {
		f.t.Fatal("no events emitted")
	}
	return f.events[len(f.events)-1]
}

// mint mints one token of kind to owner in series and returns its id.
func (f *fixture) mint(owner ref.Address, kind schema.Kind, series string) uint64 {
	f.t.Helper()
	var id uint64
	f.mustDo(func(r *Registry) error {
		var err error
		id, err = r.Mint(minter, MintRequest{Owner: owner, Extension: meta(kind, series)})
		return err
	})
	return id
}

func (f *fixture) mintN(owner ref.Address, kind schema.Kind, count int) []uint64 {
	f.t.Helper()
	ids := make([]uint64, count)
	for i := range ids {
		ids[i] = f.mint(owner, kind, "drop-1")
	}
	return ids
}

// dump returns every key and value in the store.
func (f *fixture) dump() map[string]string {
	f.t.Helper()
	state := make(map[string]string)
	err := f.store.Iterate(nil, nil, func(key, value []byte) error {
		state[string(key)] = string(value)
		return nil
	})
	if err != nil {
		f.t.Fatalf("dump: %v", err)
	}
	return state
}

// expectUnchanged runs fn, requires it to fail with code, and requires
// the store to be byte-for-byte unchanged.
func (f *fixture) expectUnchanged(code Code, fn func(r *Registry) error) error {
	f.t.Helper()
	before := f.dump()
	eventsBefore := len(f.events)
	err := f.do(fn)
	expectCode(f.t, err, code)
	if after := f.dump(); !maps.Equal(before, after) {
		f.t.Errorf("failed call modified the store (%d keys before, %d after)", len(before), len(after))
	}
	if len(f.events) != eventsBefore {
		f.t.Errorf("failed call emitted events")
	}
	return err
}

func (f *fixture) owner(id uint64) ref.Address {
	f.t.Helper()
	info, err := f.view().OwnerOf(id, false)
	if err != nil {
		f.t.Fatalf("OwnerOf(%d): %v", id, err)
	}
	return info.Owner
}

func meta(kind schema.Kind, series string) schema.NftMeta {
	return schema.NftMeta{Kind: kind, ScaleOrigin: schema.Small, SeriesID: series}
}

func expectCode(t *testing.T, err error, code Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := CodeOf(err); got != code {
		t.Fatalf("error code = %q, want %q (error: %v)", got, code, err)
	}
}

func ptr[T any](value T) *T { return &value }

func TestInstantiate(t *testing.T) {
	f := newFixture(t)
	info, err := f.view().ContractInfo()
	if err != nil {
		t.Fatalf("ContractInfo: %v", err)
	}
	want := ContractInfo{
		Name:        "Luckee",
		Symbol:      "LKE",
		Admin:       admin,
		Minter:      minter,
		BaseURI:     "https://nft.luckee.example/meta",
		NextTokenID: 1,
		Version:     "1.0.0",
	}
	if info != want {
		t.Errorf("ContractInfo = %+v\nwant %+v", info, want)
	}
	recipes, err := f.view().AllRecipes(nil, 0)
	if err != nil {
		t.Fatalf("AllRecipes: %v", err)
	}
	if len(recipes) != len(schema.DefaultRecipes()) {
		t.Errorf("seeded %d recipes, want %d", len(recipes), len(schema.DefaultRecipes()))
	}
	if f.lastEvent().Type != EventInstantiate {
		t.Errorf("last event = %s, want instantiate", f.lastEvent().Type)
	}
}

func TestInstantiateTwiceFails(t *testing.T) {
	f := newFixture(t)
	f.expectUnchanged(CodeAlreadyExists, func(r *Registry) error {
		return r.Instantiate(bob, InstantiateParams{Name: "Other", Symbol: "OTH"})
	})
}

func TestInstantiateDefaults(t *testing.T) {
	store := kvstore.NewMap()
	r := New(store, Env{Height: 1, Time: blockTime}, Options{})
	if err := r.Instantiate(alice, InstantiateParams{Name: "N", Symbol: "S"}); err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	config, err := r.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if config.Admin != alice || config.Minter != alice {
		t.Errorf("admin/minter = %s/%s, want alice/alice", config.Admin, config.Minter)
	}
	if config.Version == "" {
		t.Error("version not recorded")
	}
	if _, err := r.Recipe(schema.Firefly); !errors.Is(err, ErrNotFound) {
		t.Errorf("recipes seeded without SeedDefaultRecipes: %v", err)
	}
}

func TestInstantiateValidation(t *testing.T) {
	tests := []struct {
		name   string
		caller ref.Address
		params InstantiateParams
	}{
		{name: "no caller", params: InstantiateParams{Name: "N", Symbol: "S"}},
		{name: "no name", caller: alice, params: InstantiateParams{Symbol: "S"}},
		{name: "no symbol", caller: alice, params: InstantiateParams{Name: "N"}},
		{name: "bad base uri", caller: alice, params: InstantiateParams{Name: "N", Symbol: "S", BaseURI: "has space"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := kvstore.NewMap()
			err := New(store, Env{}, Options{}).Instantiate(tt.caller, tt.params)
			expectCode(t, err, CodeInvalidInput)
			if store.Len() != 0 {
				t.Errorf("store has %d keys after failed instantiate", store.Len())
			}
		})
	}
}

func TestUninstantiatedStore(t *testing.T) {
	r := New(kvstore.NewMap(), Env{}, Options{})
	_, err := r.Mint(minter, MintRequest{Owner: alice, Extension: meta(schema.Clover, "s")})
	expectCode(t, err, CodeNotFound)
	_, err = r.ContractInfo()
	expectCode(t, err, CodeNotFound)
}

func TestErrorMatching(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", newError(CodeUnauthorized, "bob may not spend token 3"))
	if !errors.Is(err, ErrUnauthorized) {
		t.Error("errors.Is(err, ErrUnauthorized) = false")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = true for an unauthorized error")
	}
	if CodeOf(err) != CodeUnauthorized {
		t.Errorf("CodeOf = %q", CodeOf(err))
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Error("CodeOf(plain error) is not empty")
	}
	if got := ErrPaused.Error(); got != "paused" {
		t.Errorf("ErrPaused.Error() = %q", got)
	}
}

func TestLimitsDefaults(t *testing.T) {
	limits := Limits{MaxPageSize: 10}.withDefaults()
	if limits.DefaultPageSize != 10 {
		t.Errorf("DefaultPageSize = %d, want clamp to MaxPageSize 10", limits.DefaultPageSize)
	}
	if limits.MaxBatchMint != 100 || limits.MaxSynthesisInputs != 50 {
		t.Errorf("limits = %+v", limits)
	}
}
