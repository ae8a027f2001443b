// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/schema"
)

func TestPagination(t *testing.T) {
	f := newFixture(t)
	f.mintN(alice, schema.Clover, 40)

	page, err := f.view().Tokens(alice, ptr[uint64](5), 10)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	if want := []uint64{6, 7, 8, 9, 10, 11, 12, 13, 14, 15}; !slices.Equal(page, want) {
		t.Errorf("page after 5 = %v, want %v", page, want)
	}

	defaultPage, _ := f.view().AllTokens(nil, 0)
	if len(defaultPage) != 30 {
		t.Errorf("default page size = %d, want 30", len(defaultPage))
	}
	clamped, _ := f.view().TokensByKind(schema.Clover, nil, 1000)
	if len(clamped) != 30 {
		t.Errorf("clamped page size = %d, want 30", len(clamped))
	}
	tail, _ := f.view().TokensBySeries("drop-1", ptr[uint64](38), 0)
	if !slices.Equal(tail, []uint64{39, 40}) {
		t.Errorf("tail = %v", tail)
	}
	if none, _ := f.view().AllTokens(ptr[uint64](math.MaxUint64), 0); len(none) != 0 {
		t.Errorf("page after MaxUint64 = %v", none)
	}
	// A missing startAfter is not an error.
	if gap, _ := f.view().Tokens(bob, ptr[uint64](5), 0); len(gap) != 0 {
		t.Errorf("Tokens(bob) = %v", gap)
	}
}

func TestPaginationStableAcrossMutations(t *testing.T) {
	f := newFixture(t)
	f.mintN(alice, schema.Clover, 20)

	first, _ := f.view().Tokens(alice, nil, 5)
	// Burn a token from the page already read and one ahead of the cursor.
	f.mustDo(func(r *Registry) error { return r.Burn(alice, 2) })
	f.mustDo(func(r *Registry) error { return r.Burn(alice, 8) })
	cursor := first[len(first)-1]
	second, _ := f.view().Tokens(alice, &cursor, 5)
	if want := []uint64{6, 7, 9, 10, 11}; !slices.Equal(second, want) {
		t.Errorf("second page = %v, want %v", second, want)
	}
}

func TestListByDimensions(t *testing.T) {
	f := newFixture(t)
	grouped := meta(schema.Sage, "gala")
	grouped.CollectionGroupID = "vip"
	var sage uint64
	f.mustDo(func(r *Registry) error {
		var err error
		sage, err = r.Mint(minter, MintRequest{Owner: bob, Extension: grouped})
		return err
	})
	clover := f.mint(alice, schema.Clover, "gala")

	for _, tt := range []struct {
		dimension Dimension
		key       string
		want      []uint64
	}{
		{ByOwner, "bob", []uint64{sage}},
		{ByOwner, "alice", []uint64{clover}},
		{ByKind, "Sage", []uint64{sage}},
		{BySeries, "gala", []uint64{sage, clover}},
		{ByGroup, "vip", []uint64{sage}},
		{ByGroup, "", []uint64{}},
	} {
		got, err := f.view().ListBy(tt.dimension, tt.key, nil, 0)
		if err != nil {
			t.Fatalf("ListBy(%s, %q): %v", tt.dimension, tt.key, err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("ListBy(%s, %q) = %v, want %v", tt.dimension, tt.key, got, tt.want)
		}
	}
	if _, err := f.view().TokensByKind(schema.Kind(99), nil, 0); CodeOf(err) != CodeInvalidInput {
		t.Errorf("TokensByKind(invalid): err = %v", err)
	}
}

// TestIndexConsistencyUnderRandomOperations drives a random mix of
// mutations, including ones expected to fail, and checks after every
// step that the indexes match a recomputation from ledger and metadata.
func TestIndexConsistencyUnderRandomOperations(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewPCG(1, 2))
	users := []ref.Address{alice, bob, carol}
	kinds := []schema.Kind{schema.Clover, schema.Firefly, schema.CrimsonKoi}
	series := []string{"a", "b"}

	pick := func() uint64 {
		ids, _ := f.view().AllTokens(nil, 0)
		if len(ids) == 0 {
			return 1
		}
		return ids[rng.IntN(len(ids))]
	}
	ownerOf := func(id uint64) ref.Address {
		info, err := f.view().OwnerOf(id, false)
		if err != nil {
			return users[rng.IntN(len(users))]
		}
		return info.Owner
	}

	for step := range 300 {
		user := users[rng.IntN(len(users))]
		var err error
		switch op := rng.IntN(6); op {
		case 0, 1:
			extension := meta(kinds[rng.IntN(len(kinds))], series[rng.IntN(len(series))])
			if rng.IntN(3) == 0 {
				extension.CollectionGroupID = "g"
			}
			err = f.do(func(r *Registry) error {
				_, err := r.Mint(minter, MintRequest{Owner: user, Extension: extension})
				return err
			})
		case 2:
			id := pick()
			err = f.do(func(r *Registry) error { return r.TransferNft(ownerOf(id), user, id) })
		case 3:
			id := pick()
			err = f.do(func(r *Registry) error { return r.Burn(ownerOf(id), id) })
		case 4:
			owned, _ := f.view().Tokens(user, nil, 0)
			err = f.do(func(r *Registry) error {
				_, err := r.Synthesize(user, owned[:min(2, len(owned))], schema.Firefly)
				return err
			})
		case 5:
			id := pick()
			err = f.do(func(r *Registry) error { return r.Approve(ownerOf(id), user, id, schema.Expiration{}) })
		}
		if err != nil && CodeOf(err) == "" {
			t.Fatalf("step %d: storage error: %v", step, err)
		}
		report, err := f.view().CheckIndexes()
		if err != nil {
			t.Fatalf("step %d: CheckIndexes: %v", step, err)
		}
		if !report.OK() {
			t.Fatalf("step %d: inconsistent: %+v", step, report.Problems)
		}
	}
}
