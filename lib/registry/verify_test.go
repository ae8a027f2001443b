// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"testing"

	"github.com/luckee-foundation/luckee/lib/schema"
)

func checkConsistent(t *testing.T, f *fixture) {
	t.Helper()
	report, err := f.view().CheckIndexes()
	if err != nil {
		t.Fatalf("CheckIndexes: %v", err)
	}
	if !report.OK() {
		t.Fatalf("CheckIndexes found problems: %+v", report.Problems)
	}
}

func problemTypes(report *Report) map[ProblemType]int {
	types := make(map[ProblemType]int)
	for _, problem := range report.Problems {
		types[problem.Type]++
	}
	return types
}

func TestCheckIndexesCounts(t *testing.T) {
	f := newFixture(t)
	grouped := meta(schema.Sage, "s")
	grouped.CollectionGroupID = "vip"
	f.mustDo(func(r *Registry) error {
		_, err := r.Mint(minter, MintRequest{Owner: alice, Extension: grouped})
		return err
	})
	f.mint(bob, schema.Clover, "s")

	report, err := f.view().CheckIndexes()
	if err != nil {
		t.Fatalf("CheckIndexes: %v", err)
	}
	if report.Tokens != 2 || report.IndexEntries != 7 || !report.OK() {
		t.Errorf("report = %+v, want 2 tokens, 7 entries, no problems", report)
	}
}

func TestCheckIndexesDetectsCorruption(t *testing.T) {
	f := newFixture(t)
	ids := f.mintN(alice, schema.Clover, 3)

	// Drop an owner entry, plant a stray kind entry, orphan one
	// metadata record, and skew the counters.
	f.store.Delete(indexKey(ByOwner, "alice", ids[0]))
	f.store.Set(indexKey(ByKind, "Genesis", ids[1]), present)
	f.store.Delete(tokenKey(ids[2]))
	f.store.Set(keyNextTokenID, encodeCounter(2))

	report, err := f.view().CheckIndexes()
	if err != nil {
		t.Fatalf("CheckIndexes: %v", err)
	}
	got := problemTypes(report)
	want := map[ProblemType]int{
		ProblemMissingIndex:   1,
		ProblemOrphanIndex:    4, // the planted entry plus three for the removed ledger entry
		ProblemOrphanMetadata: 1,
		ProblemSupply:         1,
		ProblemNextTokenID:    1,
	}
	for problemType, count := range want {
		if got[problemType] != count {
			t.Errorf("%s problems = %d, want %d (report %+v)", problemType, got[problemType], count, report.Problems)
		}
	}
}

func TestCheckIndexesMissingMetadata(t *testing.T) {
	f := newFixture(t)
	id := f.mint(alice, schema.Clover, "s")
	f.store.Delete(metaKey(id))

	report, _ := f.view().CheckIndexes()
	if problemTypes(report)[ProblemMissingMetadata] != 1 {
		t.Errorf("problems = %+v, want missing_metadata", report.Problems)
	}
	if _, err := f.registry().RebuildIndexes(); err == nil {
		t.Error("RebuildIndexes succeeded with a token lacking metadata")
	}
}

func TestRebuildIndexes(t *testing.T) {
	f := newFixture(t)
	ids := f.mintN(alice, schema.Clover, 4)
	f.mustDo(func(r *Registry) error { return r.TransferNft(alice, bob, ids[1]) })
	f.synthesize(alice, []uint64{ids[2], ids[3]}, schema.Firefly)

	digest, err := f.view().StateDigest()
	if err != nil {
		t.Fatalf("StateDigest: %v", err)
	}

	// Wipe every index entry and skew the supply counter.
	f.store.Iterate(prefixIndex, nil, func(key, _ []byte) error { return f.store.Delete(key) })
	f.store.Set(keySupply, encodeCounter(99))
	if report, _ := f.view().CheckIndexes(); report.OK() {
		t.Fatal("CheckIndexes found nothing after wiping indexes")
	}

	count, err := f.registry().RebuildIndexes()
	if err != nil {
		t.Fatalf("RebuildIndexes: %v", err)
	}
	if count != 3 {
		t.Errorf("RebuildIndexes = %d, want 3", count)
	}
	checkConsistent(t, f)

	rebuilt, _ := f.view().StateDigest()
	if rebuilt != digest {
		t.Errorf("digest changed across rebuild: %s -> %s", digest, rebuilt)
	}
	bobTokens, _ := f.view().Tokens(bob, nil, 0)
	if len(bobTokens) != 1 || bobTokens[0] != ids[1] {
		t.Errorf("Tokens(bob) after rebuild = %v", bobTokens)
	}
}

func TestStateDigestTracksState(t *testing.T) {
	f := newFixture(t)
	before, _ := f.view().StateDigest()
	id := f.mint(alice, schema.Clover, "s")
	afterMint, _ := f.view().StateDigest()
	if before == afterMint {
		t.Error("digest unchanged by mint")
	}
	f.mustDo(func(r *Registry) error { return r.TransferNft(alice, bob, id) })
	afterTransfer, _ := f.view().StateDigest()
	if afterTransfer == afterMint {
		t.Error("digest unchanged by transfer")
	}
	if len(afterTransfer) != 64 {
		t.Errorf("digest length = %d, want 64 hex characters", len(afterTransfer))
	}
}
