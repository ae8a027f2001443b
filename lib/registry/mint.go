// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"math"

	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/schema"
)

// MintRequest describes one token to mint. A nil TokenID asks for the
// next free id. A zero SerialInSeries in Extension is filled from the
// series counter; a non-zero one is kept as given.
type MintRequest struct {
	TokenID   *uint64        `json:"token_id,omitempty"`
	Owner     ref.Address    `json:"owner"`
	Extension schema.NftMeta `json:"extension"`
}

type plannedMint struct {
	id    uint64
	owner ref.Address
	meta  schema.NftMeta
}

// mintPlan is the fully validated result of planning a mint call.
// Executing it cannot fail for validation reasons.
type mintPlan struct {
	items       []plannedMint
	nextTokenID uint64
	serials     map[string]uint64
}

// Mint creates one token. The caller must be the primary minter or on
// the minter allow-list.
func (r *Registry) Mint(caller ref.Address, request MintRequest) (uint64, error) {
	plan, err := r.planMint(caller, []MintRequest{request})
	if err != nil {
		return 0, err
	}
	if err := r.executeMint(plan); err != nil {
		return 0, err
	}
	item := plan.items[0]
	r.logger.Debug("token minted", "token_id", item.id, "owner", item.owner, "kind", item.meta.Kind)
	r.emit(Event{
		Type:     EventMint,
		Caller:   caller,
		TokenIDs: []uint64{item.id},
		Kind:     kindPtr(item.meta.Kind),
		Owner:    item.owner,
		Series:   item.meta.SeriesID,
	})
	return item.id, nil
}

// BatchMint creates every requested token or none of them. Ids are
// returned in request order.
func (r *Registry) BatchMint(caller ref.Address, requests []MintRequest) ([]uint64, error) {
	plan, err := r.planMint(caller, requests)
	if err != nil {
		return nil, err
	}
	if err := r.executeMint(plan); err != nil {
		return nil, err
	}
	ids := make([]uint64, len(plan.items))
	minted := make([]MintedToken, len(plan.items))
	for i, item := range plan.items {
		ids[i] = item.id
		minted[i] = MintedToken{
			TokenID:  item.id,
			Owner:    item.owner,
			Kind:     item.meta.Kind,
			SeriesID: item.meta.SeriesID,
		}
	}
	r.logger.Debug("tokens batch minted", "count", len(ids), "caller", caller)
	r.emit(Event{Type: EventBatchMint, Caller: caller, TokenIDs: ids, Items: minted})
	return ids, nil
}

func (r *Registry) requireMinter(caller ref.Address) error {
	if _, err := r.requireActive(); err != nil {
		return err
	}
	allowed, err := r.IsMinter(caller)
	if err != nil {
		return err
	}
	if !allowed {
		return newError(CodeUnauthorized, "%s is not an authorized minter", caller)
	}
	return nil
}

// planMint performs every check a mint call needs before any write:
// authorization, batch size, per-item validity, duplicate and existing
// ids, id allocation, and series serials.
func (r *Registry) planMint(caller ref.Address, requests []MintRequest) (*mintPlan, error) {
	if err := r.requireMinter(caller); err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, newError(CodeInvalidInput, "no tokens to mint")
	}
	if len(requests) > r.limits.MaxBatchMint {
		return nil, newError(CodeLimitExceeded, "batch of %d tokens, maximum is %d", len(requests), r.limits.MaxBatchMint)
	}

	plan := &mintPlan{
		items:   make([]plannedMint, len(requests)),
		serials: make(map[string]uint64),
	}
	explicit := make(map[uint64]int, len(requests))
	var highestExplicit uint64
	autoCount := 0

	for i, request := range requests {
		if request.Owner.IsZero() {
			return nil, newError(CodeInvalidInput, "item %d: owner is required", i)
		}
		meta := request.Extension.Clone()
		if err := meta.Validate(); err != nil {
			return nil, newError(CodeInvalidInput, "item %d: %v", i, err)
		}
		if meta.Crafted() {
			return nil, newError(CodeInvalidInput, "item %d: crafted_from is set only by synthesis", i)
		}
		plan.items[i] = plannedMint{owner: request.Owner, meta: meta}

		if request.TokenID == nil {
			autoCount++
			continue
		}
		id := *request.TokenID
		if id == 0 {
			return nil, newError(CodeInvalidInput, "item %d: token id 0 is reserved", i)
		}
		if first, seen := explicit[id]; seen {
			return nil, newError(CodeInvalidInput, "items %d and %d both use token id %d", first, i, id)
		}
		explicit[id] = i
		if err := r.checkIDFree(id); err != nil {
			return nil, err
		}
		plan.items[i].id = id
		highestExplicit = max(highestExplicit, id)
	}

	next, err := r.counter(keyNextTokenID)
	if err != nil {
		return nil, err
	}
	next = max(next, 1)
	if highestExplicit >= next {
		if highestExplicit == math.MaxUint64 {
			return nil, newError(CodeLimitExceeded, "token id space exhausted")
		}
		next = highestExplicit + 1
	}
	if autoCount > 0 && math.MaxUint64-next < uint64(autoCount) {
		return nil, newError(CodeLimitExceeded, "token id space exhausted")
	}
	for i, request := range requests {
		if request.TokenID != nil {
			continue
		}
		plan.items[i].id = next
		next++
	}
	plan.nextTokenID = next

	for i := range plan.items {
		meta := &plan.items[i].meta
		serial, err := r.reserveSerial(plan.serials, meta.SeriesID)
		if err != nil {
			return nil, err
		}
		if meta.SerialInSeries == 0 {
			meta.SerialInSeries = uint32(serial)
		}
	}
	return plan, nil
}

func (r *Registry) executeMint(plan *mintPlan) error {
	for i := range plan.items {
		item := &plan.items[i]
		if err := r.createToken(item.id, item.owner, &item.meta); err != nil {
			return err
		}
	}
	if err := r.commitSerials(plan.serials); err != nil {
		return err
	}
	return r.setCounter(keyNextTokenID, plan.nextTokenID)
}

// checkIDFree fails already_exists when either the ledger or the
// metadata store holds id, or when id belonged to a burned token.
func (v *View) checkIDFree(id uint64) error {
	for _, key := range [][]byte{tokenKey(id), metaKey(id)} {
		exists, err := v.has(key)
		if err != nil {
			return err
		}
		if exists {
			return newError(CodeAlreadyExists, "token %d already exists", id)
		}
	}
	burned, err := v.has(burnedKey(id))
	if err != nil {
		return err
	}
	if burned {
		return newError(CodeAlreadyExists, "token %d was burned and cannot be reused", id)
	}
	return nil
}

// reserveSerial advances the series counter in pending, loading the
// stored value on first use, and returns the new serial.
func (v *View) reserveSerial(pending map[string]uint64, seriesID string) (uint64, error) {
	current, seen := pending[seriesID]
	if !seen {
		stored, err := v.counter(seriesKey(seriesID))
		if err != nil {
			return 0, err
		}
		current = stored
	}
	if current >= math.MaxUint32 {
		return 0, newError(CodeLimitExceeded, "series %s has no serials left", seriesID)
	}
	current++
	pending[seriesID] = current
	return current, nil
}

func (r *Registry) commitSerials(pending map[string]uint64) error {
	for seriesID, serial := range pending {
		if err := r.setCounter(seriesKey(seriesID), serial); err != nil {
			return err
		}
	}
	return nil
}

// SeriesSerial returns the last serial handed out in a series.
func (v *View) SeriesSerial(seriesID string) (uint64, error) {
	return v.counter(seriesKey(seriesID))
}
