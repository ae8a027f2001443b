// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"slices"

	"github.com/luckee-foundation/luckee/lib/kvstore"
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/schema"
)

// tokenRecord is the TokenLedger entry for one token.
type tokenRecord struct {
	Owner     ref.Address       `json:"owner"`
	Approvals []schema.Approval `json:"approvals,omitempty"`
}

func (v *View) token(id uint64) (tokenRecord, error) {
	var record tokenRecord
	err := v.load(tokenKey(id), &record)
	if errors.Is(err, kvstore.ErrNotFound) {
		return tokenRecord{}, newError(CodeNotFound, "token %d not found", id)
	}
	return record, err
}

func (v *View) expired(expires schema.Expiration) bool {
	return expires.Expired(v.env.Height, v.env.Time)
}

// operatorExpiration returns the operator grant from owner to operator,
// if one exists.
func (v *View) operatorExpiration(owner, operator ref.Address) (schema.Expiration, bool, error) {
	var expires schema.Expiration
	err := v.load(operatorKey(owner, operator), &expires)
	if errors.Is(err, kvstore.ErrNotFound) {
		return schema.Expiration{}, false, nil
	}
	if err != nil {
		return schema.Expiration{}, false, err
	}
	return expires, true, nil
}

// canSpend reports whether caller may transfer, burn, or consume the
// token: the owner, a spender with a live approval, or a live operator
// of the owner.
func (v *View) canSpend(caller ref.Address, record *tokenRecord) (bool, error) {
	if caller.IsZero() {
		return false, nil
	}
	if caller == record.Owner {
		return true, nil
	}
	for _, approval := range record.Approvals {
		if approval.Spender == caller && !v.expired(approval.Expires) {
			return true, nil
		}
	}
	expires, found, err := v.operatorExpiration(record.Owner, caller)
	if err != nil || !found {
		return false, err
	}
	return !v.expired(expires), nil
}

// spendable loads the token and checks that caller may spend it.
func (v *View) spendable(caller ref.Address, id uint64) (tokenRecord, error) {
	record, err := v.token(id)
	if err != nil {
		return tokenRecord{}, err
	}
	allowed, err := v.canSpend(caller, &record)
	if err != nil {
		return tokenRecord{}, err
	}
	if !allowed {
		return tokenRecord{}, newError(CodeUnauthorized, "%s may not spend token %d", caller, id)
	}
	return record, nil
}

// ownedBy loads the token and checks that caller owns it.
func (v *View) ownedBy(caller ref.Address, id uint64) (tokenRecord, error) {
	record, err := v.token(id)
	if err != nil {
		return tokenRecord{}, err
	}
	if caller != record.Owner {
		return tokenRecord{}, newError(CodeUnauthorized, "%s does not own token %d", caller, id)
	}
	return record, nil
}

// createToken writes a new token to the ledger, its metadata, and every
// index, in that order.
func (r *Registry) createToken(id uint64, owner ref.Address, meta *schema.NftMeta) error {
	exists, err := r.has(tokenKey(id))
	if err != nil {
		return err
	}
	if exists {
		return newError(CodeAlreadyExists, "token %d already exists", id)
	}
	if err := r.save(tokenKey(id), tokenRecord{Owner: owner}); err != nil {
		return err
	}
	if err := r.putMeta(id, meta); err != nil {
		return err
	}
	if err := r.updateIndexes(id, owner, meta, r.addIndexEntry); err != nil {
		return err
	}
	return r.addSupply(1)
}

// destroyToken removes a token from the ledger (with its approvals),
// its metadata, and every index, in that order, and tombstones the id
// so that no later mint can take it.
func (r *Registry) destroyToken(id uint64, record *tokenRecord, meta *schema.NftMeta) error {
	if err := r.store.Delete(tokenKey(id)); err != nil {
		return err
	}
	if err := r.store.Set(burnedKey(id), present); err != nil {
		return err
	}
	if err := r.removeMeta(id); err != nil {
		return err
	}
	if err := r.updateIndexes(id, record.Owner, meta, r.removeIndexEntry); err != nil {
		return err
	}
	return r.addSupply(-1)
}

// TransferNft moves a token to recipient and clears its approvals.
func (r *Registry) TransferNft(caller, recipient ref.Address, id uint64) error {
	if _, err := r.requireActive(); err != nil {
		return err
	}
	if recipient.IsZero() {
		return newError(CodeInvalidInput, "recipient is required")
	}
	record, err := r.spendable(caller, id)
	if err != nil {
		return err
	}
	meta, err := r.TokenMeta(id)
	if err != nil {
		return err
	}

	previous := record.Owner
	if err := r.save(tokenKey(id), tokenRecord{Owner: recipient}); err != nil {
		return err
	}
	if err := r.reindexOwner(id, previous, recipient); err != nil {
		return err
	}

	r.logger.Debug("token transferred", "token_id", id, "from", previous, "to", recipient)
	r.emit(Event{
		Type:      EventTransfer,
		Caller:    caller,
		TokenIDs:  []uint64{id},
		Kind:      kindPtr(meta.Kind),
		Owner:     previous,
		Recipient: recipient,
	})
	return nil
}

// Approve grants spender the right to transfer or consume one token.
// Only the owner may approve. Approving an existing spender replaces
// its expiration.
func (r *Registry) Approve(caller, spender ref.Address, id uint64, expires schema.Expiration) error {
	if _, err := r.requireActive(); err != nil {
		return err
	}
	if spender.IsZero() {
		return newError(CodeInvalidInput, "spender is required")
	}
	record, err := r.ownedBy(caller, id)
	if err != nil {
		return err
	}
	if spender == record.Owner {
		return newError(CodeInvalidInput, "owner cannot approve itself")
	}
	if r.expired(expires) {
		return newError(CodeInvalidInput, "expiration has already passed")
	}

	record.Approvals = slices.DeleteFunc(record.Approvals, func(approval schema.Approval) bool {
		return approval.Spender == spender
	})
	record.Approvals = append(record.Approvals, schema.Approval{Spender: spender, Expires: expires})
	if err := r.save(tokenKey(id), record); err != nil {
		return err
	}

	r.emit(Event{Type: EventApprove, Caller: caller, TokenIDs: []uint64{id}, Spender: spender, Expires: &expires})
	return nil
}

// Revoke removes spender's approval on a token. Revoking a spender
// that holds no approval succeeds without change.
func (r *Registry) Revoke(caller, spender ref.Address, id uint64) error {
	if _, err := r.requireActive(); err != nil {
		return err
	}
	record, err := r.ownedBy(caller, id)
	if err != nil {
		return err
	}
	before := len(record.Approvals)
	record.Approvals = slices.DeleteFunc(record.Approvals, func(approval schema.Approval) bool {
		return approval.Spender == spender
	})
	if len(record.Approvals) != before {
		if err := r.save(tokenKey(id), record); err != nil {
			return err
		}
	}
	r.emit(Event{Type: EventRevoke, Caller: caller, TokenIDs: []uint64{id}, Spender: spender})
	return nil
}

// ApproveAll makes operator an approved spender of every token caller
// owns, now or later, until expires.
func (r *Registry) ApproveAll(caller, operator ref.Address, expires schema.Expiration) error {
	if _, err := r.requireActive(); err != nil {
		return err
	}
	if caller.IsZero() || operator.IsZero() {
		return newError(CodeInvalidInput, "owner and operator are required")
	}
	if caller == operator {
		return newError(CodeInvalidInput, "owner cannot approve itself as operator")
	}
	if r.expired(expires) {
		return newError(CodeInvalidInput, "expiration has already passed")
	}
	if err := r.save(operatorKey(caller, operator), expires); err != nil {
		return err
	}
	r.emit(Event{Type: EventApproveAll, Caller: caller, Operator: operator, Expires: &expires})
	return nil
}

// RevokeAll removes an operator grant.
func (r *Registry) RevokeAll(caller, operator ref.Address) error {
	if _, err := r.requireActive(); err != nil {
		return err
	}
	if operator.IsZero() {
		return newError(CodeInvalidInput, "operator is required")
	}
	if err := r.store.Delete(operatorKey(caller, operator)); err != nil {
		return err
	}
	r.emit(Event{Type: EventRevokeAll, Caller: caller, Operator: operator})
	return nil
}

// Burn destroys a token. Its id is never reused.
func (r *Registry) Burn(caller ref.Address, id uint64) error {
	if _, err := r.requireActive(); err != nil {
		return err
	}
	record, err := r.spendable(caller, id)
	if err != nil {
		return err
	}
	meta, err := r.TokenMeta(id)
	if err != nil {
		return err
	}
	if err := r.destroyToken(id, &record, &meta); err != nil {
		return err
	}
	r.logger.Debug("token burned", "token_id", id, "owner", record.Owner, "kind", meta.Kind)
	r.emit(Event{Type: EventBurn, Caller: caller, TokenIDs: []uint64{id}, Kind: kindPtr(meta.Kind), Owner: record.Owner})
	return nil
}
