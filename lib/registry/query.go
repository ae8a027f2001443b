// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/luckee-foundation/luckee/lib/kvstore"
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/schema"
)

// OwnerInfo answers OwnerOf.
type OwnerInfo struct {
	Owner     ref.Address       `json:"owner"`
	Approvals []schema.Approval `json:"approvals"`
}

// NftInfo answers NftInfo: the token URI and its metadata.
type NftInfo struct {
	TokenURI  string         `json:"token_uri,omitempty"`
	Extension schema.NftMeta `json:"extension"`
}

// OperatorGrant is one operator approval held over an owner's tokens.
type OperatorGrant struct {
	Operator ref.Address       `json:"operator"`
	Expires  schema.Expiration `json:"expires"`
}

// ContractInfo summarizes contract-level state.
type ContractInfo struct {
	Name        string      `json:"name"`
	Symbol      string      `json:"symbol"`
	Admin       ref.Address `json:"admin"`
	Minter      ref.Address `json:"minter"`
	BaseURI     string      `json:"base_uri,omitempty"`
	TotalSupply uint64      `json:"total_supply"`
	NextTokenID uint64      `json:"next_token_id"`
	Paused      bool        `json:"paused"`
	Version     string      `json:"version"`
}

func (v *View) liveApprovals(approvals []schema.Approval, includeExpired bool) []schema.Approval {
	live := make([]schema.Approval, 0, len(approvals))
	for _, approval := range approvals {
		if includeExpired || !v.expired(approval.Expires) {
			live = append(live, approval)
		}
	}
	return live
}

// OwnerOf returns the owner of a token and its approvals. Expired
// approvals are omitted unless includeExpired is set.
func (v *View) OwnerOf(id uint64, includeExpired bool) (OwnerInfo, error) {
	record, err := v.token(id)
	if err != nil {
		return OwnerInfo{}, err
	}
	return OwnerInfo{Owner: record.Owner, Approvals: v.liveApprovals(record.Approvals, includeExpired)}, nil
}

// Approvals returns the approvals on a token.
func (v *View) Approvals(id uint64, includeExpired bool) ([]schema.Approval, error) {
	info, err := v.OwnerOf(id, includeExpired)
	if err != nil {
		return nil, err
	}
	return info.Approvals, nil
}

// Operator returns the grant from owner to operator. A missing grant,
// or an expired one without includeExpired, is not_found.
func (v *View) Operator(owner, operator ref.Address, includeExpired bool) (OperatorGrant, error) {
	expires, found, err := v.operatorExpiration(owner, operator)
	if err != nil {
		return OperatorGrant{}, err
	}
	if !found || (!includeExpired && v.expired(expires)) {
		return OperatorGrant{}, newError(CodeNotFound, "%s is not an operator for %s", operator, owner)
	}
	return OperatorGrant{Operator: operator, Expires: expires}, nil
}

// Operators lists owner's operator grants ordered by operator length,
// then bytes. startAfter continues from a previous page.
func (v *View) Operators(owner, startAfter ref.Address, limit uint32, includeExpired bool) ([]OperatorGrant, error) {
	prefix := operatorPrefix(owner)
	var start []byte
	if !startAfter.IsZero() {
		start = append(operatorKey(owner, startAfter), 0)
	}
	size := v.pageSize(limit)
	grants := make([]OperatorGrant, 0, size)
	err := v.reader.Iterate(prefix, start, func(key, value []byte) error {
		if len(grants) >= size {
			return kvstore.ErrStop
		}
		operator, err := decodeLengthPrefixed(key[len(prefix):])
		if err != nil {
			return fmt.Errorf("registry: operator key %q: %w", key, err)
		}
		address, err := ref.ParseAddress(operator)
		if err != nil {
			return err
		}
		var expires schema.Expiration
		if err := unmarshalValue(key, value, &expires); err != nil {
			return err
		}
		if includeExpired || !v.expired(expires) {
			grants = append(grants, OperatorGrant{Operator: address, Expires: expires})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func decodeLengthPrefixed(raw []byte) (string, error) {
	length, n := binary.Uvarint(raw)
	if n <= 0 || uint64(len(raw)-n) != length {
		return "", fmt.Errorf("malformed length prefix")
	}
	return string(raw[n:]), nil
}

// TokenURI returns base_uri/id, or "" when no base URI is configured.
func (v *View) TokenURI(id uint64) (string, error) {
	if _, err := v.token(id); err != nil {
		return "", err
	}
	config, err := v.Config()
	if err != nil {
		return "", err
	}
	return tokenURI(config.BaseURI, id), nil
}

func tokenURI(baseURI string, id uint64) string {
	if baseURI == "" {
		return ""
	}
	return baseURI + "/" + strconv.FormatUint(id, 10)
}

// NftInfo returns a token's URI and metadata.
func (v *View) NftInfo(id uint64) (NftInfo, error) {
	uri, err := v.TokenURI(id)
	if err != nil {
		return NftInfo{}, err
	}
	meta, err := v.TokenMeta(id)
	if err != nil {
		return NftInfo{}, err
	}
	return NftInfo{TokenURI: uri, Extension: meta}, nil
}

// Tokens lists the ids owned by owner.
func (v *View) Tokens(owner ref.Address, startAfter *uint64, limit uint32) ([]uint64, error) {
	return v.ListBy(ByOwner, owner.String(), startAfter, limit)
}

// AllTokens lists every live token id.
func (v *View) AllTokens(startAfter *uint64, limit uint32) ([]uint64, error) {
	return v.pageIDs(prefixToken, startAfter, limit)
}

// TokensByKind lists the ids of live tokens of one kind.
func (v *View) TokensByKind(kind schema.Kind, startAfter *uint64, limit uint32) ([]uint64, error) {
	if !kind.IsValid() {
		return nil, newError(CodeInvalidInput, "invalid kind %d", uint8(kind))
	}
	return v.ListBy(ByKind, kind.String(), startAfter, limit)
}

// TokensBySeries lists the ids of live tokens in a series.
func (v *View) TokensBySeries(seriesID string, startAfter *uint64, limit uint32) ([]uint64, error) {
	return v.ListBy(BySeries, seriesID, startAfter, limit)
}

// TokensByGroup lists the ids of live tokens in a collection group.
func (v *View) TokensByGroup(groupID string, startAfter *uint64, limit uint32) ([]uint64, error) {
	return v.ListBy(ByGroup, groupID, startAfter, limit)
}

// NumTokens returns the live token count.
func (v *View) NumTokens() (uint64, error) {
	return v.counter(keySupply)
}

// ContractInfo returns the contract summary.
func (v *View) ContractInfo() (ContractInfo, error) {
	config, err := v.Config()
	if err != nil {
		return ContractInfo{}, err
	}
	supply, err := v.counter(keySupply)
	if err != nil {
		return ContractInfo{}, err
	}
	next, err := v.counter(keyNextTokenID)
	if err != nil {
		return ContractInfo{}, err
	}
	return ContractInfo{
		Name:        config.Name,
		Symbol:      config.Symbol,
		Admin:       config.Admin,
		Minter:      config.Minter,
		BaseURI:     config.BaseURI,
		TotalSupply: supply,
		NextTokenID: next,
		Paused:      config.Paused,
		Version:     config.Version,
	}, nil
}
