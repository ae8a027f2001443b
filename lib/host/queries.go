// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/registry"
	"github.com/luckee-foundation/luckee/lib/schema"
)

type ownerQuery struct {
	TokenID        uint64 `json:"token_id"`
	IncludeExpired bool   `json:"include_expired,omitempty"`
}

type operatorQuery struct {
	Owner          ref.Address `json:"owner"`
	Operator       ref.Address `json:"operator"`
	IncludeExpired bool        `json:"include_expired,omitempty"`
}

type operatorsQuery struct {
	Owner          ref.Address `json:"owner"`
	StartAfter     ref.Address `json:"start_after,omitzero"`
	Limit          uint32      `json:"limit,omitempty"`
	IncludeExpired bool        `json:"include_expired,omitempty"`
}

// pageQuery carries the common pagination fields plus whichever key
// the listing needs.
type pageQuery struct {
	Owner      ref.Address  `json:"owner,omitzero"`
	Kind       *schema.Kind `json:"kind,omitempty"`
	SeriesID   string       `json:"series_id,omitempty"`
	GroupID    string       `json:"group_id,omitempty"`
	StartAfter *uint64      `json:"start_after,omitempty"`
	Limit      uint32       `json:"limit,omitempty"`
}

type recipesQuery struct {
	StartAfter *schema.Kind `json:"start_after,omitempty"`
	Limit      uint32       `json:"limit,omitempty"`
}

type mintersQuery struct {
	StartAfter ref.Address `json:"start_after,omitzero"`
	Limit      uint32      `json:"limit,omitempty"`
}

type previewQuery struct {
	Caller ref.Address `json:"caller,omitzero"`
	Inputs []uint64    `json:"inputs"`
	Target schema.Kind `json:"target"`
}

type historyQuery struct {
	Caller     ref.Address `json:"caller"`
	StartAfter *uint64     `json:"start_after,omitempty"`
	Limit      uint32      `json:"limit,omitempty"`
}

type seriesQuery struct {
	SeriesID string `json:"series_id"`
}

// TokensResponse answers the token listing queries.
type TokensResponse struct {
	Tokens []uint64 `json:"tokens"`
}

// CountResponse answers num_tokens and series_serial.
type CountResponse struct {
	Count uint64 `json:"count"`
}

// DigestResponse answers state_digest.
type DigestResponse struct {
	Digest string `json:"digest"`
}

// queryWith adapts a typed query function to a QueryFunc.
func queryWith[Q any](fn func(v *registry.View, query *Q) (any, error)) QueryFunc {
	return func(v *registry.View, raw []byte) (any, error) {
		var query Q
		if err := decode(raw, &query); err != nil {
			return nil, err
		}
		return fn(v, &query)
	}
}

func tokens(ids []uint64, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return TokensResponse{Tokens: ids}, nil
}

func registerQueryActions(h *Host) {
	h.HandleQuery("contract_info", func(v *registry.View, _ []byte) (any, error) {
		return v.ContractInfo()
	})
	h.HandleQuery("owner_of", queryWith(func(v *registry.View, q *ownerQuery) (any, error) {
		return v.OwnerOf(q.TokenID, q.IncludeExpired)
	}))
	h.HandleQuery("approvals", queryWith(func(v *registry.View, q *ownerQuery) (any, error) {
		return v.Approvals(q.TokenID, q.IncludeExpired)
	}))
	h.HandleQuery("operator", queryWith(func(v *registry.View, q *operatorQuery) (any, error) {
		return v.Operator(q.Owner, q.Operator, q.IncludeExpired)
	}))
	h.HandleQuery("operators", queryWith(func(v *registry.View, q *operatorsQuery) (any, error) {
		return v.Operators(q.Owner, q.StartAfter, q.Limit, q.IncludeExpired)
	}))
	h.HandleQuery("token_uri", queryWith(func(v *registry.View, q *ownerQuery) (any, error) {
		return v.TokenURI(q.TokenID)
	}))
	h.HandleQuery("nft_info", queryWith(func(v *registry.View, q *ownerQuery) (any, error) {
		return v.NftInfo(q.TokenID)
	}))
	h.HandleQuery("token_meta", queryWith(func(v *registry.View, q *ownerQuery) (any, error) {
		return v.TokenMeta(q.TokenID)
	}))
	h.HandleQuery("tokens", queryWith(func(v *registry.View, q *pageQuery) (any, error) {
		return tokens(v.Tokens(q.Owner, q.StartAfter, q.Limit))
	}))
	h.HandleQuery("all_tokens", queryWith(func(v *registry.View, q *pageQuery) (any, error) {
		return tokens(v.AllTokens(q.StartAfter, q.Limit))
	}))
	h.HandleQuery("tokens_by_kind", queryWith(func(v *registry.View, q *pageQuery) (any, error) {
		if q.Kind == nil {
			return nil, invalidInput("missing required field: kind")
		}
		return tokens(v.TokensByKind(*q.Kind, q.StartAfter, q.Limit))
	}))
	h.HandleQuery("tokens_by_series", queryWith(func(v *registry.View, q *pageQuery) (any, error) {
		return tokens(v.TokensBySeries(q.SeriesID, q.StartAfter, q.Limit))
	}))
	h.HandleQuery("tokens_by_group", queryWith(func(v *registry.View, q *pageQuery) (any, error) {
		return tokens(v.TokensByGroup(q.GroupID, q.StartAfter, q.Limit))
	}))
	h.HandleQuery("num_tokens", func(v *registry.View, _ []byte) (any, error) {
		count, err := v.NumTokens()
		if err != nil {
			return nil, err
		}
		return CountResponse{Count: count}, nil
	})
	h.HandleQuery("recipe", queryWith(func(v *registry.View, q *targetRequest) (any, error) {
		return v.Recipe(q.Target)
	}))
	h.HandleQuery("all_recipes", queryWith(func(v *registry.View, q *recipesQuery) (any, error) {
		return v.AllRecipes(q.StartAfter, q.Limit)
	}))
	h.HandleQuery("preview_synthesis", queryWith(func(v *registry.View, q *previewQuery) (any, error) {
		return v.PreviewSynthesis(q.Caller, q.Inputs, q.Target)
	}))
	h.HandleQuery("synthesis_history", queryWith(func(v *registry.View, q *historyQuery) (any, error) {
		return v.SynthesisHistory(q.Caller, q.StartAfter, q.Limit)
	}))
	h.HandleQuery("is_minter", queryWith(func(v *registry.View, q *addressRequest) (any, error) {
		return v.IsMinter(q.Address)
	}))
	h.HandleQuery("minters", queryWith(func(v *registry.View, q *mintersQuery) (any, error) {
		return v.Minters(q.StartAfter, q.Limit)
	}))
	h.HandleQuery("series_serial", queryWith(func(v *registry.View, q *seriesQuery) (any, error) {
		serial, err := v.SeriesSerial(q.SeriesID)
		if err != nil {
			return nil, err
		}
		return CountResponse{Count: serial}, nil
	}))
	h.HandleQuery("check_indexes", func(v *registry.View, _ []byte) (any, error) {
		return v.CheckIndexes()
	})
	h.HandleQuery("state_digest", func(v *registry.View, _ []byte) (any, error) {
		digest, err := v.StateDigest()
		if err != nil {
			return nil, err
		}
		return DigestResponse{Digest: digest}, nil
	})
}
