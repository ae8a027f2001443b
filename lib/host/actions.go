// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/registry"
	"github.com/luckee-foundation/luckee/lib/schema"
)

// Request bodies. Each is decoded from the full request, so the
// "action" field is present but ignored.

type mintRequest struct {
	TokenID   *uint64        `json:"token_id,omitempty"`
	Owner     ref.Address    `json:"owner"`
	Extension schema.NftMeta `json:"extension"`
}

type batchMintRequest struct {
	Tokens []registry.MintRequest `json:"tokens"`
}

type tokenRequest struct {
	TokenID uint64 `json:"token_id"`
}

type transferRequest struct {
	Recipient ref.Address `json:"recipient"`
	TokenID   uint64      `json:"token_id"`
}

type approveRequest struct {
	Spender ref.Address       `json:"spender"`
	TokenID uint64            `json:"token_id"`
	Expires schema.Expiration `json:"expires"`
}

type revokeRequest struct {
	Spender ref.Address `json:"spender"`
	TokenID uint64      `json:"token_id"`
}

type operatorRequest struct {
	Operator ref.Address       `json:"operator"`
	Expires  schema.Expiration `json:"expires"`
}

type synthesizeRequest struct {
	Inputs []uint64    `json:"inputs"`
	Target schema.Kind `json:"target"`
}

type recipeRequest struct {
	Recipe schema.Recipe `json:"recipe"`
}

type targetRequest struct {
	Target schema.Kind `json:"target"`
}

type setMinterRequest struct {
	Minter  ref.Address `json:"minter"`
	Allowed bool        `json:"allowed"`
}

type addressRequest struct {
	Address ref.Address `json:"address"`
}

type baseURIRequest struct {
	BaseURI string `json:"base_uri"`
}

type migrateRequest struct {
	Version string `json:"version"`
}

// MintResponse is the data returned by mint, batch_mint, and
// synthesize.
type MintResponse struct {
	TokenIDs []uint64 `json:"token_ids"`
}

func registerExecuteActions(h *Host) {
	h.HandleExecute("instantiate", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var params registry.InstantiateParams
		if err := decode(raw, &params); err != nil {
			return nil, err
		}
		return nil, r.Instantiate(caller, params)
	})

	h.HandleExecute("mint", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request mintRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		id, err := r.Mint(caller, registry.MintRequest{
			TokenID:   request.TokenID,
			Owner:     request.Owner,
			Extension: request.Extension,
		})
		if err != nil {
			return nil, err
		}
		return MintResponse{TokenIDs: []uint64{id}}, nil
	})

	h.HandleExecute("batch_mint", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request batchMintRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		ids, err := r.BatchMint(caller, request.Tokens)
		if err != nil {
			return nil, err
		}
		return MintResponse{TokenIDs: ids}, nil
	})

	h.HandleExecute("transfer_nft", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request transferRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		return nil, r.TransferNft(caller, request.Recipient, request.TokenID)
	})

	h.HandleExecute("approve", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request approveRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		return nil, r.Approve(caller, request.Spender, request.TokenID, request.Expires)
	})

	h.HandleExecute("revoke", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request revokeRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		return nil, r.Revoke(caller, request.Spender, request.TokenID)
	})

	h.HandleExecute("approve_all", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request operatorRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		return nil, r.ApproveAll(caller, request.Operator, request.Expires)
	})

	h.HandleExecute("revoke_all", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request operatorRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		return nil, r.RevokeAll(caller, request.Operator)
	})

	h.HandleExecute("burn", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request tokenRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		return nil, r.Burn(caller, request.TokenID)
	})

	h.HandleExecute("synthesize", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request synthesizeRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		id, err := r.Synthesize(caller, request.Inputs, request.Target)
		if err != nil {
			return nil, err
		}
		return MintResponse{TokenIDs: []uint64{id}}, nil
	})

	h.HandleExecute("set_recipe", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request recipeRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		return nil, r.SetRecipe(caller, request.Recipe)
	})

	h.HandleExecute("remove_recipe", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request targetRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		return nil, r.RemoveRecipe(caller, request.Target)
	})

	h.HandleExecute("set_minter", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request setMinterRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		return nil, r.SetMinter(caller, request.Minter, request.Allowed)
	})

	h.HandleExecute("update_minter", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request addressRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		return nil, r.UpdateMinter(caller, request.Address)
	})

	h.HandleExecute("update_admin", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request addressRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		return nil, r.UpdateAdmin(caller, request.Address)
	})

	h.HandleExecute("update_base_uri", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request baseURIRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		return nil, r.UpdateBaseURI(caller, request.BaseURI)
	})

	h.HandleExecute("pause", func(r *registry.Registry, caller ref.Address, _ []byte) (any, error) {
		return nil, r.Pause(caller)
	})

	h.HandleExecute("unpause", func(r *registry.Registry, caller ref.Address, _ []byte) (any, error) {
		return nil, r.Unpause(caller)
	})

	h.HandleExecute("migrate", func(r *registry.Registry, caller ref.Address, raw []byte) (any, error) {
		var request migrateRequest
		if err := decode(raw, &request); err != nil {
			return nil, err
		}
		return r.Migrate(caller, request.Version)
	})
}
