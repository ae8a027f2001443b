// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"

	"github.com/luckee-foundation/luckee/lib/kvstore"
	"github.com/luckee-foundation/luckee/lib/schema"
)

// TokenMeta returns the metadata written when the token was created.
func (v *View) TokenMeta(id uint64) (schema.NftMeta, error) {
	var meta schema.NftMeta
	err := v.load(metaKey(id), &meta)
	if errors.Is(err, kvstore.ErrNotFound) {
		return schema.NftMeta{}, newError(CodeNotFound, "metadata for token %d not found", id)
	}
	return meta, err
}

// putMeta writes metadata for a new token. Metadata is immutable, so an
// existing entry is an error rather than an overwrite.
func (r *Registry) putMeta(id uint64, meta *schema.NftMeta) error {
	exists, err := r.has(metaKey(id))
	if err != nil {
		return err
	}
	if exists {
		return newError(CodeAlreadyExists, "metadata for token %d already exists", id)
	}
	return r.save(metaKey(id), meta)
}

func (r *Registry) removeMeta(id uint64) error {
	return r.store.Delete(metaKey(id))
}
