// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"

	"github.com/luckee-foundation/luckee/lib/kvstore"
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/schema"
)

// Dimension selects one of the secondary indexes.
type Dimension byte

const (
	ByOwner  Dimension = 'o'
	ByKind   Dimension = 'k'
	BySeries Dimension = 's'
	ByGroup  Dimension = 'g'
)

// Dimensions returns every index dimension.
func Dimensions() []Dimension {
	return []Dimension{ByOwner, ByKind, BySeries, ByGroup}
}

func (d Dimension) String() string {
	switch d {
	case ByOwner:
		return "owner"
	case ByKind:
		return "kind"
	case BySeries:
		return "series"
	case ByGroup:
		return "group"
	default:
		return fmt.Sprintf("Dimension(%d)", byte(d))
	}
}

// projection is one index membership derived from a token.
type projection struct {
	dimension Dimension
	key       string
}

// projections returns every index entry a token with this owner and
// metadata must have. A token without a collection group has no group
// entry.
func projections(owner ref.Address, meta *schema.NftMeta) []projection {
	entries := []projection{
		{dimension: ByOwner, key: owner.String()},
		{dimension: ByKind, key: meta.Kind.String()},
		{dimension: BySeries, key: meta.SeriesID},
	}
	if meta.CollectionGroupID != "" {
		entries = append(entries, projection{dimension: ByGroup, key: meta.CollectionGroupID})
	}
	return entries
}

func indexPrefix(dimension Dimension, key string) []byte {
	return join(prefixIndex, []byte{byte(dimension)}, lengthPrefixed(key))
}

func indexKey(dimension Dimension, key string, id uint64) []byte {
	return join(indexPrefix(dimension, key), encodeID(id))
}

// updateIndexes applies op to every index entry of the token. Used with
// addIndexEntry when a token is created and removeIndexEntry when it is
// destroyed.
func (r *Registry) updateIndexes(id uint64, owner ref.Address, meta *schema.NftMeta, op func(key []byte) error) error {
	for _, entry := range projections(owner, meta) {
		if err := op(indexKey(entry.dimension, entry.key, id)); err != nil {
			return fmt.Errorf("registry: %s index for token %d: %w", entry.dimension, id, err)
		}
	}
	return nil
}

func (r *Registry) addIndexEntry(key []byte) error {
	return r.store.Set(key, present)
}

func (r *Registry) removeIndexEntry(key []byte) error {
	return r.store.Delete(key)
}

// reindexOwner moves a token between owner sets. The other dimensions
// are derived from immutable metadata and never change.
func (r *Registry) reindexOwner(id uint64, from, to ref.Address) error {
	if from == to {
		return nil
	}
	if err := r.removeIndexEntry(indexKey(ByOwner, from.String(), id)); err != nil {
		return err
	}
	return r.addIndexEntry(indexKey(ByOwner, to.String(), id))
}

// ListBy returns up to limit token ids in the dimension's key set, in
// ascending order, starting after startAfter when it is non-nil. Limit 0
// means the default page size; larger limits are clamped.
func (v *View) ListBy(dimension Dimension, key string, startAfter *uint64, limit uint32) ([]uint64, error) {
	return v.pageIDs(indexPrefix(dimension, key), startAfter, limit)
}

// pageIDs pages through keys of the form prefix+<be64 id>.
func (v *View) pageIDs(prefix []byte, startAfter *uint64, limit uint32) ([]uint64, error) {
	var start []byte
	if startAfter != nil {
		start = afterID(prefix, *startAfter)
		if start == nil {
			return []uint64{}, nil
		}
	}
	size := v.pageSize(limit)
	ids := make([]uint64, 0, size)
	err := v.reader.Iterate(prefix, start, func(key, _ []byte) error {
		if len(ids) >= size {
			return kvstore.ErrStop
		}
		if len(key) != len(prefix)+8 {
			return fmt.Errorf("registry: malformed id key %q", key)
		}
		ids = append(ids, decodeID(key))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
