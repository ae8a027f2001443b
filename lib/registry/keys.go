// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"encoding/binary"

	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/schema"
)

// Key layout. Token IDs are big-endian so that byte order equals
// numeric order; variable-length components are length-prefixed so one
// key's encoding is never a prefix of another's.
//
//	cfg                                 contract Config
//	seq/token                           next auto-assigned token id
//	seq/supply                          live token count
//	seq/series/<series>                 last serial handed out in series
//	tok/<id>                            tokenRecord (TokenLedger)
//	meta/<id>                           schema.NftMeta (MetadataStore)
//	burned/<id>                         tombstone of a destroyed token id
//	op/<lp owner><lp operator>          schema.Expiration
//	rcp/<kind>                          schema.Recipe
//	mnt/<address>                       minter allow-list membership
//	ix/<dimension><lp key><id>          index membership (IndexManager)
//	hist/<lp caller><output id>         SynthesisRecord
var (
	keyConfig      = []byte("cfg")
	keyNextTokenID = []byte("seq/token")
	keySupply      = []byte("seq/supply")

	prefixSeries   = []byte("seq/series/")
	prefixToken    = []byte("tok/")
	prefixMeta     = []byte("meta/")
	prefixBurned   = []byte("burned/")
	prefixOperator = []byte("op/")
	prefixRecipe   = []byte("rcp/")
	prefixMinter   = []byte("mnt/")
	prefixIndex    = []byte("ix/")
	prefixHistory  = []byte("hist/")
)

// present is the value stored for set-membership keys.
var present = []byte{1}

func join(prefix []byte, parts ...[]byte) []byte {
	size := len(prefix)
	for _, part := range parts {
		size += len(part)
	}
	key := make([]byte, 0, size)
	key = append(key, prefix...)
	for _, part := range parts {
		key = append(key, part...)
	}
	return key
}

func encodeID(id uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, id)
}

func decodeID(raw []byte) uint64 {
	return binary.BigEndian.Uint64(raw[len(raw)-8:])
}

func lengthPrefixed(value string) []byte {
	encoded := binary.AppendUvarint(nil, uint64(len(value)))
	return append(encoded, value...)
}

func tokenKey(id uint64) []byte { return join(prefixToken, encodeID(id)) }
func metaKey(id uint64) []byte  { return join(prefixMeta, encodeID(id)) }

func burnedKey(id uint64) []byte { return join(prefixBurned, encodeID(id)) }

func seriesKey(seriesID string) []byte { return join(prefixSeries, []byte(seriesID)) }

func recipeKey(kind schema.Kind) []byte { return join(prefixRecipe, []byte{byte(kind)}) }

func minterKey(address ref.Address) []byte {
	return join(prefixMinter, []byte(address.String()))
}

func operatorPrefix(owner ref.Address) []byte {
	return join(prefixOperator, lengthPrefixed(owner.String()))
}

func operatorKey(owner, operator ref.Address) []byte {
	return join(operatorPrefix(owner), lengthPrefixed(operator.String()))
}

func historyPrefix(caller ref.Address) []byte {
	return join(prefixHistory, lengthPrefixed(caller.String()))
}

func historyKey(caller ref.Address, output uint64) []byte {
	return join(historyPrefix(caller), encodeID(output))
}

// afterID returns the first key strictly after prefix+id, or nil when
// id is the largest possible token id.
func afterID(prefix []byte, id uint64) []byte {
	if id == ^uint64(0) {
		return nil
	}
	return join(prefix, encodeID(id+1))
}

func encodeCounter(value uint64) []byte { return encodeID(value) }
