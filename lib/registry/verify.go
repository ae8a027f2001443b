// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/zeebo/blake3"
)

// ProblemType classifies an inconsistency found by CheckIndexes.
type ProblemType string

const (
	ProblemMissingMetadata ProblemType = "missing_metadata"
	ProblemOrphanMetadata  ProblemType = "orphan_metadata"
	ProblemMissingIndex    ProblemType = "missing_index"
	ProblemOrphanIndex     ProblemType = "orphan_index"
	ProblemSupply          ProblemType = "supply_mismatch"
	ProblemNextTokenID     ProblemType = "next_token_id_behind"
)

// Problem is one inconsistency between the ledger, the metadata store,
// the indexes, and the counters.
type Problem struct {
	Type    ProblemType `json:"type"`
	TokenID uint64      `json:"token_id,omitempty"`
	Detail  string      `json:"detail"`
}

// Report is the result of CheckIndexes.
type Report struct {
	Tokens       int       `json:"tokens"`
	IndexEntries int       `json:"index_entries"`
	Problems     []Problem `json:"problems,omitempty"`
}

// OK reports whether no problems were found.
func (r *Report) OK() bool { return len(r.Problems) == 0 }

func (r *Report) add(problemType ProblemType, id uint64, format string, args ...any) {
	r.Problems = append(r.Problems, Problem{Type: problemType, TokenID: id, Detail: fmt.Sprintf(format, args...)})
}

// CheckIndexes recomputes every projection from the ledger and the
// metadata store and compares it with the stored indexes and counters.
func (v *View) CheckIndexes() (*Report, error) {
	report := &Report{}
	expected := make(map[string]uint64)
	var highestID uint64

	err := v.reader.Iterate(prefixToken, nil, func(key, value []byte) error {
		id := decodeID(key)
		report.Tokens++
		highestID = max(highestID, id)
		var record tokenRecord
		if err := unmarshalValue(key, value, &record); err != nil {
			return err
		}
		meta, err := v.TokenMeta(id)
		if CodeOf(err) == CodeNotFound {
			report.add(ProblemMissingMetadata, id, "token %d has no metadata", id)
			return nil
		}
		if err != nil {
			return err
		}
		for _, entry := range projections(record.Owner, &meta) {
			expected[string(indexKey(entry.dimension, entry.key, id))] = id
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = v.reader.Iterate(prefixMeta, nil, func(key, _ []byte) error {
		id := decodeID(key)
		exists, err := v.has(tokenKey(id))
		if err != nil {
			return err
		}
		if !exists {
			report.add(ProblemOrphanMetadata, id, "metadata for token %d has no ledger entry", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = v.reader.Iterate(prefixIndex, nil, func(key, _ []byte) error {
		report.IndexEntries++
		if _, ok := expected[string(key)]; ok {
			delete(expected, string(key))
			return nil
		}
		report.add(ProblemOrphanIndex, decodeID(key), "index entry %s has no matching token", describeIndexKey(key))
		return nil
	})
	if err != nil {
		return nil, err
	}
	missing := make([]string, 0, len(expected))
	for key := range expected {
		missing = append(missing, key)
	}
	slices.Sort(missing)
	for _, key := range missing {
		report.add(ProblemMissingIndex, expected[key], "token is absent from index %s", describeIndexKey([]byte(key)))
	}

	supply, err := v.counter(keySupply)
	if err != nil {
		return nil, err
	}
	if supply != uint64(report.Tokens) {
		report.add(ProblemSupply, 0, "supply counter is %d, ledger holds %d tokens", supply, report.Tokens)
	}
	next, err := v.counter(keyNextTokenID)
	if err != nil {
		return nil, err
	}
	if report.Tokens > 0 && next <= highestID {
		report.add(ProblemNextTokenID, highestID, "next token id %d does not exceed highest id %d", next, highestID)
	}
	return report, nil
}

// describeIndexKey renders an index key as dimension=key/id.
func describeIndexKey(key []byte) string {
	rest := bytes.TrimPrefix(key, prefixIndex)
	if len(rest) < 1+1+8 {
		return fmt.Sprintf("%q", key)
	}
	dimension := Dimension(rest[0])
	name, err := decodeLengthPrefixed(rest[1 : len(rest)-8])
	if err != nil {
		return fmt.Sprintf("%q", key)
	}
	return fmt.Sprintf("%s=%s/%d", dimension, name, decodeID(rest))
}

// RebuildIndexes drops every index entry and regenerates the indexes,
// the supply counter, and (if behind) the next token id from the ledger
// and the metadata store. It fails if a token has no metadata, since
// its projections cannot be derived. Returns the number of tokens
// indexed.
func (r *Registry) RebuildIndexes() (int, error) {
	err := r.store.Iterate(prefixIndex, nil, func(key, _ []byte) error {
		return r.store.Delete(key)
	})
	if err != nil {
		return 0, err
	}

	count := 0
	var highestID uint64
	err = r.store.Iterate(prefixToken, nil, func(key, value []byte) error {
		id := decodeID(key)
		var record tokenRecord
		if err := unmarshalValue(key, value, &record); err != nil {
			return err
		}
		meta, err := r.TokenMeta(id)
		if err != nil {
			return fmt.Errorf("rebuilding indexes: %w", err)
		}
		if err := r.updateIndexes(id, record.Owner, &meta, r.addIndexEntry); err != nil {
			return err
		}
		count++
		highestID = max(highestID, id)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := r.setCounter(keySupply, uint64(count)); err != nil {
		return 0, err
	}
	next, err := r.counter(keyNextTokenID)
	if err != nil {
		return 0, err
	}
	if next <= highestID {
		if err := r.setCounter(keyNextTokenID, highestID+1); err != nil {
			return 0, err
		}
	}
	r.logger.Info("indexes rebuilt", "tokens", count)
	return count, nil
}

// stateDigestKey domain-separates state digests from any other BLAKE3
// use of the same bytes.
var stateDigestKey = [32]byte{
	'l', 'u', 'c', 'k', 'e', 'e', '.', 'r', 'e', 'g', 'i', 's', 't', 'r', 'y', '.',
	's', 't', 'a', 't', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// StateDigest returns a hex BLAKE3 digest of every non-derived key and
// value in key order. Index entries are excluded, so a state and its
// rebuilt copy digest identically.
func (v *View) StateDigest() (string, error) {
	hasher, err := blake3.NewKeyed(stateDigestKey[:])
	if err != nil {
		return "", fmt.Errorf("registry: digest initialization: %w", err)
	}
	var lengths [2 * binary.MaxVarintLen64]byte
	err = v.reader.Iterate(nil, nil, func(key, value []byte) error {
		if bytes.HasPrefix(key, prefixIndex) {
			return nil
		}
		header := binary.AppendUvarint(lengths[:0], uint64(len(key)))
		header = binary.AppendUvarint(header, uint64(len(value)))
		hasher.Write(header)
		hasher.Write(key)
		hasher.Write(value)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
