// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/luckee-foundation/luckee/lib/clock"
	"github.com/luckee-foundation/luckee/lib/codec"
	"github.com/luckee-foundation/luckee/lib/kvstore"
	"github.com/luckee-foundation/luckee/lib/version"
)

// Format identifies a Luckee snapshot stream.
const Format = "luckee-snapshot"

// FormatVersion is the stream layout version written by Export.
const FormatVersion = 1

// ageMagic starts every age-encrypted file.
var ageMagic = []byte("age-encryption.org/")

var (
	// ErrNotEmpty is returned by Import when the target database
	// already holds keys.
	ErrNotEmpty = errors.New("snapshot: target database is not empty")

	// ErrEncrypted is returned by Import when the stream is encrypted
	// and no identities were supplied.
	ErrEncrypted = errors.New("snapshot: stream is encrypted and no identity was given")

	// ErrChecksum is returned by Import when the trailer does not
	// match the entries read.
	ErrChecksum = errors.New("snapshot: checksum mismatch")
)

// Header is the first item of a snapshot stream.
type Header struct {
	Format   string `json:"format"`
	Version  int    `json:"version"`
	Contract string `json:"contract"`
	Build    string `json:"build"`
	Created  int64  `json:"created"`
}

// entry is one key-value pair.
type entry struct {
	Key   []byte `json:"k"`
	Value []byte `json:"v"`
}

// trailer is the last item of a snapshot stream. Entries is encoded
// as a count so a truncated stream cannot pass for a complete one.
type trailer struct {
	End      bool   `json:"end"`
	Entries  uint64 `json:"entries"`
	Checksum []byte `json:"checksum"`
}

// Stats summarizes an export or import.
type Stats struct {
	Header   Header `json:"header"`
	Entries  uint64 `json:"entries"`
	Checksum string `json:"checksum"`
}

// ExportOptions configures Export.
type ExportOptions struct {
	// Recipients, when non-empty, encrypt the stream with age.
	Recipients []age.Recipient

	// Clock stamps Header.Created. Defaults to the real clock.
	Clock clock.Clock
}

// Export writes every key in db to w as a zstd-compressed CBOR
// sequence: a Header, one item per key in key order, and a trailer
// carrying the entry count and a BLAKE3 checksum. When recipients are
// given the compressed stream is encrypted to them with age.
func Export(ctx context.Context, db kvstore.DB, w io.Writer, options ExportOptions) (*Stats, error) {
	recipients := options.Recipients
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	var (
		sink    io.Writer = w
		sealing io.WriteCloser
	)
	if len(recipients) > 0 {
		var err error
		sealing, err = age.Encrypt(w, recipients...)
		if err != nil {
			return nil, fmt.Errorf("snapshot: creating age encryptor: %w", err)
		}
		sink = sealing
	}

	compressor, err := zstd.NewWriter(sink, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("snapshot: creating zstd encoder: %w", err)
	}

	stats := &Stats{Header: Header{
		Format:   Format,
		Version:  FormatVersion,
		Contract: version.ContractName,
		Build:    version.Short(),
		Created:  options.Clock.Now().Unix(),
	}}
	encoder := codec.NewEncoder(compressor)
	if err := encoder.Encode(stats.Header); err != nil {
		compressor.Close()
		return nil, fmt.Errorf("snapshot: writing header: %w", err)
	}

	hasher := blake3.New()
	err = db.View(ctx, func(reader kvstore.Reader) error {
		return reader.Iterate(nil, nil, func(key, value []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			hashEntry(hasher, key, value)
			stats.Entries++
			return encoder.Encode(entry{Key: key, Value: value})
		})
	})
	if err != nil {
		compressor.Close()
		return nil, fmt.Errorf("snapshot: exporting entries: %w", err)
	}

	checksum := hasher.Sum(nil)
	if err := encoder.Encode(trailer{End: true, Entries: stats.Entries, Checksum: checksum}); err != nil {
		compressor.Close()
		return nil, fmt.Errorf("snapshot: writing trailer: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return nil, fmt.Errorf("snapshot: finishing zstd stream: %w", err)
	}
	if sealing != nil {
		if err := sealing.Close(); err != nil {
			return nil, fmt.Errorf("snapshot: finalizing age encryption: %w", err)
		}
	}
	stats.Checksum = fmt.Sprintf("%x", checksum)
	return stats, nil
}

// Import restores a stream written by Export into db, which must be
// empty. Encrypted streams are detected automatically and need at
// least one matching identity. The whole import runs in one
// transaction: a corrupt or truncated stream leaves db empty.
func Import(ctx context.Context, db kvstore.DB, r io.Reader, identities []age.Identity) (*Stats, error) {
	source, err := openSource(r, identities)
	if err != nil {
		return nil, err
	}
	decompressor, err := zstd.NewReader(source)
	if err != nil {
		return nil, fmt.Errorf("snapshot: creating zstd decoder: %w", err)
	}
	defer decompressor.Close()

	decoder := codec.NewDecoder(decompressor)
	stats := &Stats{}
	if err := decoder.Decode(&stats.Header); err != nil {
		return nil, fmt.Errorf("snapshot: reading header: %w", err)
	}
	if stats.Header.Format != Format {
		return nil, fmt.Errorf("snapshot: not a snapshot stream (format %q)", stats.Header.Format)
	}
	if stats.Header.Version != FormatVersion {
		return nil, fmt.Errorf("snapshot: unsupported format version %d", stats.Header.Version)
	}
	if stats.Header.Contract != version.ContractName {
		return nil, fmt.Errorf("snapshot: stream is for contract %q, not %q", stats.Header.Contract, version.ContractName)
	}

	err = db.Update(ctx, func(store kvstore.Store) error {
		empty := true
		err := store.Iterate(nil, nil, func(_, _ []byte) error {
			empty = false
			return kvstore.ErrStop
		})
		if err != nil {
			return err
		}
		if !empty {
			return ErrNotEmpty
		}

		hasher := blake3.New()
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			var raw codec.RawMessage
			if err := decoder.Decode(&raw); err != nil {
				if errors.Is(err, io.EOF) {
					return fmt.Errorf("snapshot: stream ended after %d entries without a trailer", stats.Entries)
				}
				return fmt.Errorf("snapshot: reading entry %d: %w", stats.Entries, err)
			}
			var end trailer
			if codec.Unmarshal(raw, &end) == nil && end.End {
				if end.Entries != stats.Entries || !bytes.Equal(end.Checksum, hasher.Sum(nil)) {
					return fmt.Errorf("%w: trailer reports %d entries, read %d", ErrChecksum, end.Entries, stats.Entries)
				}
				stats.Checksum = fmt.Sprintf("%x", end.Checksum)
				return nil
			}
			var item entry
			if err := codec.Unmarshal(raw, &item); err != nil {
				return fmt.Errorf("snapshot: decoding entry %d: %w", stats.Entries, err)
			}
			if len(item.Key) == 0 {
				return fmt.Errorf("snapshot: entry %d has an empty key", stats.Entries)
			}
			hashEntry(hasher, item.Key, item.Value)
			if err := store.Set(item.Key, item.Value); err != nil {
				return err
			}
			stats.Entries++
		}
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// openSource returns the compressed stream, decrypting it first when
// it starts with the age header.
func openSource(r io.Reader, identities []age.Identity) (io.Reader, error) {
	buffered := bufio.NewReader(r)
	magic, err := buffered.Peek(len(ageMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("snapshot: reading stream: %w", err)
	}
	if !bytes.Equal(magic, ageMagic) {
		return buffered, nil
	}
	if len(identities) == 0 {
		return nil, ErrEncrypted
	}
	plaintext, err := age.Decrypt(buffered, identities...)
	if err != nil {
		return nil, fmt.Errorf("snapshot: decrypting: %w", err)
	}
	return plaintext, nil
}

// hashEntry feeds one length-delimited entry to the checksum.
func hashEntry(hasher *blake3.Hasher, key, value []byte) {
	var lengths [16]byte
	binary.BigEndian.PutUint64(lengths[:8], uint64(len(key)))
	binary.BigEndian.PutUint64(lengths[8:], uint64(len(value)))
	hasher.Write(lengths[:])
	hasher.Write(key)
	hasher.Write(value)
}
