// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"filippo.io/age"
	"github.com/klauspost/compress/zstd"

	"github.com/luckee-foundation/luckee/lib/clock"
	"github.com/luckee-foundation/luckee/lib/codec"
	"github.com/luckee-foundation/luckee/lib/kvstore"
)

// seed fills db with count keys under two prefixes.
func seed(t *testing.T, db kvstore.DB, count int) {
	t.Helper()
	err := db.Update(context.Background(), func(store kvstore.Store) error {
		for i := range count {
			if err := store.Set([]byte(fmt.Sprintf("tok/%04d", i)), []byte(fmt.Sprintf("owner-%d", i%7))); err != nil {
				return err
			}
		}
		return store.Set([]byte("cfg"), []byte{})
	})
	if err != nil {
		t.Fatalf("seeding: %v", err)
	}
}

func dump(t *testing.T, db kvstore.DB) map[string]string {
	t.Helper()
	state := make(map[string]string)
	err := db.View(context.Background(), func(reader kvstore.Reader) error {
		return reader.Iterate(nil, nil, func(key, value []byte) error {
			state[string(key)] = string(value)
			return nil
		})
	})
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	return state
}

func sameState(t *testing.T, want, got kvstore.DB) {
	t.Helper()
	wantState, gotState := dump(t, want), dump(t, got)
	if len(wantState) != len(gotState) {
		t.Fatalf("restored %d keys, want %d", len(gotState), len(wantState))
	}
	for key, value := range wantState {
		if gotState[key] != value {
			t.Errorf("key %q = %q, want %q", key, gotState[key], value)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	source := kvstore.NewMemory()
	seed(t, source, 500)

	var buffer bytes.Buffer
	exported, err := Export(context.Background(), source, &buffer, ExportOptions{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if exported.Entries != 501 {
		t.Errorf("exported %d entries, want 501", exported.Entries)
	}

	target := kvstore.NewMemory()
	imported, err := Import(context.Background(), target, &buffer, ExportOptions{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if imported.Entries != exported.Entries || imported.Checksum != exported.Checksum {
		t.Errorf("import stats %+v do not match export stats %+v", imported, exported)
	}
	if imported.Header.Format != Format || imported.Header.Contract != exported.Header.Contract {
		t.Errorf("header = %+v", imported.Header)
	}
	sameState(t, source, target)
}

func TestExportStampsClockTime(t *testing.T) {
	source := kvstore.NewMemory()
	seed(t, source, 3)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var buffer bytes.Buffer
	exported, err := Export(context.Background(), source, &buffer, ExportOptions{Clock: clock.Fake(created)})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if exported.Header.Created != created.Unix() {
		t.Errorf("export Created = %d, want %d", exported.Header.Created, created.Unix())
	}
	imported, err := Import(context.Background(), kvstore.NewMemory(), &buffer, nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if imported.Header.Created != created.Unix() {
		t.Errorf("import Created = %d, want %d", imported.Header.Created, created.Unix())
	}
}

func TestRoundTripIntoSQLite(t *testing.T) {
	source := kvstore.NewMemory()
	seed(t, source, 50)
	var buffer bytes.Buffer
	if _, err := Export(context.Background(), source, &buffer, ExportOptions{}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	target, err := kvstore.OpenSQLite(kvstore.SQLiteConfig{Path: filepath.Join(t.TempDir(), "restored.db")})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer target.Close()
	if _, err := Import(context.Background(), target, &buffer, ExportOptions{}); err != nil {
		t.Fatalf("Import: %v", err)
	}
	sameState(t, source, target)
}

func TestEncryptedRoundTrip(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity: %v", err)
	}
	recipients, err := ParseRecipients([]string{identity.Recipient().String()})
	if err != nil {
		t.Fatalf("ParseRecipients: %v", err)
	}

	source := kvstore.NewMemory()
	seed(t, source, 20)
	var buffer bytes.Buffer
	if _, err := Export(context.Background(), source, &buffer, ExportOptions{Recipients: recipients}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.HasPrefix(buffer.Bytes(), ageMagic) {
		t.Fatal("encrypted export does not start with the age header")
	}
	sealed := buffer.Bytes()

	if _, err := Import(context.Background(), kvstore.NewMemory(), bytes.NewReader(sealed), nil); !errors.Is(err, ErrEncrypted) {
		t.Errorf("Import without identity: err = %v, want ErrEncrypted", err)
	}

	stranger, _ := age.GenerateX25519Identity()
	if _, err := Import(context.Background(), kvstore.NewMemory(), bytes.NewReader(sealed), []age.Identity{stranger}); err == nil {
		t.Error("Import with the wrong identity succeeded")
	}

	identities, err := ReadIdentities(strings.NewReader("# snapshot key\n" + identity.String() + "\n"))
	if err != nil {
		t.Fatalf("ReadIdentities: %v", err)
	}
	target := kvstore.NewMemory()
	if _, err := Import(context.Background(), target, bytes.NewReader(sealed), identities); err != nil {
		t.Fatalf("Import: %v", err)
	}
	sameState(t, source, target)
}

func TestImportRequiresEmptyDatabase(t *testing.T) {
	source := kvstore.NewMemory()
	seed(t, source, 5)
	var buffer bytes.Buffer
	if _, err := Export(context.Background(), source, &buffer, ExportOptions{}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	target := kvstore.NewMemory()
	seed(t, target, 1)
	before := dump(t, target)
	if _, err := Import(context.Background(), target, &buffer, ExportOptions{}); !errors.Is(err, ErrNotEmpty) {
		t.Fatalf("Import into non-empty db: err = %v, want ErrNotEmpty", err)
	}
	if after := dump(t, target); len(after) != len(before) {
		t.Errorf("target changed: %d keys -> %d", len(before), len(after))
	}
}

// compressItems writes a hand-built CBOR sequence through zstd.
func compressItems(t *testing.T, items ...any) []byte {
	t.Helper()
	var buffer bytes.Buffer
	writer, err := zstd.NewWriter(&buffer)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	encoder := codec.NewEncoder(writer)
	for _, item := range items {
		if err := encoder.Encode(item); err != nil {
			t.Fatalf("encoding item: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing zstd writer: %v", err)
	}
	return buffer.Bytes()
}

func TestImportRejectsDamagedStreams(t *testing.T) {
	source := kvstore.NewMemory()
	seed(t, source, 3)
	var buffer bytes.Buffer
	exported, err := Export(context.Background(), source, &buffer, ExportOptions{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	header := exported.Header
	first := entry{Key: []byte("cfg"), Value: []byte{}}

	tests := []struct {
		name   string
		stream []byte
		target error
	}{
		{
			name:   "truncated",
			stream: compressItems(t, header, first),
		},
		{
			name:   "wrong checksum",
			stream: compressItems(t, header, first, trailer{End: true, Entries: 1, Checksum: []byte{1, 2, 3}}),
			target: ErrChecksum,
		},
		{
			name:   "wrong count",
			stream: compressItems(t, header, first, trailer{End: true, Entries: 2}),
			target: ErrChecksum,
		},
		{
			name:   "foreign format",
			stream: compressItems(t, Header{Format: "other", Version: 1}),
		},
		{
			name:   "future version",
			stream: compressItems(t, Header{Format: Format, Version: FormatVersion + 1, Contract: header.Contract}),
		},
		{
			name:   "not zstd",
			stream: []byte("plain text"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := kvstore.NewMemory()
			_, err := Import(context.Background(), target, bytes.NewReader(tt.stream), nil)
			if err == nil {
				t.Fatal("Import succeeded")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("err = %v, want %v", err, tt.target)
			}
			if state := dump(t, target); len(state) != 0 {
				t.Errorf("failed import left %d keys", len(state))
			}
		})
	}
}

func TestLoadIdentitiesMissingFile(t *testing.T) {
	if _, err := LoadIdentities(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("LoadIdentities on a missing file succeeded")
	}
}
