// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"filippo.io/age"

	"github.com/luckee-foundation/luckee/lib/codec"
)

// testEnv is one configured node directory.
type testEnv struct {
	t          *testing.T
	dir        string
	configPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "luckee.yaml")
	content := `
environment: development
database:
  path: ` + filepath.Join(dir, "state", "registry.db") + `
  pool_size: 2
contract:
  name: Luckee
  symbol: LKE
  minter: minter
  base_uri: https://nft.luckee.example/meta/
host:
  socket_path: ` + filepath.Join(dir, "luckee.sock") + `
log:
  level: error
  format: json
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return &testEnv{t: t, dir: dir, configPath: configPath}
}

// run executes a subcommand with --config and returns stdout.
func (e *testEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	c := &cli{stdin: strings.NewReader(stdin), stdout: &stdout, stderr: &stderr}
	full := append([]string{args[0], "--config", e.configPath}, args[1:]...)
	err := c.run(context.Background(), full)
	return stdout.String(), err
}

func (e *testEnv) mustRun(stdin string, args ...string) string {
	e.t.Helper()
	out, err := e.run(stdin, args...)
	if err != nil {
		e.t.Fatalf("luckee %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func (e *testEnv) writeFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		e.t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func decodeJSON[T any](t *testing.T, out string) T {
	t.Helper()
	var value T
	if err := json.Unmarshal([]byte(out), &value); err != nil {
		t.Fatalf("decoding output %q: %v", out, err)
	}
	return value
}

const mintMessage = `{
  // A single Clover for alice.
  "action": "mint",
  "owner": "alice",
  "extension": {
    "kind": "Clover",
    "scale_origin": "Small",
    "series_id": "drop-1",
  },
}`

func TestInitExecQuery(t *testing.T) {
	env := newTestEnv(t)

	initOutput := decodeJSON[resultOutput](t, env.mustRun("", "init", "--caller", "admin"))
	if initOutput.Action != "instantiate" || initOutput.Height != 1 {
		t.Errorf("init result = %+v", initOutput)
	}

	messagePath := env.writeFile("mint.jsonc", mintMessage)
	minted := decodeJSON[struct {
		Height uint64 `json:"height"`
		Data   struct {
			TokenIDs []uint64 `json:"token_ids"`
		} `json:"data"`
	}](t, env.mustRun("", "exec", "--caller", "minter", messagePath))
	if minted.Height != 2 {
		t.Errorf("mint height = %d, want 2", minted.Height)
	}
	if len(minted.Data.TokenIDs) != 1 || minted.Data.TokenIDs[0] != 1 {
		t.Fatalf("minted ids = %v, want [1]", minted.Data.TokenIDs)
	}

	owner := decodeJSON[struct {
		Owner string `json:"owner"`
	}](t, env.mustRun(`{"action": "owner_of", "token_id": 1}`, "query", "-"))
	if owner.Owner != "alice" {
		t.Errorf("owner = %q, want alice", owner.Owner)
	}

	info := decodeJSON[struct {
		TokenURI string `json:"token_uri"`
	}](t, env.mustRun(`{"action": "nft_info", "token_id": 1}`, "query", "-"))
	if !strings.HasPrefix(info.TokenURI, "https://nft.luckee.example/meta/") {
		t.Errorf("token_uri = %q", info.TokenURI)
	}
}

func TestExecFailures(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("", "init", "--caller", "admin")

	if _, err := env.run(mintMessage, "exec", "-"); err == nil || !strings.Contains(err.Error(), "--caller") {
		t.Errorf("exec without --caller: err = %v", err)
	}

	// alice is not a minter.
	_, err := env.run(mintMessage, "exec", "--caller", "alice", "-")
	if err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Errorf("unauthorized mint: err = %v", err)
	}

	if _, err := env.run(`[1, 2]`, "exec", "--caller", "minter", "-"); err == nil {
		t.Error("expected error for non-object message")
	}

	if _, err := env.run(`{"action": "conjure"}`, "exec", "--caller", "admin", "-"); err == nil {
		t.Error("expected error for unknown action")
	}

	if _, err := env.run("", "init", "--caller", "admin"); err == nil {
		t.Error("expected second init to fail")
	}
}

func TestCheck(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("", "init", "--caller", "admin")
	env.mustRun(mintMessage, "exec", "--caller", "minter", "-")

	report := decodeJSON[struct {
		Tokens   int   `json:"tokens"`
		Problems []any `json:"problems"`
	}](t, env.mustRun("", "check", "--repair"))
	if report.Tokens != 1 || len(report.Problems) != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestExportImport(t *testing.T) {
	source := newTestEnv(t)
	source.mustRun("", "init", "--caller", "admin")
	for range 3 {
		source.mustRun(mintMessage, "exec", "--caller", "minter", "-")
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity: %v", err)
	}
	identityPath := source.writeFile("identity.txt", identity.String()+"\n")
	snapshotPath := filepath.Join(source.dir, "registry.snapshot")
	source.mustRun("", "export", "--out", snapshotPath, "--recipient", identity.Recipient().String())

	target := newTestEnv(t)
	if _, err := target.run("", "import", "--in", snapshotPath); err == nil {
		t.Error("expected import of an encrypted snapshot without --identity to fail")
	}

	// The failed import left the target empty, so a retry is allowed.
	stats := decodeJSON[struct {
		Entries uint64 `json:"entries"`
	}](t, target.mustRun("", "import", "--in", snapshotPath, "--identity", identityPath))
	if stats.Entries == 0 {
		t.Error("imported no entries")
	}

	digestQuery := `{"action": "state_digest"}`
	if source.mustRun(digestQuery, "query", "-") != target.mustRun(digestQuery, "query", "-") {
		t.Error("imported state digest differs from source")
	}

	if _, err := target.run("", "import", "--in", snapshotPath, "--identity", identityPath); err == nil {
		t.Error("expected import into a non-empty database to fail")
	}
}

func TestActions(t *testing.T) {
	var stdout bytes.Buffer
	c := &cli{stdin: strings.NewReader(""), stdout: &stdout, stderr: &bytes.Buffer{}}
	if err := c.run(context.Background(), []string{"actions"}); err != nil {
		t.Fatalf("actions: %v", err)
	}
	actions := decodeJSON[map[string][]string](t, stdout.String())
	for _, want := range []string{"synthesize", "mint", "burn"} {
		if !slices.Contains(actions["execute"], want) {
			t.Errorf("execute actions missing %q", want)
		}
	}
	for _, want := range []string{"preview_synthesis", "tokens_by_kind"} {
		if !slices.Contains(actions["query"], want) {
			t.Errorf("query actions missing %q", want)
		}
	}
}

func TestUnknownSubcommand(t *testing.T) {
	c := &cli{stdin: strings.NewReader(""), stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	if err := c.run(context.Background(), []string{"frobnicate"}); err == nil {
		t.Error("expected error for unknown subcommand")
	}
	if err := c.run(context.Background(), nil); err == nil {
		t.Error("expected error without subcommand")
	}
}

func TestEncodeMessage(t *testing.T) {
	encoded, err := encodeMessage([]byte(`{
		/* ids above the int64 range stay unsigned */
		"action": "burn",
		"token_id": 18446744073709551615,
		"offset": -3,
		"ratio": 0.5,
		"nested": [{"n": 7}],
	}`))
	if err != nil {
		t.Fatalf("encodeMessage: %v", err)
	}

	var decoded struct {
		Action  string  `json:"action"`
		TokenID uint64  `json:"token_id"`
		Offset  int64   `json:"offset"`
		Ratio   float64 `json:"ratio"`
		Nested  []struct {
			N uint8 `json:"n"`
		} `json:"nested"`
	}
	if err := codec.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if decoded.Action != "burn" || decoded.TokenID != 18446744073709551615 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Offset != -3 || decoded.Ratio != 0.5 {
		t.Errorf("decoded = %+v", decoded)
	}
	if len(decoded.Nested) != 1 || decoded.Nested[0].N != 7 {
		t.Errorf("nested = %+v", decoded.Nested)
	}

	if _, err := encodeMessage([]byte(`{"action": `)); err == nil {
		t.Error("expected error for truncated message")
	}
}
