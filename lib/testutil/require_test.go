// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 42
	if got := RequireReceive(t, ch, time.Second, "value"); got != 42 {
		t.Errorf("RequireReceive = %d, want 42", got)
	}
}

func TestRequireClosed(t *testing.T) {
	ch := make(chan struct{})
	close(ch)
	RequireClosed(t, ch, time.Second, "closed channel")
}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		args []any
		want string
	}{
		{nil, "(no message)"},
		{[]any{"plain"}, "plain"},
		{[]any{"height %d", 7}, "height 7"},
		{[]any{3}, "3"},
	}
	for _, tt := range tests {
		if got := formatMessage(tt.args); got != tt.want {
			t.Errorf("formatMessage(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestSocketDir(t *testing.T) {
	directory := SocketDir(t)
	if !strings.HasPrefix(directory, "/tmp/luckee-test-") {
		t.Errorf("SocketDir = %q", directory)
	}
	// Room for a socket name under the sun_path limit.
	if len(filepath.Join(directory, "luckee.sock")) >= 108 {
		t.Errorf("socket path too long: %d bytes", len(directory))
	}
	if info, err := os.Stat(directory); err != nil || !info.IsDir() {
		t.Errorf("SocketDir did not create a directory: %v", err)
	}
}
