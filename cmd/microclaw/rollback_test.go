package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/wubox3/microclaw/internal"
)

func TestRollbackCmd(t *testing.T) {
	hist, _, _ := newTestServices(t)
	ctx := context.Background()

	first, err := hist.Commit(ctx, "facts", "", map[string]any{"k": "old"}, "one", internal.ConfidenceHigh, "")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := hist.Commit(ctx, "facts", "", map[string]any{"k": "new"}, "two", internal.ConfidenceHigh, ""); err != nil {
		t.Fatalf("commit: %v", err)
	}

	cmd := NewRollbackCmd(func() *internal.HistoryService { return hist })
	cmd.SetArgs([]string{"facts", first.Hash})

	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "Rollback to "+first.Hash) {
		t.Errorf("output = %q", out.String())
	}

	head, err := hist.HeadSnapshot(ctx, "facts", internal.DefaultBranch, "")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head["k"].(internal.ScalarValue).Raw != "old" {
		t.Errorf("head after rollback = %v", head.ToAny())
	}
}

func TestRollbackCmdUnknownHash(t *testing.T) {
	hist, _, _ := newTestServices(t)
	seedHistory(t, hist, "facts", "seed")

	cmd := NewRollbackCmd(func() *internal.HistoryService { return hist })
	cmd.SetArgs([]string{"facts", "deadbeef"})

	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "not found") {
		t.Errorf("output = %q, want not-found notice", out.String())
	}
}
