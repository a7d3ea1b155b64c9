package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/wubox3/microclaw/internal"
)

func TestMigrateCmd(t *testing.T) {
	hist, _, _ := newTestServices(t)

	cmd := NewMigrateCmd(func() *internal.HistoryService { return hist })
	cmd.SetArgs([]string{"preferences"})
	cmd.SetIn(strings.NewReader(`{"languages": ["go"], "editor": "vim"}`))

	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "Migrated from legacy data") {
		t.Errorf("output = %q", out.String())
	}

	commit, err := hist.HeadCommit(context.Background(), "preferences", internal.DefaultBranch, "")
	if err != nil {
		t.Fatalf("head commit: %v", err)
	}
	if commit.Confidence != internal.ConfidenceMedium {
		t.Errorf("confidence = %q, want MEDIUM", commit.Confidence)
	}
}

func TestMigrateCmdIfEmptySkips(t *testing.T) {
	hist, _, _ := newTestServices(t)
	seedHistory(t, hist, "preferences", "existing")

	cmd := NewMigrateCmd(func() *internal.HistoryService { return hist })
	cmd.SetArgs([]string{"preferences", "--if-empty"})
	cmd.SetIn(strings.NewReader(`{"editor": "vim"}`))

	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "already has history") {
		t.Errorf("output = %q, want skip notice", out.String())
	}

	entries, err := hist.Log(context.Background(), "preferences", internal.DefaultBranch, 0, "")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("log length = %d, want 1 (migration skipped)", len(entries))
	}
}
