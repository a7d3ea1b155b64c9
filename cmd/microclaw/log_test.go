package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/wubox3/microclaw/internal"
)

func seedHistory(t *testing.T, hist *internal.HistoryService, category string, messages ...string) {
	t.Helper()
	for _, msg := range messages {
		_, err := hist.Commit(context.Background(), category, "", map[string]any{"k": msg}, msg, internal.ConfidenceMedium, "")
		if err != nil {
			t.Fatalf("seed commit %q: %v", msg, err)
		}
	}
}

func TestLogCmd(t *testing.T) {
	hist, _, _ := newTestServices(t)
	seedHistory(t, hist, "facts", "first", "second")

	cmd := NewLogCmd(func() *internal.HistoryService { return hist })
	cmd.SetArgs([]string{"facts"})

	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "first") || !strings.Contains(output, "second") {
		t.Errorf("output missing messages: %q", output)
	}
	// Newest first
	if strings.Index(output, "second") > strings.Index(output, "first") {
		t.Error("log is not newest first")
	}
}

func TestLogCmdOneline(t *testing.T) {
	hist, _, _ := newTestServices(t)
	seedHistory(t, hist, "facts", "only commit")

	cmd := NewLogCmd(func() *internal.HistoryService { return hist })
	cmd.SetArgs([]string{"facts", "--oneline"})

	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("oneline output has %d lines: %q", len(lines), out.String())
	}
}

func TestLogCmdLimit(t *testing.T) {
	hist, _, _ := newTestServices(t)
	seedHistory(t, hist, "facts", "a", "b", "c")

	cmd := NewLogCmd(func() *internal.HistoryService { return hist })
	cmd.SetArgs([]string{"facts", "--oneline", "-n", "2"})

	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("limited output has %d lines, want 2", len(lines))
	}
}

func TestLogCmdEmptyCategory(t *testing.T) {
	hist, _, _ := newTestServices(t)

	cmd := NewLogCmd(func() *internal.HistoryService { return hist })
	cmd.SetArgs([]string{"ghost"})

	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != "" {
		t.Errorf("output for empty category = %q, want nothing", out.String())
	}
}
