package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wubox3/microclaw/internal"
)

func TestSwitchCmd(t *testing.T) {
	hist, branch, _ := newTestServices(t)
	seedHistory(t, hist, "facts", "seed")

	cmd := NewSwitchCmd(func() *internal.BranchService { return branch })
	cmd.SetArgs([]string{"facts", "main"})

	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "main ") {
		t.Errorf("output = %q", out.String())
	}
}

func TestSwitchCmdUnknownBranch(t *testing.T) {
	_, branch, _ := newTestServices(t)

	cmd := NewSwitchCmd(func() *internal.BranchService { return branch })
	cmd.SetArgs([]string{"facts", "ghost"})

	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "not found") {
		t.Errorf("output = %q", out.String())
	}
}
