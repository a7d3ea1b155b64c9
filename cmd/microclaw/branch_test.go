package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wubox3/microclaw/internal"
)

func TestBranchCmdCreateAndList(t *testing.T) {
	hist, branch, _ := newTestServices(t)
	seedHistory(t, hist, "facts", "seed")

	create := NewBranchCmd(func() *internal.BranchService { return branch })
	create.SetArgs([]string{"facts", "experiment"})

	var out bytes.Buffer
	create.SetOut(&out)

	if err := create.Execute(); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out.String(), "Created branch experiment") {
		t.Errorf("create output = %q", out.String())
	}

	list := NewBranchCmd(func() *internal.BranchService { return branch })
	list.SetArgs([]string{"facts"})

	out.Reset()
	list.SetOut(&out)

	if err := list.Execute(); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "main") || !strings.Contains(out.String(), "experiment") {
		t.Errorf("list output = %q, want both branches", out.String())
	}
}

func TestBranchCmdDelete(t *testing.T) {
	hist, branch, _ := newTestServices(t)
	seedHistory(t, hist, "facts", "seed")

	create := NewBranchCmd(func() *internal.BranchService { return branch })
	create.SetArgs([]string{"facts", "scratch"})
	create.SetOut(&bytes.Buffer{})
	if err := create.Execute(); err != nil {
		t.Fatalf("create: %v", err)
	}

	del := NewBranchCmd(func() *internal.BranchService { return branch })
	del.SetArgs([]string{"facts", "scratch", "-d"})

	var out bytes.Buffer
	del.SetOut(&out)

	if err := del.Execute(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted branch scratch") {
		t.Errorf("delete output = %q", out.String())
	}
}

func TestBranchCmdDeleteMainRefused(t *testing.T) {
	hist, branch, _ := newTestServices(t)
	seedHistory(t, hist, "facts", "seed")

	del := NewBranchCmd(func() *internal.BranchService { return branch })
	del.SetArgs([]string{"facts", "main", "-d"})

	var out bytes.Buffer
	del.SetOut(&out)

	if err := del.Execute(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out.String(), "not deleted") {
		t.Errorf("output = %q, want refusal notice", out.String())
	}
}

func TestBranchCmdDuplicate(t *testing.T) {
	_, branch, _ := newTestServices(t)

	create := NewBranchCmd(func() *internal.BranchService { return branch })
	create.SetArgs([]string{"facts", "dup"})
	create.SetOut(&bytes.Buffer{})
	if err := create.Execute(); err != nil {
		t.Fatalf("create: %v", err)
	}

	again := NewBranchCmd(func() *internal.BranchService { return branch })
	again.SetArgs([]string{"facts", "dup"})
	again.SetOut(&bytes.Buffer{})
	again.SetErr(&bytes.Buffer{})

	if err := again.Execute(); err == nil {
		t.Error("duplicate branch creation succeeded")
	}
}
