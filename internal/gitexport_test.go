package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestExportCategory(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	snapshots := []map[string]any{
		{"languages": []any{"go"}},
		{"languages": []any{"go", "rust"}},
	}
	for i, fields := range snapshots {
		if _, err := engine.Commit(ctx, "stack", DefaultBranch, mustSnapshot(t, fields), "step", ConfidenceHigh); err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
	}

	dir := t.TempDir()
	exported, err := ExportCategory(ctx, engine, "stack", dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported != 2 {
		t.Errorf("exported = %d, want 2", exported)
	}

	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("open exported repo: %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("head: %v", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	count := 0
	if err := iter.ForEach(func(c *object.Commit) error {
		count++
		return nil
	}); err != nil {
		t.Fatalf("iterate log: %v", err)
	}
	if count != 2 {
		t.Errorf("git log length = %d, want 2", count)
	}

	data, err := os.ReadFile(filepath.Join(dir, "snapshot.yaml"))
	if err != nil {
		t.Fatalf("read snapshot file: %v", err)
	}
	if !strings.Contains(string(data), "rust") {
		t.Errorf("snapshot file missing latest state: %s", data)
	}
}

func TestExportEmptyCategory(t *testing.T) {
	engine := newTestEngine(t)

	_, err := ExportCategory(context.Background(), engine, "ghost", t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
