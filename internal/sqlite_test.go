package internal

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// Both backends must satisfy the same contract; the conformance tests run
// against each.
func storeBackends(t *testing.T) map[string]CommitStore {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "context.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]CommitStore{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func testBranch(category, name string) *Branch {
	return &Branch{
		Category:  category,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

func testCommit(category, branch, hash, parent string) *Commit {
	return &Commit{
		Hash:       hash,
		Category:   category,
		Branch:     branch,
		ParentHash: parent,
		Delta:      NewDelta(),
		Snapshot:   Snapshot{"k": ScalarValue{Raw: "v"}},
		Message:    "test commit",
		Confidence: ConfidenceHigh,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestStoreAppendAndGet(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := store.CreateBranch(ctx, testBranch("facts", "main")); err != nil {
				t.Fatalf("create branch: %v", err)
			}
			commit := testCommit("facts", "main", "aaaa", "")
			commit.Delta.Added["tags"] = []string{"x"}
			if err := store.AppendCommit(ctx, commit, ""); err != nil {
				t.Fatalf("append: %v", err)
			}

			got, err := store.GetCommit(ctx, "aaaa")
			if err != nil {
				t.Fatalf("get commit: %v", err)
			}
			if got.Message != "test commit" || got.Confidence != ConfidenceHigh {
				t.Errorf("commit round trip = %+v", got)
			}
			if !got.Snapshot.Equal(commit.Snapshot) {
				t.Errorf("snapshot = %v, want %v", got.Snapshot.ToAny(), commit.Snapshot.ToAny())
			}
			if added := got.Delta.Added["tags"]; len(added) != 1 || added[0] != "x" {
				t.Errorf("delta = %+v", got.Delta)
			}

			branch, err := store.GetBranch(ctx, "facts", "main")
			if err != nil {
				t.Fatalf("get branch: %v", err)
			}
			if branch.Head != "aaaa" {
				t.Errorf("head = %q, want aaaa", branch.Head)
			}
		})
	}
}

func TestStoreAppendStaleHead(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := store.CreateBranch(ctx, testBranch("facts", "main")); err != nil {
				t.Fatalf("create branch: %v", err)
			}
			if err := store.AppendCommit(ctx, testCommit("facts", "main", "aaaa", ""), ""); err != nil {
				t.Fatalf("first append: %v", err)
			}

			// Second writer raced past us; its expected head is outdated.
			err := store.AppendCommit(ctx, testCommit("facts", "main", "bbbb", ""), "")
			if !errors.Is(err, ErrStaleHead) {
				t.Errorf("err = %v, want ErrStaleHead", err)
			}

			branch, err := store.GetBranch(ctx, "facts", "main")
			if err != nil {
				t.Fatalf("get branch: %v", err)
			}
			if branch.Head != "aaaa" {
				t.Errorf("head moved to %q after refused append", branch.Head)
			}
		})
	}
}

func TestStoreCreateBranchDuplicate(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := store.CreateBranch(ctx, testBranch("facts", "dup")); err != nil {
				t.Fatalf("create branch: %v", err)
			}
			if err := store.CreateBranch(ctx, testBranch("facts", "dup")); !errors.Is(err, ErrBranchExists) {
				t.Errorf("err = %v, want ErrBranchExists", err)
			}
		})
	}
}

func TestStoreListBranchesSorted(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, n := range []string{"zeta", "alpha", "main"} {
				if err := store.CreateBranch(ctx, testBranch("facts", n)); err != nil {
					t.Fatalf("create %s: %v", n, err)
				}
			}
			if err := store.CreateBranch(ctx, testBranch("other", "main")); err != nil {
				t.Fatalf("create other/main: %v", err)
			}

			branches, err := store.ListBranches(ctx, "facts")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(branches) != 3 {
				t.Fatalf("branch count = %d, want 3", len(branches))
			}
			for i, want := range []string{"alpha", "main", "zeta"} {
				if branches[i].Name != want {
					t.Errorf("branches[%d] = %q, want %q", i, branches[i].Name, want)
				}
			}
		})
	}
}

func TestStoreDeleteBranchRemovesCommits(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := store.CreateBranch(ctx, testBranch("facts", "scratch")); err != nil {
				t.Fatalf("create branch: %v", err)
			}
			if err := store.AppendCommit(ctx, testCommit("facts", "scratch", "aaaa", ""), ""); err != nil {
				t.Fatalf("append: %v", err)
			}
			if err := store.AppendCommit(ctx, testCommit("facts", "scratch", "bbbb", "aaaa"), "aaaa"); err != nil {
				t.Fatalf("append: %v", err)
			}

			deleted, err := store.DeleteBranch(ctx, "facts", "scratch")
			if err != nil {
				t.Fatalf("delete: %v", err)
			}
			if deleted != 2 {
				t.Errorf("deleted = %d, want 2", deleted)
			}

			if _, err := store.GetBranch(ctx, "facts", "scratch"); !errors.Is(err, ErrNotFound) {
				t.Errorf("branch still present: %v", err)
			}
			if _, err := store.GetCommit(ctx, "aaaa"); !errors.Is(err, ErrNotFound) {
				t.Errorf("commit still present: %v", err)
			}

			if _, err := store.DeleteBranch(ctx, "facts", "scratch"); !errors.Is(err, ErrNotFound) {
				t.Errorf("double delete err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreCountCommits(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := store.CreateBranch(ctx, testBranch("facts", "main")); err != nil {
				t.Fatalf("create branch: %v", err)
			}
			if err := store.AppendCommit(ctx, testCommit("facts", "main", "aaaa", ""), ""); err != nil {
				t.Fatalf("append: %v", err)
			}

			count, err := store.CountCommits(ctx, "facts", "main")
			if err != nil {
				t.Fatalf("count: %v", err)
			}
			if count != 1 {
				t.Errorf("count = %d, want 1", count)
			}

			count, err = store.CountCommits(ctx, "facts", "other")
			if err != nil {
				t.Fatalf("count empty: %v", err)
			}
			if count != 0 {
				t.Errorf("count = %d, want 0", count)
			}
		})
	}
}

func TestStoreWalkParents(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := store.CreateBranch(ctx, testBranch("facts", "main")); err != nil {
				t.Fatalf("create branch: %v", err)
			}
			parent := ""
			for _, hash := range []string{"c1", "c2", "c3"} {
				if err := store.AppendCommit(ctx, testCommit("facts", "main", hash, parent), parent); err != nil {
					t.Fatalf("append %s: %v", hash, err)
				}
				parent = hash
			}

			chain, err := store.WalkParents(ctx, "c3", 0)
			if err != nil {
				t.Fatalf("walk: %v", err)
			}
			if len(chain) != 3 {
				t.Fatalf("chain length = %d, want 3", len(chain))
			}
			for i, want := range []string{"c3", "c2", "c1"} {
				if chain[i].Hash != want {
					t.Errorf("chain[%d] = %q, want %q", i, chain[i].Hash, want)
				}
			}

			limited, err := store.WalkParents(ctx, "c3", 2)
			if err != nil {
				t.Fatalf("walk limited: %v", err)
			}
			if len(limited) != 2 {
				t.Errorf("limited chain length = %d, want 2", len(limited))
			}
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := store.GetCommit(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("get commit err = %v, want ErrNotFound", err)
			}
			if _, err := store.GetBranch(ctx, "facts", "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("get branch err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "context.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.CreateBranch(ctx, testBranch("facts", "main")); err != nil {
		t.Fatalf("create branch: %v", err)
	}
	commit := testCommit("facts", "main", "aaaa", "")
	commit.Snapshot = Snapshot{"tags": ListValue{"x", "y"}}
	if err := store.AppendCommit(ctx, commit, ""); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetCommit(ctx, "aaaa")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if !got.Snapshot.Equal(commit.Snapshot) {
		t.Errorf("snapshot after reopen = %v", got.Snapshot.ToAny())
	}

	branch, err := reopened.GetBranch(ctx, "facts", "main")
	if err != nil {
		t.Fatalf("get branch after reopen: %v", err)
	}
	if branch.Head != "aaaa" {
		t.Errorf("head after reopen = %q", branch.Head)
	}
}

func TestSQLiteStoreInMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open :memory:: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.CreateBranch(ctx, testBranch("facts", "main")); err != nil {
		t.Fatalf("create branch: %v", err)
	}
	if err := store.AppendCommit(ctx, testCommit("facts", "main", "aaaa", ""), ""); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestEngineOnSQLite(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "context.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	engine, err := NewEngine(store, 0)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	snap := mustSnapshot(t, map[string]any{"languages": []any{"go"}})
	if _, err := engine.Commit(ctx, "stack", DefaultBranch, snap, "seed", ConfidenceHigh); err != nil {
		t.Fatalf("commit: %v", err)
	}

	next := mustSnapshot(t, map[string]any{"languages": []any{"go", "rust"}})
	commit, err := engine.Commit(ctx, "stack", DefaultBranch, next, "add rust", ConfidenceHigh)
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if got := commit.Delta.Added["languages"]; len(got) != 1 || got[0] != "rust" {
		t.Errorf("delta = %v, want [rust]", got)
	}

	entries, err := engine.Log(ctx, "stack", DefaultBranch, 0)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("log length = %d, want 2", len(entries))
	}
}

func TestSQLiteFileBackedUsesWAL(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "context.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	var mode string
	if err := store.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestSQLiteConcurrentReadersAcrossCategories(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "context.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	engine, err := NewEngine(store, 0)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ctx := context.Background()

	categories := []string{"preferences", "facts", "projects", "people"}
	for _, category := range categories {
		snap := mustSnapshot(t, map[string]any{"owner": category})
		if _, err := engine.Commit(ctx, category, DefaultBranch, snap, "seed", ConfidenceHigh); err != nil {
			t.Fatalf("seed %s: %v", category, err)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(categories)*8)
	for i := 0; i < 8; i++ {
		for _, category := range categories {
			wg.Add(1)
			go func() {
				defer wg.Done()
				head, err := engine.GetHeadSnapshot(ctx, category, DefaultBranch)
				if err != nil {
					errs <- err
					return
				}
				if head["owner"].(ScalarValue).Raw != category {
					errs <- errors.New("read crossed categories: " + category)
				}
			}()
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent read: %v", err)
	}
}
