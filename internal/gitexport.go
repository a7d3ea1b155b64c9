package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"gopkg.in/yaml.v3"
)

const (
	exportAuthor = "microclaw"
	exportEmail  = "microclaw@local"
	exportFile   = "snapshot.yaml"
)

// ExportCategory materializes a category's main-branch history as a plain
// git repository under dir: one git commit per engine commit, oldest first,
// with the snapshot serialized as YAML and the original message preserved.
// Returns the number of commits exported.
func ExportCategory(ctx context.Context, engine *Engine, category, dir string) (int, error) {
	category, err := NewCategory(category)
	if err != nil {
		return 0, err
	}

	history, err := engine.store.WalkParents(ctx, headHash(ctx, engine, category), 0)
	if err != nil {
		return 0, fmt.Errorf("walk history: %w", err)
	}
	if len(history) == 0 {
		return 0, ErrNotFound
	}

	// WalkParents yields newest first; export oldest first.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}

	worktree, err := initExportRepo(dir)
	if err != nil {
		return 0, err
	}

	for _, commit := range history {
		if err := exportCommit(worktree, dir, commit); err != nil {
			return 0, err
		}
	}

	return len(history), nil
}

func headHash(ctx context.Context, engine *Engine, category string) string {
	branch, err := engine.store.GetBranch(ctx, category, DefaultBranch)
	if err != nil {
		return ""
	}
	return branch.Head
}

func initExportRepo(dir string) (*git.Worktree, error) {
	gitDir := filepath.Join(dir, ".git")
	if err := os.MkdirAll(gitDir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	fs := osfs.New(gitDir)
	storage := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	wt := osfs.New(dir)

	repo, err := git.Init(storage, wt)
	if err != nil {
		return nil, fmt.Errorf("init export repository: %w", err)
	}

	cfg, err := repo.Config()
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}
	cfg.Init.DefaultBranch = DefaultBranch
	if err := repo.SetConfig(cfg); err != nil {
		return nil, fmt.Errorf("set config: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}
	return worktree, nil
}

func exportCommit(worktree *git.Worktree, dir string, commit *Commit) error {
	data, err := yaml.Marshal(commit.Snapshot.ToAny())
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	path := filepath.Join(dir, exportFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}

	if _, err := worktree.Add(exportFile); err != nil {
		return fmt.Errorf("stage snapshot: %w", err)
	}

	when := commit.CreatedAt
	if when.IsZero() {
		when = time.Now()
	}

	_, err = worktree.Commit(commit.Message, &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  exportAuthor,
			Email: exportEmail,
			When:  when,
		},
	})
	if err != nil {
		return fmt.Errorf("export commit %s: %w", commit.Hash, err)
	}
	return nil
}
