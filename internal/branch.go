package internal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Branch directory operations.

// CreateBranch forks a new branch from an existing one. When the source
// branch has a head, the new branch starts as a pointer to that same commit;
// no snapshot data is copied. Creating a name that already exists fails with
// ErrBranchExists.
func (e *Engine) CreateBranch(ctx context.Context, category, name, from string) (*Branch, error) {
	category, name, err := validateLineage(category, name)
	if err != nil {
		return nil, err
	}
	if from == "" {
		from = DefaultBranch
	}

	head := ""
	source, err := e.store.GetBranch(ctx, category, from)
	if err == nil {
		head = source.Head
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get source branch: %w", err)
	}

	branch := &Branch{
		Category:  category,
		Name:      name,
		Head:      head,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.CreateBranch(ctx, branch); err != nil {
		return nil, err
	}

	copied := *branch
	return &copied, nil
}

// ListBranches returns the category's branches with per-branch commit
// counts. Counts cover only commits created on the branch itself; the fork
// point and older ancestors stay with their origin branch.
func (e *Engine) ListBranches(ctx context.Context, category string) ([]BranchInfo, error) {
	category, err := NewCategory(category)
	if err != nil {
		return nil, err
	}

	branches, err := e.store.ListBranches(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	infos := make([]BranchInfo, 0, len(branches))
	for _, b := range branches {
		count, err := e.store.CountCommits(ctx, category, b.Name)
		if err != nil {
			return nil, fmt.Errorf("count commits on %s: %w", b.Name, err)
		}
		infos = append(infos, BranchInfo{Branch: *b, CommitCount: count})
	}
	return infos, nil
}

// DeleteBranch removes the branch and every commit recorded under it.
// Returns false, with no effect, for "main" or an unknown branch.
func (e *Engine) DeleteBranch(ctx context.Context, category, name string) (bool, error) {
	category, name, err := validateLineage(category, name)
	if err != nil {
		return false, err
	}
	if name == DefaultBranch {
		return false, nil
	}

	lock := e.branchLock(category, name)
	lock.Lock()
	defer lock.Unlock()

	if _, err := e.store.DeleteBranch(ctx, category, name); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("delete branch: %w", err)
	}

	e.cache.Remove(lineageKey(category, name))
	e.dropBranchLock(category, name)
	return true, nil
}

// SwitchBranch looks up a branch by name. It is a pure read; nothing about
// the stored state changes.
func (e *Engine) SwitchBranch(ctx context.Context, category, name string) (*Branch, error) {
	category, name, err := validateLineage(category, name)
	if err != nil {
		return nil, err
	}
	return e.store.GetBranch(ctx, category, name)
}
