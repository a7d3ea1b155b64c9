package internal

import (
	"context"
)

// CommitStore is the persistence port backing the engine. Implementations
// must make AppendCommit atomic: the commit row and the head advance persist
// together or not at all, and the advance fails with ErrStaleHead when the
// stored head no longer matches expectedHead.
//
// Read operations return ErrNotFound for missing rows. Implementations own
// no cross-category locking; callers serialize writers per branch.
type CommitStore interface {
	// AppendCommit durably writes the commit and moves the branch head
	// from expectedHead to the commit's hash in one atomic step.
	AppendCommit(ctx context.Context, commit *Commit, expectedHead string) error

	GetCommit(ctx context.Context, hash string) (*Commit, error)

	GetBranch(ctx context.Context, category, name string) (*Branch, error)
	CreateBranch(ctx context.Context, branch *Branch) error
	ListBranches(ctx context.Context, category string) ([]*Branch, error)

	// DeleteBranch removes the branch row and every commit recorded as
	// created on it, returning the number of commits deleted.
	DeleteBranch(ctx context.Context, category, name string) (int, error)

	// CountCommits counts commits created on the branch itself;
	// fork-inherited ancestors belong to their origin branch.
	CountCommits(ctx context.Context, category, name string) (int, error)

	// WalkParents follows the parent chain from head backward, newest
	// first. A limit of zero or less walks the full chain.
	WalkParents(ctx context.Context, head string, limit int) ([]*Commit, error)

	Close() error
}
