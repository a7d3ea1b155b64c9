package internal

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory CommitStore for tests and ephemeral runs.
type MemoryStore struct {
	mu       sync.RWMutex
	commits  map[string]*Commit
	branches map[string]map[string]*Branch // category → name → branch
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		commits:  make(map[string]*Commit),
		branches: make(map[string]map[string]*Branch),
	}
}

func (s *MemoryStore) AppendCommit(ctx context.Context, commit *Commit, expectedHead string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	branch, ok := s.branches[commit.Category][commit.Branch]
	if !ok {
		return ErrNotFound
	}
	if branch.Head != expectedHead {
		return ErrStaleHead
	}

	s.commits[commit.Hash] = commit.Clone()
	branch.Head = commit.Hash
	return nil
}

func (s *MemoryStore) GetCommit(ctx context.Context, hash string) (*Commit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	commit, ok := s.commits[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return commit.Clone(), nil
}

func (s *MemoryStore) GetBranch(ctx context.Context, category, name string) (*Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	branch, ok := s.branches[category][name]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *branch
	return &copied, nil
}

func (s *MemoryStore) CreateBranch(ctx context.Context, branch *Branch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.branches[branch.Category][branch.Name]; ok {
		return ErrBranchExists
	}
	if s.branches[branch.Category] == nil {
		s.branches[branch.Category] = make(map[string]*Branch)
	}
	copied := *branch
	s.branches[branch.Category][branch.Name] = &copied
	return nil
}

func (s *MemoryStore) ListBranches(ctx context.Context, category string) ([]*Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	branches := make([]*Branch, 0, len(s.branches[category]))
	for _, branch := range s.branches[category] {
		copied := *branch
		branches = append(branches, &copied)
	}

	sort.Slice(branches, func(i, j int) bool {
		return branches[i].Name < branches[j].Name
	})
	return branches, nil
}

func (s *MemoryStore) DeleteBranch(ctx context.Context, category, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.branches[category][name]; !ok {
		return 0, ErrNotFound
	}

	deleted := 0
	for hash, commit := range s.commits {
		if commit.Category == category && commit.Branch == name {
			delete(s.commits, hash)
			deleted++
		}
	}
	delete(s.branches[category], name)
	return deleted, nil
}

func (s *MemoryStore) CountCommits(ctx context.Context, category, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, commit := range s.commits {
		if commit.Category == category && commit.Branch == name {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) WalkParents(ctx context.Context, head string, limit int) ([]*Commit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chain []*Commit
	hash := head
	for hash != "" {
		if limit > 0 && len(chain) >= limit {
			break
		}
		commit, ok := s.commits[hash]
		if !ok {
			break
		}
		chain = append(chain, commit.Clone())
		hash = commit.ParentHash
	}
	return chain, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
