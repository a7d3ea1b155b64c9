package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 256

// Engine is the context commit engine: a version-controlled store for
// structured snapshots, partitioned into independent per-category histories.
// It is safe for concurrent use; writers to the same branch are serialized,
// operations on different categories never block each other.
type Engine struct {
	store CommitStore

	// Head-snapshot read cache keyed by category/branch. Entries hold
	// private copies tagged with the head hash they were read at; a hit
	// only counts when the tag still matches the branch head, so an entry
	// raced in by a slow reader after a commit can never be served.
	cache *lru.Cache[string, headState]

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(store CommitStore, cacheSize int) (*Engine, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, headState](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create snapshot cache: %w", err)
	}

	return &Engine{
		store: store,
		cache: cache,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

func (e *Engine) Close() error {
	return e.store.Close()
}

// branchLock returns the mutex serializing writers of one lineage.
func (e *Engine) branchLock(category, branch string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := lineageKey(category, branch)
	lock, ok := e.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[key] = lock
	}
	return lock
}

// dropBranchLock discards the lineage's mutex once its branch is gone, so
// the locks map only ever tracks live lineages. A writer racing the delete
// mints a fresh mutex and is caught by the store's head CAS.
func (e *Engine) dropBranchLock(category, branch string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.locks, lineageKey(category, branch))
}

func lineageKey(category, branch string) string {
	return category + "\x00" + branch
}

// headState is a cached head snapshot together with the hash of the commit
// it was read from.
type headState struct {
	head string
	snap Snapshot
}

// Commit appends a new commit on the branch. The branch (and "main") is
// created implicitly on first use. The snapshot is defensively copied both
// into the store and into the returned commit.
func (e *Engine) Commit(ctx context.Context, category, branch string, snapshot Snapshot, message string, confidence Confidence) (*Commit, error) {
	category, branch, err := validateLineage(category, branch)
	if err != nil {
		return nil, err
	}
	if !confidence.Valid() {
		return nil, ErrInvalidConfidence
	}

	lock := e.branchLock(category, branch)
	lock.Lock()
	defer lock.Unlock()

	return e.commitLocked(ctx, category, branch, snapshot, message, confidence)
}

// commitLocked performs the read-head → diff → append sequence. Callers must
// hold the branch lock.
func (e *Engine) commitLocked(ctx context.Context, category, branch string, snapshot Snapshot, message string, confidence Confidence) (*Commit, error) {
	head, err := e.ensureBranch(ctx, category, branch)
	if err != nil {
		return nil, err
	}

	parent := Snapshot{}
	if head != "" {
		parentCommit, err := e.store.GetCommit(ctx, head)
		if err != nil {
			return nil, fmt.Errorf("resolve head commit: %w", err)
		}
		parent = parentCommit.Snapshot
	}

	commit := &Commit{
		Hash:       newHash(),
		Category:   category,
		Branch:     branch,
		ParentHash: head,
		Delta:      ComputeDelta(parent, snapshot),
		Snapshot:   snapshot.Clone(),
		Message:    message,
		Confidence: confidence,
		CreatedAt:  time.Now().UTC(),
	}

	if err := e.store.AppendCommit(ctx, commit, head); err != nil {
		return nil, fmt.Errorf("append commit: %w", err)
	}

	e.cache.Remove(lineageKey(category, branch))
	return commit.Clone(), nil
}

// ensureBranch resolves the branch head, creating the branch row when the
// lineage is used for the first time.
func (e *Engine) ensureBranch(ctx context.Context, category, branch string) (string, error) {
	b, err := e.store.GetBranch(ctx, category, branch)
	if err == nil {
		return b.Head, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("get branch: %w", err)
	}

	created := &Branch{
		Category:  category,
		Name:      branch,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.CreateBranch(ctx, created); err != nil && !errors.Is(err, ErrBranchExists) {
		return "", fmt.Errorf("create branch: %w", err)
	}
	return "", nil
}

// GetHeadCommit returns the branch's latest commit, or ErrNotFound when the
// branch does not exist or has no commits yet.
func (e *Engine) GetHeadCommit(ctx context.Context, category, branch string) (*Commit, error) {
	category, branch, err := validateLineage(category, branch)
	if err != nil {
		return nil, err
	}

	b, err := e.store.GetBranch(ctx, category, branch)
	if err != nil {
		return nil, err
	}
	if b.Head == "" {
		return nil, ErrNotFound
	}
	return e.store.GetCommit(ctx, b.Head)
}

// GetHeadSnapshot returns an independent deep copy of the branch's current
// state. Repeated calls are deep-equal but never share storage.
func (e *Engine) GetHeadSnapshot(ctx context.Context, category, branch string) (Snapshot, error) {
	category, branch, err := validateLineage(category, branch)
	if err != nil {
		return nil, err
	}

	b, err := e.store.GetBranch(ctx, category, branch)
	if err != nil {
		return nil, err
	}
	if b.Head == "" {
		return nil, ErrNotFound
	}

	key := lineageKey(category, branch)
	if cached, ok := e.cache.Get(key); ok && cached.head == b.Head {
		return cached.snap.Clone(), nil
	}

	commit, err := e.store.GetCommit(ctx, b.Head)
	if err != nil {
		return nil, err
	}

	e.cache.Add(key, headState{head: commit.Hash, snap: commit.Snapshot.Clone()})
	return commit.Snapshot, nil
}

// Log walks the parent chain from the branch head backward, newest first.
// A limit of zero or less returns the full history.
func (e *Engine) Log(ctx context.Context, category, branch string, limit int) ([]LogEntry, error) {
	category, branch, err := validateLineage(category, branch)
	if err != nil {
		return nil, err
	}

	b, err := e.store.GetBranch(ctx, category, branch)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if b.Head == "" {
		return nil, nil
	}

	chain, err := e.store.WalkParents(ctx, b.Head, limit)
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}

	entries := make([]LogEntry, len(chain))
	for i, c := range chain {
		entries[i] = LogEntry{
			Hash:         c.Hash,
			ParentHash:   c.ParentHash,
			Message:      c.Message,
			Confidence:   c.Confidence,
			CreatedAt:    c.CreatedAt,
			DeltaAdded:   c.Delta.AddedCount(),
			DeltaRemoved: c.Delta.RemovedCount(),
		}
	}
	return entries, nil
}

// GetCommit looks up a commit by hash within one category. Hashes from a
// different category resolve to ErrNotFound.
func (e *Engine) GetCommit(ctx context.Context, category, hash string) (*Commit, error) {
	category, err := NewCategory(category)
	if err != nil {
		return nil, err
	}

	commit, err := e.store.GetCommit(ctx, hash)
	if err != nil {
		return nil, err
	}
	if commit.Category != category {
		return nil, ErrNotFound
	}
	return commit, nil
}

// Rollback appends a new forward commit whose snapshot equals the target
// commit's stored snapshot. History is never rewritten: the rollback is
// itself a commit, auditable in the log and reversible by rolling forward.
// Returns ErrNotFound when the hash is unknown or belongs to a different
// category.
func (e *Engine) Rollback(ctx context.Context, category, targetHash, branch string) (*Commit, error) {
	category, branch, err := validateLineage(category, branch)
	if err != nil {
		return nil, err
	}

	// A hash from another category must never rehydrate foreign data;
	// GetCommit enforces the category guard.
	target, err := e.GetCommit(ctx, category, targetHash)
	if err != nil {
		return nil, err
	}

	lock := e.branchLock(category, branch)
	lock.Lock()
	defer lock.Unlock()

	message := fmt.Sprintf("Rollback to %s", targetHash)
	return e.commitLocked(ctx, category, branch, target.Snapshot, message, ConfidenceHigh)
}

// MigrateFromLegacy commits a legacy flat object as a snapshot. It does not
// check for existing history; callers wanting migrate-only-if-empty must
// consult GetHeadSnapshot first.
func (e *Engine) MigrateFromLegacy(ctx context.Context, category string, legacy map[string]any) (*Commit, error) {
	snapshot, err := SnapshotFromAny(legacy)
	if err != nil {
		return nil, fmt.Errorf("convert legacy data: %w", err)
	}
	return e.Commit(ctx, category, DefaultBranch, snapshot, "Migrated from legacy data", ConfidenceMedium)
}

func validateLineage(category, branch string) (string, string, error) {
	category, err := NewCategory(category)
	if err != nil {
		return "", "", err
	}
	if branch == "" {
		branch = DefaultBranch
	}
	branch, err = NewBranchName(branch)
	if err != nil {
		return "", "", err
	}
	return category, branch, nil
}

func newHash() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
