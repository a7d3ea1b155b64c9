package v1

import (
	"context"
	"errors"
	"fmt"

	"github.com/wubox3/microclaw/internal"
)

// ErrNotFound is returned for unknown commits, branches, and categories
// with no history yet.
var ErrNotFound = internal.ErrNotFound

// Client provides programmatic access to the context commit engine.
type Client struct {
	engine *internal.Engine
}

// New creates a Client. By default it opens the SQLite store of the
// resolved scope; see the options for overrides.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var store internal.CommitStore
	var err error
	switch {
	case cfg.inMemory:
		store = internal.NewMemoryStore()
	case cfg.dbPath != "":
		store, err = internal.NewSQLiteStore(cfg.dbPath)
	default:
		resolver := internal.NewScopeResolver()
		scope := resolver.Resolve(cfg.scope)
		fileCfg, loadErr := internal.LoadConfig(scope)
		if loadErr != nil {
			return nil, loadErr
		}
		store, err = internal.OpenStore(scope, fileCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	engine, err := internal.NewEngine(store, cfg.cacheSize)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Client{engine: engine}, nil
}

func (c *Client) Close() error {
	return c.engine.Close()
}

// Commit appends a snapshot to a category's branch and returns the new
// commit. Branch may be empty for main.
func (c *Client) Commit(ctx context.Context, category, branch string, snapshot map[string]any, message, confidence string) (*Commit, error) {
	snap, err := internal.SnapshotFromAny(snapshot)
	if err != nil {
		return nil, err
	}

	commit, err := c.engine.Commit(ctx, category, branch, snap, message, internal.Confidence(confidence))
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return toCommit(commit), nil
}

// Head returns an independent copy of the branch's current snapshot, or
// nil when the category has no history yet.
func (c *Client) Head(ctx context.Context, category, branch string) (map[string]any, error) {
	snap, err := c.engine.GetHeadSnapshot(ctx, category, branch)
	if errors.Is(err, internal.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("head: %w", err)
	}
	return snap.ToAny(), nil
}

// HeadCommit returns the branch's latest commit, or nil without history.
func (c *Client) HeadCommit(ctx context.Context, category, branch string) (*Commit, error) {
	commit, err := c.engine.GetHeadCommit(ctx, category, branch)
	if errors.Is(err, internal.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("head commit: %w", err)
	}
	return toCommit(commit), nil
}

// Log lists the branch's history, newest first. A limit of zero or less
// returns everything.
func (c *Client) Log(ctx context.Context, category, branch string, limit int) ([]LogEntry, error) {
	entries, err := c.engine.Log(ctx, category, branch, limit)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}

	out := make([]LogEntry, len(entries))
	for i, e := range entries {
		out[i] = LogEntry{
			Hash:         e.Hash,
			ParentHash:   e.ParentHash,
			Message:      e.Message,
			Confidence:   string(e.Confidence),
			CreatedAt:    e.CreatedAt,
			DeltaAdded:   e.DeltaAdded,
			DeltaRemoved: e.DeltaRemoved,
		}
	}
	return out, nil
}

// CreateBranch forks a new branch from an existing one (default main).
func (c *Client) CreateBranch(ctx context.Context, category, name, from string) (*Branch, error) {
	branch, err := c.engine.CreateBranch(ctx, category, name, from)
	if err != nil {
		return nil, fmt.Errorf("create branch: %w", err)
	}
	return &Branch{Name: branch.Name, Head: branch.Head, CreatedAt: branch.CreatedAt}, nil
}

// Branches lists a category's branches with commit counts.
func (c *Client) Branches(ctx context.Context, category string) ([]Branch, error) {
	infos, err := c.engine.ListBranches(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	out := make([]Branch, len(infos))
	for i, b := range infos {
		out[i] = Branch{
			Name:        b.Name,
			Head:        b.Head,
			CommitCount: b.CommitCount,
			CreatedAt:   b.CreatedAt,
		}
	}
	return out, nil
}

// DeleteBranch removes a branch and the commits created on it. Returns
// false for main or an unknown branch.
func (c *Client) DeleteBranch(ctx context.Context, category, name string) (bool, error) {
	return c.engine.DeleteBranch(ctx, category, name)
}

// SwitchBranch looks up a branch by name, or returns nil when unknown.
func (c *Client) SwitchBranch(ctx context.Context, category, name string) (*Branch, error) {
	branch, err := c.engine.SwitchBranch(ctx, category, name)
	if errors.Is(err, internal.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("switch branch: %w", err)
	}
	return &Branch{Name: branch.Name, Head: branch.Head, CreatedAt: branch.CreatedAt}, nil
}

// Merge reconciles the source branch into the target branch.
func (c *Client) Merge(ctx context.Context, category, source, target string) (*MergeResult, error) {
	result, err := c.engine.Merge(ctx, category, source, target)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	out := &MergeResult{Success: result.Success, CommitHash: result.CommitHash}
	for _, conflict := range result.Conflicts {
		out.Conflicts = append(out.Conflicts, Conflict{
			Field:  conflict.Field,
			Source: valueToAny(conflict.Source),
			Target: valueToAny(conflict.Target),
		})
	}
	return out, nil
}

// Rollback re-commits a historical snapshot as the branch's new head, or
// returns nil when the hash is unknown to this category.
func (c *Client) Rollback(ctx context.Context, category, targetHash, branch string) (*Commit, error) {
	commit, err := c.engine.Rollback(ctx, category, targetHash, branch)
	if errors.Is(err, internal.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rollback: %w", err)
	}
	return toCommit(commit), nil
}

// Migrate commits a legacy flat object as the category's snapshot on main.
func (c *Client) Migrate(ctx context.Context, category string, legacy map[string]any) (*Commit, error) {
	commit, err := c.engine.MigrateFromLegacy(ctx, category, legacy)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return toCommit(commit), nil
}

func toCommit(c *internal.Commit) *Commit {
	return &Commit{
		Hash:       c.Hash,
		Category:   c.Category,
		Branch:     c.Branch,
		ParentHash: c.ParentHash,
		Snapshot:   c.Snapshot.ToAny(),
		Message:    c.Message,
		Confidence: string(c.Confidence),
		CreatedAt:  c.CreatedAt,
	}
}

func valueToAny(v internal.Value) any {
	switch val := v.(type) {
	case internal.ListValue:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = item
		}
		return items
	case internal.ScalarValue:
		return val.Raw
	}
	return nil
}
