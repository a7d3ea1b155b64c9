package internal

import (
	"context"
	"fmt"
)

// HistoryService handles commit and history operations for the CLI.
type HistoryService struct {
	resolver  *ScopeResolver
	engineFor func(Scope) (*Engine, error)
}

func NewHistoryService(
	resolver *ScopeResolver,
	engineFor func(Scope) (*Engine, error),
) *HistoryService {
	return &HistoryService{
		resolver:  resolver,
		engineFor: engineFor,
	}
}

func (s *HistoryService) Commit(ctx context.Context, category, branch string, fields map[string]any, message string, confidence Confidence, scopeHint string) (*Commit, error) {
	snapshot, err := SnapshotFromAny(fields)
	if err != nil {
		return nil, err
	}

	engine, err := s.engineFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, fmt.Errorf("get engine: %w", err)
	}

	return engine.Commit(ctx, category, branch, snapshot, message, confidence)
}

func (s *HistoryService) HeadCommit(ctx context.Context, category, branch, scopeHint string) (*Commit, error) {
	engine, err := s.engineFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, fmt.Errorf("get engine: %w", err)
	}

	return engine.GetHeadCommit(ctx, category, branch)
}

func (s *HistoryService) HeadSnapshot(ctx context.Context, category, branch, scopeHint string) (Snapshot, error) {
	engine, err := s.engineFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, fmt.Errorf("get engine: %w", err)
	}

	return engine.GetHeadSnapshot(ctx, category, branch)
}

func (s *HistoryService) Log(ctx context.Context, category, branch string, limit int, scopeHint string) ([]LogEntry, error) {
	engine, err := s.engineFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, fmt.Errorf("get engine: %w", err)
	}

	return engine.Log(ctx, category, branch, limit)
}

func (s *HistoryService) Rollback(ctx context.Context, category, targetHash, branch, scopeHint string) (*Commit, error) {
	engine, err := s.engineFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, fmt.Errorf("get engine: %w", err)
	}

	return engine.Rollback(ctx, category, targetHash, branch)
}

func (s *HistoryService) Migrate(ctx context.Context, category string, legacy map[string]any, scopeHint string) (*Commit, error) {
	engine, err := s.engineFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, fmt.Errorf("get engine: %w", err)
	}

	return engine.MigrateFromLegacy(ctx, category, legacy)
}

func (s *HistoryService) Diff(ctx context.Context, category, hashA, hashB, scopeHint string) (string, error) {
	engine, err := s.engineFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return "", fmt.Errorf("get engine: %w", err)
	}

	a, err := engine.GetCommit(ctx, category, hashA)
	if err != nil {
		return "", fmt.Errorf("get commit %s: %w", hashA, err)
	}
	b, err := engine.GetCommit(ctx, category, hashB)
	if err != nil {
		return "", fmt.Errorf("get commit %s: %w", hashB, err)
	}

	return RenderSnapshotDiff(a.Snapshot, b.Snapshot), nil
}

// BranchService handles branch directory and merge operations for the CLI.
type BranchService struct {
	resolver  *ScopeResolver
	engineFor func(Scope) (*Engine, error)
}

func NewBranchService(
	resolver *ScopeResolver,
	engineFor func(Scope) (*Engine, error),
) *BranchService {
	return &BranchService{
		resolver:  resolver,
		engineFor: engineFor,
	}
}

func (s *BranchService) List(ctx context.Context, category, scopeHint string) ([]BranchInfo, error) {
	engine, err := s.engineFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, fmt.Errorf("get engine: %w", err)
	}

	return engine.ListBranches(ctx, category)
}

func (s *BranchService) Create(ctx context.Context, category, name, from, scopeHint string) (*Branch, error) {
	engine, err := s.engineFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, fmt.Errorf("get engine: %w", err)
	}

	return engine.CreateBranch(ctx, category, name, from)
}

func (s *BranchService) Delete(ctx context.Context, category, name, scopeHint string) (bool, error) {
	engine, err := s.engineFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return false, fmt.Errorf("get engine: %w", err)
	}

	return engine.DeleteBranch(ctx, category, name)
}

func (s *BranchService) Switch(ctx context.Context, category, name, scopeHint string) (*Branch, error) {
	engine, err := s.engineFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, fmt.Errorf("get engine: %w", err)
	}

	return engine.SwitchBranch(ctx, category, name)
}

func (s *BranchService) Merge(ctx context.Context, category, source, target, scopeHint string) (*MergeResult, error) {
	engine, err := s.engineFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, fmt.Errorf("get engine: %w", err)
	}

	return engine.Merge(ctx, category, source, target)
}

// ExportService materializes category histories as git repositories.
type ExportService struct {
	resolver  *ScopeResolver
	engineFor func(Scope) (*Engine, error)
}

func NewExportService(
	resolver *ScopeResolver,
	engineFor func(Scope) (*Engine, error),
) *ExportService {
	return &ExportService{
		resolver:  resolver,
		engineFor: engineFor,
	}
}

func (s *ExportService) Export(ctx context.Context, category, dir, scopeHint string) (int, error) {
	engine, err := s.engineFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return 0, fmt.Errorf("get engine: %w", err)
	}

	return ExportCategory(ctx, engine, category, dir)
}
