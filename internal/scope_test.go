package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGlobalScope(t *testing.T) {
	resolver := &ScopeResolver{homeDir: "/home/test"}

	scope := resolver.Global()
	if scope.Type != ScopeGlobal {
		t.Errorf("type = %q, want %q", scope.Type, ScopeGlobal)
	}
	if scope.DataPath != "/home/test/.microclaw" {
		t.Errorf("data path = %q", scope.DataPath)
	}
	if scope.ConfigPath() != "/home/test/.microclaw/config.yaml" {
		t.Errorf("config path = %q", scope.ConfigPath())
	}
	if scope.DBPath() != "/home/test/.microclaw/context.db" {
		t.Errorf("db path = %q", scope.DBPath())
	}
}

func TestFindProjectScope(t *testing.T) {
	tmpDir := t.TempDir()
	dataPath := filepath.Join(tmpDir, ".microclaw")
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	nested := filepath.Join(tmpDir, "sub", "deeper")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	resolver := NewScopeResolver()

	scope, ok := resolver.findProjectScope(nested)
	if !ok {
		t.Fatal("project scope not found from nested directory")
	}
	if scope.Type != ScopeProject {
		t.Errorf("type = %q, want %q", scope.Type, ScopeProject)
	}
	if scope.Path != tmpDir {
		t.Errorf("path = %q, want %q", scope.Path, tmpDir)
	}
	if scope.DataPath != dataPath {
		t.Errorf("data path = %q, want %q", scope.DataPath, dataPath)
	}
}

func TestFindProjectScopeMissing(t *testing.T) {
	resolver := NewScopeResolver()

	if _, ok := resolver.findProjectScope(t.TempDir()); ok {
		t.Error("found a project scope where none exists")
	}
}

func TestResolveExplicitGlobal(t *testing.T) {
	resolver := &ScopeResolver{homeDir: "/home/test"}

	scope := resolver.Resolve("global")
	if scope.Type != ScopeGlobal {
		t.Errorf("type = %q, want %q", scope.Type, ScopeGlobal)
	}
}
