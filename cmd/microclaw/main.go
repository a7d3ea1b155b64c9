package main

import (
	"context"
	"os"
	"sync"

	"github.com/charmbracelet/fang"
	"github.com/wubox3/microclaw/internal"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx := context.Background()

	app := newApp()
	rootCmd := NewRootCmd(version, app)
	if err := fang.Execute(ctx, rootCmd); err != nil {
		os.Exit(1)
	}
}

type app struct {
	resolver   *internal.ScopeResolver
	historySvc *internal.HistoryService
	branchSvc  *internal.BranchService
	exportSvc  *internal.ExportService

	mu      sync.Mutex
	engines map[string]*internal.Engine
}

func newApp() *app {
	a := &app{
		resolver: internal.NewScopeResolver(),
		engines:  make(map[string]*internal.Engine),
	}

	engineFor := a.engineFor
	a.historySvc = internal.NewHistoryService(a.resolver, engineFor)
	a.branchSvc = internal.NewBranchService(a.resolver, engineFor)
	a.exportSvc = internal.NewExportService(a.resolver, engineFor)

	return a
}

// engineFor opens one engine per scope for the lifetime of the process.
func (a *app) engineFor(scope internal.Scope) (*internal.Engine, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if engine, ok := a.engines[scope.DataPath]; ok {
		return engine, nil
	}

	cfg, err := internal.LoadConfig(scope)
	if err != nil {
		return nil, err
	}

	store, err := internal.OpenStore(scope, cfg)
	if err != nil {
		return nil, err
	}

	engine, err := internal.NewEngine(store, cfg.Cache.Size)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a.engines[scope.DataPath] = engine
	return engine, nil
}
