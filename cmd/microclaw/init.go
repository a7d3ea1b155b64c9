package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/wubox3/microclaw/internal"
)

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a context store",
		Long:  `Create the .microclaw directory, default config, and empty database in the current directory (or the home directory with --scope global).`,
		RunE:  runInit,
	}

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	scopeHint, _ := cmd.Flags().GetString("scope")

	resolver := internal.NewScopeResolver()

	var scope internal.Scope
	if scopeHint == "global" {
		scope = resolver.Global()
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		scope = internal.Scope{
			Type:     internal.ScopeProject,
			Path:     cwd,
			DataPath: filepath.Join(cwd, ".microclaw"),
		}
	}

	if err := internal.InitWorkspace(scope); err != nil {
		return fmt.Errorf("init workspace: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized context store in %s\n", scope.DataPath)
	return nil
}
