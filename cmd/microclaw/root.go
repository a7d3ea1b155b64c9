package main

import (
	"github.com/spf13/cobra"
	"github.com/wubox3/microclaw/internal"
)

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "microclaw",
		Short:         "Version-controlled context store for AI assistants",
		Long:          `Commit, branch, merge, and roll back structured knowledge snapshots, each category carrying its own independent history.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	if a != nil {
		addSubcommands(rootCmd, a)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("scope", "", "Target scope (global|project)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

func addSubcommands(root *cobra.Command, a *app) {
	hist := func() *internal.HistoryService { return a.historySvc }
	branch := func() *internal.BranchService { return a.branchSvc }
	export := func() *internal.ExportService { return a.exportSvc }

	root.AddCommand(
		NewInitCmd(),
		NewCommitCmd(hist),
		NewHeadCmd(hist),
		NewLogCmd(hist),
		NewDiffCmd(hist),
		NewBranchCmd(branch),
		NewSwitchCmd(branch),
		NewMergeCmd(branch),
		NewRollbackCmd(hist),
		NewMigrateCmd(hist),
		NewExportCmd(export),
		NewWatchCmd(hist),
	)
}
