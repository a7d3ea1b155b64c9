package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wubox3/microclaw/internal"
)

func NewRollbackCmd(hist func() *internal.HistoryService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollback <category> <hash>",
		Short: "Roll a branch back to a previous commit",
		Long:  `Append a new commit whose snapshot equals the target commit's. History is preserved; the rollback itself appears in the log.`,
		Args:  cobra.ExactArgs(2),
		RunE:  makeRollbackRunner(hist),
	}

	cmd.Flags().StringP("branch", "b", internal.DefaultBranch, "Target branch")
	return cmd
}

func makeRollbackRunner(hist func() *internal.HistoryService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		scopeHint, _ := cmd.Flags().GetString("scope")

		commit, err := hist().Rollback(cmd.Context(), args[0], args[1], branch, scopeHint)
		if errors.Is(err, internal.ErrNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "Commit %s not found in category %s\n", args[1], args[0])
			return nil
		}
		if err != nil {
			return fmt.Errorf("rollback: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", shortHash(commit.Hash), commit.Message)
		return nil
	}
}
