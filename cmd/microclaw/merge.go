package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wubox3/microclaw/internal"
)

func NewMergeCmd(svc func() *internal.BranchService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <category> <source> [target]",
		Short: "Merge one branch into another",
		Long:  `Reconcile the source branch's head into the target branch (default main). List fields are unioned; differing scalars are reported as conflicts with the target's value winning.`,
		Args:  cobra.RangeArgs(2, 3),
		RunE:  makeMergeRunner(svc),
	}

	return cmd
}

func makeMergeRunner(svc func() *internal.BranchService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")

		target := internal.DefaultBranch
		if len(args) == 3 {
			target = args[2]
		}

		result, err := svc().Merge(cmd.Context(), args[0], args[1], target, scopeHint)
		if err != nil {
			return fmt.Errorf("merge: %w", err)
		}

		if !result.Success {
			fmt.Fprintf(cmd.OutOrStdout(), "Nothing to merge: branch %s has no commits\n", args[1])
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Merged %s into %s at %s\n", args[1], target, shortHash(result.CommitHash))
		for _, c := range result.Conflicts {
			fmt.Fprintf(cmd.OutOrStdout(), "  conflict on %s: kept target value\n", c.Field)
		}
		return nil
	}
}
