package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wubox3/microclaw/internal"
)

func NewDiffCmd(hist func() *internal.HistoryService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <category> <hashA> <hashB>",
		Short: "Show changes between two commits",
		Long:  `Render a field-by-field diff between two commits of the same category.`,
		Args:  cobra.ExactArgs(3),
		RunE:  makeDiffRunner(hist),
	}

	return cmd
}

func makeDiffRunner(hist func() *internal.HistoryService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")

		diff, err := hist().Diff(cmd.Context(), args[0], args[1], args[2], scopeHint)
		if err != nil {
			return fmt.Errorf("get diff: %w", err)
		}

		if diff == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
			return nil
		}

		fmt.Fprint(cmd.OutOrStdout(), diff)
		return nil
	}
}
