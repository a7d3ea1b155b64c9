package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wubox3/microclaw/internal"
)

func NewMigrateCmd(hist func() *internal.HistoryService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate <category>",
		Short: "Import a legacy flat object",
		Long:  `Commit a legacy flat JSON object as the category's snapshot. With --if-empty the import is skipped when the category already has history.`,
		Args:  cobra.ExactArgs(1),
		RunE:  makeMigrateRunner(hist),
	}

	cmd.Flags().StringP("file", "f", "-", "JSON file with the legacy object, or - for stdin")
	cmd.Flags().Bool("if-empty", false, "Skip when the category already has history")
	return cmd
}

func makeMigrateRunner(hist func() *internal.HistoryService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		ifEmpty, _ := cmd.Flags().GetBool("if-empty")
		scopeHint, _ := cmd.Flags().GetString("scope")

		if ifEmpty {
			_, err := hist().HeadSnapshot(cmd.Context(), args[0], internal.DefaultBranch, scopeHint)
			if err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Category %s already has history, skipping\n", args[0])
				return nil
			}
			if !errors.Is(err, internal.ErrNotFound) {
				return fmt.Errorf("check history: %w", err)
			}
		}

		fields, err := readSnapshotFields(cmd.InOrStdin(), file)
		if err != nil {
			return err
		}

		commit, err := hist().Migrate(cmd.Context(), args[0], fields, scopeHint)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", shortHash(commit.Hash), commit.Message)
		return nil
	}
}
