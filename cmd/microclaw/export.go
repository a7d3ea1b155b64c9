package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wubox3/microclaw/internal"
)

func NewExportCmd(svc func() *internal.ExportService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <category> <dir>",
		Short: "Export a category's history as a git repository",
		Long:  `Materialize the category's main-branch history under dir as a real git repository: one git commit per context commit, snapshot serialized as YAML.`,
		Args:  cobra.ExactArgs(2),
		RunE:  makeExportRunner(svc),
	}

	return cmd
}

func makeExportRunner(svc func() *internal.ExportService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")

		count, err := svc().Export(cmd.Context(), args[0], args[1], scopeHint)
		if errors.Is(err, internal.ErrNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "Category %s has no history to export\n", args[0])
			return nil
		}
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d commits to %s\n", count, args[1])
		return nil
	}
}
