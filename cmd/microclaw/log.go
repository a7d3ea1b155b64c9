package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wubox3/microclaw/internal"
)

func NewLogCmd(hist func() *internal.HistoryService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <category>",
		Short: "Show commit history",
		Long:  `Show a category branch's commit history, newest first.`,
		Args:  cobra.ExactArgs(1),
		RunE:  makeLogRunner(hist),
	}

	cmd.Flags().StringP("branch", "b", internal.DefaultBranch, "Target branch")
	cmd.Flags().IntP("number", "n", 10, "Limit number of commits")
	cmd.Flags().Bool("oneline", false, "Show each commit on one line")
	return cmd
}

func makeLogRunner(hist func() *internal.HistoryService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		limit, _ := cmd.Flags().GetInt("number")
		oneline, _ := cmd.Flags().GetBool("oneline")
		asJSON, _ := cmd.Flags().GetBool("json")
		scopeHint, _ := cmd.Flags().GetString("scope")

		entries, err := hist().Log(cmd.Context(), args[0], branch, limit, scopeHint)
		if err != nil {
			return fmt.Errorf("get log: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		for _, e := range entries {
			if oneline {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (+%d/-%d)\n",
					shortHash(e.Hash), e.Message, e.DeltaAdded, e.DeltaRemoved)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "commit %s\n", e.Hash)
			fmt.Fprintf(cmd.OutOrStdout(), "Confidence: %s\n", e.Confidence)
			fmt.Fprintf(cmd.OutOrStdout(), "Date:   %s\n", e.CreatedAt.Format("Mon Jan 2 15:04:05 2006 -0700"))
			fmt.Fprintf(cmd.OutOrStdout(), "Delta:  +%d/-%d\n\n", e.DeltaAdded, e.DeltaRemoved)
			fmt.Fprintf(cmd.OutOrStdout(), "    %s\n\n", e.Message)
		}
		return nil
	}
}
