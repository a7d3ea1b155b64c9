package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wubox3/microclaw/internal"
)

func NewHeadCmd(hist func() *internal.HistoryService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "head <category>",
		Short: "Show the branch head snapshot",
		Long:  `Print the current head snapshot of a category's branch, or the full head commit with --commit.`,
		Args:  cobra.ExactArgs(1),
		RunE:  makeHeadRunner(hist),
	}

	cmd.Flags().StringP("branch", "b", internal.DefaultBranch, "Target branch")
	cmd.Flags().Bool("commit", false, "Show commit metadata instead of the snapshot")
	return cmd
}

func makeHeadRunner(hist func() *internal.HistoryService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		showCommit, _ := cmd.Flags().GetBool("commit")
		asJSON, _ := cmd.Flags().GetBool("json")
		scopeHint, _ := cmd.Flags().GetString("scope")

		out := cmd.OutOrStdout()

		if showCommit {
			commit, err := hist().HeadCommit(cmd.Context(), args[0], branch, scopeHint)
			if errors.Is(err, internal.ErrNotFound) {
				fmt.Fprintln(out, "No history.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("get head commit: %w", err)
			}
			if asJSON {
				return encodeIndented(out, commit)
			}
			fmt.Fprintf(out, "commit %s\n", commit.Hash)
			fmt.Fprintf(out, "Confidence: %s\n", commit.Confidence)
			fmt.Fprintf(out, "Date:   %s\n\n", commit.CreatedAt.Format("Mon Jan 2 15:04:05 2006 -0700"))
			fmt.Fprintf(out, "    %s\n\n", commit.Message)
			printSnapshot(out, commit.Snapshot)
			return nil
		}

		snapshot, err := hist().HeadSnapshot(cmd.Context(), args[0], branch, scopeHint)
		if errors.Is(err, internal.ErrNotFound) {
			fmt.Fprintln(out, "No history.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("get head snapshot: %w", err)
		}
		if asJSON {
			return encodeIndented(out, snapshot)
		}
		printSnapshot(out, snapshot)
		return nil
	}
}

func encodeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSnapshot(w io.Writer, snapshot internal.Snapshot) {
	for _, name := range internal.SortedFieldNames(snapshot) {
		switch v := snapshot[name].(type) {
		case internal.ListValue:
			fmt.Fprintf(w, "%s: %s\n", name, strings.Join(v, ", "))
		case internal.ScalarValue:
			fmt.Fprintf(w, "%s: %s\n", name, internal.FormatScalar(v))
		}
	}
}
