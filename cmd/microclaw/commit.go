package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wubox3/microclaw/internal"
)

func NewCommitCmd(hist func() *internal.HistoryService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit <category>",
		Short: "Commit a snapshot",
		Long:  `Commit a full snapshot for a category, read as JSON from --file or stdin. The delta against the branch head is computed automatically.`,
		Args:  cobra.ExactArgs(1),
		RunE:  makeCommitRunner(hist),
	}

	cmd.Flags().StringP("branch", "b", internal.DefaultBranch, "Target branch")
	cmd.Flags().StringP("file", "f", "-", "JSON snapshot file, or - for stdin")
	cmd.Flags().StringP("message", "m", "", "Commit message")
	cmd.Flags().StringP("confidence", "c", string(internal.ConfidenceMedium), "Confidence (HIGH|MEDIUM|LOW)")
	return cmd
}

func makeCommitRunner(hist func() *internal.HistoryService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		file, _ := cmd.Flags().GetString("file")
		message, _ := cmd.Flags().GetString("message")
		confidence, _ := cmd.Flags().GetString("confidence")
		scopeHint, _ := cmd.Flags().GetString("scope")

		if message == "" {
			return fmt.Errorf("commit message required")
		}

		fields, err := readSnapshotFields(cmd.InOrStdin(), file)
		if err != nil {
			return err
		}

		commit, err := hist().Commit(cmd.Context(), args[0], branch, fields, message,
			internal.Confidence(strings.ToUpper(confidence)), scopeHint)
		if err != nil {
			return fmt.Errorf("commit: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", shortHash(commit.Hash), commit.Message)
		return nil
	}
}

func readSnapshotFields(stdin io.Reader, file string) (map[string]any, error) {
	var data []byte
	var err error

	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return fields, nil
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
