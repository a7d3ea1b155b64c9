package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/wubox3/microclaw/internal"
)

func NewWatchCmd(hist func() *internal.HistoryService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <category> <dir>",
		Short: "Watch a drop directory and commit snapshots",
		Long:  `Watch dir for *.json snapshot files written by extractors and commit each one to the category. Files are left in place after committing.`,
		Args:  cobra.ExactArgs(2),
		RunE:  makeWatchRunner(hist),
	}

	cmd.Flags().StringP("branch", "b", internal.DefaultBranch, "Target branch")
	cmd.Flags().StringP("confidence", "c", string(internal.ConfidenceMedium), "Confidence for ingested snapshots")
	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func makeWatchRunner(hist func() *internal.HistoryService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		confidence, _ := cmd.Flags().GetString("confidence")
		debounce, _ := cmd.Flags().GetDuration("debounce")
		scopeHint, _ := cmd.Flags().GetString("scope")

		category, dir := args[0], args[1]

		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("not a directory: %s", dir)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for snapshots...\n", dir)

		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}
		pending := make(map[string]bool)

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if shouldIgnoreEvent(event) {
					continue
				}
				if len(pending) == 0 {
					timer.Reset(debounce)
				}
				pending[event.Name] = true
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
			case <-timer.C:
				for path := range pending {
					ingestSnapshotFile(cmd, hist(), category, branch, path,
						internal.Confidence(strings.ToUpper(confidence)), scopeHint)
				}
				pending = make(map[string]bool)
			}
		}
	}
}

func shouldIgnoreEvent(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != ".json" {
		return true
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) == 0
}

func ingestSnapshotFile(cmd *cobra.Command, hist *internal.HistoryService, category, branch, path string, confidence internal.Confidence, scopeHint string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "read %s: %v\n", path, err)
		return
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "parse %s: %v\n", path, err)
		return
	}

	message := fmt.Sprintf("Ingest %s", filepath.Base(path))
	commit, err := hist.Commit(cmd.Context(), category, branch, fields, message, confidence, scopeHint)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "commit %s: %v\n", path, err)
		return
	}

	fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", shortHash(commit.Hash), commit.Message)
}
