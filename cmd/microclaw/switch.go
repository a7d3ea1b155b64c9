package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wubox3/microclaw/internal"
)

func NewSwitchCmd(svc func() *internal.BranchService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "switch <category> <branch>",
		Short: "Look up a branch",
		Long:  `Look up a branch by name and print its head. The stored state is not modified.`,
		Args:  cobra.ExactArgs(2),
		RunE:  makeSwitchRunner(svc),
	}

	return cmd
}

func makeSwitchRunner(svc func() *internal.BranchService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")

		branch, err := svc().Switch(cmd.Context(), args[0], args[1], scopeHint)
		if errors.Is(err, internal.ErrNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "Branch %s not found\n", args[1])
			return nil
		}
		if err != nil {
			return fmt.Errorf("switch branch: %w", err)
		}

		head := "(no commits)"
		if branch.Head != "" {
			head = branch.Head
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", branch.Name, head)
		return nil
	}
}
