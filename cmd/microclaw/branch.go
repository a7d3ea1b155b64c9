package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wubox3/microclaw/internal"
)

func NewBranchCmd(svc func() *internal.BranchService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch <category> [name]",
		Short: "List, create, or delete branches",
		Long:  `List a category's branches, fork a new branch from an existing one, or delete a branch and the commits created on it.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE:  makeBranchRunner(svc),
	}

	cmd.Flags().String("from", internal.DefaultBranch, "Source branch to fork from")
	cmd.Flags().BoolP("delete", "d", false, "Delete branch")
	return cmd
}

func makeBranchRunner(svc func() *internal.BranchService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")
		from, _ := cmd.Flags().GetString("from")
		del, _ := cmd.Flags().GetBool("delete")

		category := args[0]
		if len(args) == 1 {
			return listBranches(cmd, svc(), category, scopeHint)
		}

		name := args[1]
		if del {
			return deleteBranch(cmd, svc(), category, name, scopeHint)
		}

		return createBranch(cmd, svc(), category, name, from, scopeHint)
	}
}

func listBranches(cmd *cobra.Command, svc *internal.BranchService, category, scopeHint string) error {
	branches, err := svc.List(cmd.Context(), category, scopeHint)
	if err != nil {
		return fmt.Errorf("list branches: %w", err)
	}

	for _, b := range branches {
		head := "(no commits)"
		if b.Head != "" {
			head = shortHash(b.Head)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d commits\n", b.Name, head, b.CommitCount)
	}
	return nil
}

func deleteBranch(cmd *cobra.Command, svc *internal.BranchService, category, name, scopeHint string) error {
	deleted, err := svc.Delete(cmd.Context(), category, name, scopeHint)
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if !deleted {
		fmt.Fprintf(cmd.OutOrStdout(), "Branch %s not deleted\n", name)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted branch %s\n", name)
	return nil
}

func createBranch(cmd *cobra.Command, svc *internal.BranchService, category, name, from, scopeHint string) error {
	branch, err := svc.Create(cmd.Context(), category, name, from, scopeHint)
	if err != nil {
		return fmt.Errorf("create branch: %w", err)
	}

	if branch.Head == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Created branch %s (no commits)\n", branch.Name)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created branch %s at %s\n", branch.Name, shortHash(branch.Head))
	return nil
}
