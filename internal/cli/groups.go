package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"randalloc/domain/allocation"
	"randalloc/internal/errors"
)

func newGroupCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage the group list",
	}

	cmd.AddCommand(
		newGroupAddCmd(s),
		newGroupRemoveCmd(s),
		newGroupListCmd(s),
		newGroupClearCmd(s),
		newGroupImportCmd(s),
	)
	return cmd
}

func newGroupAddCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "add [name] [sample-size]",
		Short: "Add a group with its target sample size",
		Long: `Add a group to the end of the list. Names must be unique and sizes positive integers.

Example: randalloc group add Control 25`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := allocation.ParseGroupSize(args[1])
			if err != nil {
				return errors.ValidationError(err)
			}
			group, err := s.c.Groups.AddGroup(cmd.Context(), args[0], size)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added group %q with sample size %d\n", group.Name, group.Size)
			return nil
		},
	}
}

func newGroupRemoveCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [number]",
		Short: "Remove a group by its number in 'group list'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil || number < 1 {
				return errors.ValidationError(fmt.Errorf("group number must be a positive integer, got %q", args[0]))
			}
			removed, err := s.c.Groups.RemoveGroup(cmd.Context(), number-1)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed group %q\n", removed.Name)
			return nil
		},
	}
}

func newGroupListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the group list in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := s.c.Groups.ListGroups(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(out, "No groups defined")
				return nil
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "#\tGroup Name\tSample Size")
			for i, g := range groups {
				fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, g.Name, g.Size)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Total participants: %d\n", allocation.TotalSize(groups))
			return nil
		},
	}
}

func newGroupClearCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.c.Groups.ClearGroups(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Group list cleared")
			return nil
		},
	}
}

func newGroupImportCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Append groups from an xlsx or csv file",
		Long: `Append groups from a sheet with "Group Name" and "Sample Size" columns. Workbooks use
their Groups sheet when present (so a previous report can be re-imported), otherwise the first
sheet. No group is added unless every row is valid.

Example: randalloc group import groups.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := s.c.Groups.ImportGroups(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d groups (%d participants)\n", len(groups), allocation.TotalSize(groups))
			return nil
		},
	}
}
