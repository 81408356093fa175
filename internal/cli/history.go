package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(s *session) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List written reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := s.c.Randomization.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "Run ID\tCreated\tSeed\tParticipants\tGroups\tReport")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
					r.ID, r.CreatedAt.Format(time.DateTime), r.SeedValue(), r.Participants, r.Groups, r.ReportPath)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Number of runs to show (default: RANDALLOC_HISTORY_LIMIT)")
	cmd.AddCommand(newHistoryShowCmd(s))
	return cmd
}

func newHistoryShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := s.c.Randomization.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run ID: %s\n", r.ID)
			fmt.Fprintf(out, "Created: %s\n", r.CreatedAt.Format(time.DateTime))
			fmt.Fprintf(out, "Random seed: %s\n", r.SeedValue())
			fmt.Fprintf(out, "Participants: %d\n", r.Participants)
			fmt.Fprintf(out, "Groups: %d\n", r.Groups)
			fmt.Fprintf(out, "Format: %s\n", r.Format)
			fmt.Fprintf(out, "Report: %s\n", r.ReportPath)
			fmt.Fprintf(out, "Fingerprint: %s\n", r.Fingerprint)
			return nil
		},
	}
}
