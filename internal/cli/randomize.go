package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"randalloc/app"
	"randalloc/domain/allocation"
	"randalloc/domain/run"
	"randalloc/internal/errors"
)

func newRandomizeCmd(s *session) *cobra.Command {
	var outDir string
	var seedText string
	var format string
	var show bool

	cmd := &cobra.Command{
		Use:   "randomize",
		Short: "Shuffle the group list into a participant allocation report",
		Long: `Expand every group into its sample size, shuffle the pool and assign participant IDs
1..N in shuffled order. The report is written to the output directory as
"<YYYY_MM_DD HH_MM_SS> RandomizationAllocation.xlsx" (or .csv with sidecar files).

A seed makes the allocation reproducible. Seed text that is not a positive integer is
reported and the allocation proceeds without a seed.

Example: randalloc randomize --out ./reports --seed 12345`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = s.c.Config.Report.OutputDir
			}
			var reportFormat run.ReportFormat
			if format != "" {
				parsed, err := run.ParseReportFormat(format)
				if err != nil {
					return errors.ValidationError(err)
				}
				reportFormat = parsed
			}

			resp, err := s.c.Randomization.Randomize(cmd.Context(), app.RandomizeRequest{
				OutputDir: outDir,
				SeedText:  seedText,
				Format:    reportFormat,
			})
			if err != nil {
				return err
			}

			if resp.SeedWarning != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; randomized without a seed\n", resp.SeedWarning)
			}

			out := cmd.OutOrStdout()
			if show {
				tw := newTable(out)
				fmt.Fprintln(tw, "Participant ID\tGroup Name")
				for _, rec := range resp.Result.Allocations {
					fmt.Fprintf(tw, "%d\t%s\n", rec.ParticipantID, rec.GroupName)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "Report written: %s\n", resp.ReportPath)
			fmt.Fprintf(out, "Participants: %d\n", resp.Result.Total())
			fmt.Fprintf(out, "Random seed: %s\n", resp.Result.Seed)
			if resp.Run != nil {
				fmt.Fprintf(out, "Run ID: %s\n", resp.Run.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default: RANDALLOC_OUTPUT_DIR)")
	cmd.Flags().StringVar(&seedText, "seed", "", "Random seed (positive integer) for a reproducible allocation")
	cmd.Flags().StringVar(&format, "format", "", "Report format: xlsx|csv (default: RANDALLOC_REPORT_FORMAT)")
	cmd.Flags().BoolVar(&show, "show", false, "Print the allocation table")
	return cmd
}

func newVerifyCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [report]",
		Short: "Check a report against a fresh randomization of its seed and groups",
		Long: `Re-run the randomization recorded in a report (its seed and Groups sheet) and compare
the allocations. Reports written without a seed cannot be verified.

Example: randalloc verify "reports/2025_01_04 20_12_09 RandomizationAllocation.xlsx"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vr, err := s.c.Randomization.Verify(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Report: %s\n", vr.ReportPath)
			fmt.Fprintf(out, "Random seed: %s\n", vr.Seed)
			fmt.Fprintf(out, "Participants: %d\n", vr.Participants)
			fmt.Fprintf(out, "Fingerprint: %s\n", vr.Recorded.Short())
			if !vr.Match {
				return errors.WithCode(errors.CodeValidationError,
					fmt.Errorf("%w: first difference at participant %d", allocation.ErrMismatch, vr.FirstMismatch))
			}
			fmt.Fprintln(out, "Allocation verified")
			return nil
		},
	}
}
