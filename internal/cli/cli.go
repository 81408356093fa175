// Package cli is the randalloc command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"randalloc/internal/config"
	"randalloc/internal/container"
	"randalloc/internal/logging"
)

// session carries the container opened for the running command
type session struct {
	c *container.Container
}

func (s *session) close() error {
	if s.c == nil {
		return nil
	}
	err := s.c.Close()
	s.c = nil
	return err
}

// newRootCommand builds the command tree. The container is opened before any subcommand runs
// and closed after it returns.
func newRootCommand(s *session) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "randalloc",
		Short: "Randomized group allocation with reproducible seeds",
		Long: `randalloc keeps a list of study groups with target sample sizes and turns it into an
anonymized, shuffled participant allocation saved as a spreadsheet.

Configuration is read from the environment (and a .env file):
- RANDALLOC_DATABASE_URL   sqlite file or postgres:// URL (default: ./data/randalloc.db)
- RANDALLOC_OUTPUT_DIR     default directory for reports
- RANDALLOC_REPORT_FORMAT  xlsx or csv (default: xlsx)
- RANDALLOC_HISTORY_LIMIT  runs shown by history (default: 20)
- LOG_LEVEL                debug, info, warn, error (default: info)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.SetupWithLevel(cmd.ErrOrStderr(), logging.LevelFromString(cfg.Logging.Level))

			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			if err := c.Open(cmd.Context()); err != nil {
				return err
			}
			s.c = c
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return s.close()
		},
	}

	rootCmd.AddCommand(
		newGroupCmd(s),
		newRandomizeCmd(s),
		newVerifyCmd(s),
		newHistoryCmd(s),
	)

	return rootCmd
}

// Execute runs the command tree with args
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	s := &session{}
	rootCmd := newRootCommand(s)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when RunE fails
	if closeErr := s.close(); closeErr != nil {
		fmt.Fprintln(stderr, "warning:", closeErr)
	}
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
