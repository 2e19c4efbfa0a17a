package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finsim/internal/buildinfo"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	dir     string
	verbose bool
	noColor bool
	logger  *slog.Logger
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:     "finsim",
		Short:   "Double-entry bookkeeping, reports and financial simulation",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			g.logger = newLogger(cmd.ErrOrStderr(), g.verbose)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&g.dir, "dir", "C", ".", "project directory")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "log debug messages")
	flags.BoolVar(&g.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		newInitCommand(g),
		newAccountsCommand(g),
		newBalanceCommand(g),
		newPostCommand(g),
		newValidateCommand(g),
		newReconcileCommand(g),
		newEvalCommand(g),
		newReportCommand(g),
		newCoverageCommand(g),
		newSimulateCommand(g),
		newImportCommand(g),
		newReplayCommand(g),
		newExportCommand(g),
		newRestoreCommand(g),
	)

	return rootCmd
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
