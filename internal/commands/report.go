package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/finsim/internal/config"
	"github.com/cleared-dev/finsim/internal/hdl"
	"github.com/cleared-dev/finsim/internal/report"
)

func newEvalCommand(g *globals) *cobra.Command {
	var sets bool

	cmd := &cobra.Command{
		Use:     "eval expression",
		Short:   "Evaluate an HDL expression against current balances",
		Example: "  finsim eval 'ca = 706C + 707C; ca - 60D'",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := hdl.Parse(args[0])
			if err != nil {
				return err
			}
			prj, err := openProject(g.dir, false, g.logger)
			if err != nil {
				return err
			}
			opts := []hdl.Option{hdl.WithLogger(g.logger)}

			if sets {
				set, err := hdl.NewSetEvaluator(prj.period.Chart(), opts...).Run(prog)
				if err != nil {
					return err
				}
				printf(cmd, "%s\n", strings.Join(set.Sorted(), " "))
				return nil
			}
			v, err := hdl.NewNumericEvaluator(prj.period.Chart(), opts...).Run(prog)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", report.FormatAmount(v, prj.cfg.Business.Currency))
			return nil
		},
	}
	cmd.Flags().BoolVar(&sets, "accounts", false, "print the accounts the expression reads instead of its value")
	return cmd
}

// reportFiles returns args, or every table of the reports directory.
func reportFiles(prj *project, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	dir := config.Resolve(prj.root, prj.cfg.Paths.Reports)
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no report table in %s", dir)
	}
	return files, nil
}

func newReportCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [table.yaml...]",
		Short: "Compute and print report tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			prj, err := openProject(g.dir, false, g.logger)
			if err != nil {
				return err
			}
			files, err := reportFiles(prj, args)
			if err != nil {
				return err
			}
			r := report.NewRenderer(prj.cfg.Business.Currency, !g.noColor && !color.NoColor)
			for i, f := range files {
				table, err := report.LoadFile(f)
				if err != nil {
					return err
				}
				res, err := table.Compute(prj.period.Chart(), hdl.WithLogger(g.logger))
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
				if i > 0 {
					printf(cmd, "\n")
				}
				if err := r.Render(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}

func newCoverageCommand(g *globals) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "coverage [table.yaml...]",
		Short: "List the accounts report tables do not read",
		Long:  "List the accounts with imputations that no report table reads. With --all, list every uncovered account.",
		RunE: func(cmd *cobra.Command, args []string) error {
			prj, err := openProject(g.dir, false, g.logger)
			if err != nil {
				return err
			}
			files, err := reportFiles(prj, args)
			if err != nil {
				return err
			}
			color.NoColor = g.noColor || color.NoColor
			warn := color.New(color.FgYellow)

			chart := prj.period.Chart()
			for _, f := range files {
				table, err := report.LoadFile(f)
				if err != nil {
					return err
				}
				cov, err := table.Coverage(chart, hdl.WithLogger(g.logger))
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
				list := cov.Missed
				if all {
					list = cov.Uncovered
				}
				printf(cmd, "%s: %d accounts referenced, %d uncovered\n", filepath.Base(f), len(cov.Referenced), len(list))
				for _, number := range list {
					b, _ := chart.Lookup(number)
					warn.Fprintf(cmd.OutOrStdout(), "  %-8s %s\n", number, b.Account().Description)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include uncovered accounts without imputations")
	return cmd
}
