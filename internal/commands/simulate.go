package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/finsim/internal/config"
	"github.com/cleared-dev/finsim/internal/hdl"
	"github.com/cleared-dev/finsim/internal/report"
	"github.com/cleared-dev/finsim/internal/scheduler"
	"github.com/cleared-dev/finsim/internal/simulation"
)

func newSimulateCommand(g *globals) *cobra.Command {
	var (
		save    bool
		reports []string
	)

	cmd := &cobra.Command{
		Use:   "simulate [scenario.yaml]",
		Short: "Post the transactions of a scenario over the period",
		Long: "Post the transactions of a scenario on top of the stored entries. " +
			"Results are discarded unless --save is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prj, err := openProject(g.dir, save, g.logger)
			if err != nil {
				return err
			}
			path := config.Resolve(prj.root, prj.cfg.Paths.Scenario)
			if len(args) > 0 {
				path = args[0]
			}

			s, err := simulation.LoadFile(path,
				simulation.WithBalances(prj.period.Chart()),
				simulation.WithLogger(g.logger))
			if err != nil {
				return err
			}
			n, err := simulation.Run(cmd.Context(), prj.period, s, scheduler.WithLogger(g.logger))
			printf(cmd, "posted %d entries from %d transactions\n", n, len(s.Transactions))
			if err != nil {
				return err
			}

			r := report.NewRenderer(prj.cfg.Business.Currency, !g.noColor && !color.NoColor)
			for _, f := range reports {
				table, err := report.LoadFile(f)
				if err != nil {
					return err
				}
				res, err := table.Compute(prj.period.Chart(), hdl.WithLogger(g.logger))
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
				printf(cmd, "\n")
				if err := r.Render(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			}

			if !save {
				return nil
			}
			return prj.save(cmd.Context(), fmt.Sprintf("simulate: %d entries", n))
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "persist the simulated entries")
	cmd.Flags().StringArrayVar(&reports, "report", nil, "render this table after the simulation")
	return cmd
}
