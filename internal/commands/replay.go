package commands

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/finsim/internal/history"
	"github.com/cleared-dev/finsim/internal/report"
)

var errUnbalancedChart = errors.New("chart does not balance")

func newReplayCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay every stored entry, rewrite the store and rebuild the balance history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prj, err := openProject(g.dir, false, g.logger)
			if err != nil {
				return err
			}

			rec := history.NewRecorder(history.WithReplay())
			for j := range prj.period.Journals() {
				j.AddListener(rec)
			}
			if err := prj.period.Run(); err != nil {
				return err
			}

			debit, credit := decimal.Zero, decimal.Zero
			for _, b := range prj.period.Chart().Roots() {
				debit = debit.Add(b.Debit())
				credit = credit.Add(b.Credit())
			}
			for j := range prj.period.Journals() {
				printf(cmd, "%-4s %5d entries\n", j.Label(), j.Len())
			}
			cur := prj.cfg.Business.Currency
			printf(cmd, "total debit %s, total credit %s\n", report.FormatAmount(debit, cur), report.FormatAmount(credit, cur))
			if !debit.Equal(credit) {
				return errUnbalancedChart
			}

			if err := prj.file.Rewrite(prj.period.Records()); err != nil {
				return err
			}
			if err := rewriteHistory(prj.root, rec.Snapshots()); err != nil {
				return err
			}
			return prj.commit(cmd.Context(), "replay: rebuild store and balance history")
		},
	}
	return cmd
}
