package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finsim/internal/accounts"
	"github.com/cleared-dev/finsim/internal/balance"
	"github.com/cleared-dev/finsim/internal/report"
)

func newAccountsCommand(g *globals) *cobra.Command {
	var export string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prj, err := openProject(g.dir, false, g.logger)
			if err != nil {
				return err
			}
			chart := prj.period.Chart().Accounts()
			if export != "" {
				return accounts.Save(export, chart)
			}
			for n := range chart.Nodes() {
				printf(cmd, "%s%-8s %s\n", strings.Repeat("  ", n.Level()), n.Value.Number, n.Value.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&export, "export", "", "write the chart as CSV to this file")
	return cmd
}

func newBalanceCommand(g *globals) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "balance [account...]",
		Short: "Show account balances",
		Long:  "Show debit, credit and balance of the given accounts and their sub-accounts. Without arguments, show every account with movements.",
		RunE: func(cmd *cobra.Command, args []string) error {
			prj, err := openProject(g.dir, false, g.logger)
			if err != nil {
				return err
			}
			chart := prj.period.Chart()

			var selected []*balance.AccountBalance
			if len(args) == 0 {
				for b := range chart.All() {
					if all || !b.Debit().IsZero() || !b.Credit().IsZero() {
						selected = append(selected, b)
					}
				}
			}
			for _, number := range args {
				b, err := chart.Get(number)
				if err != nil {
					return err
				}
				selected = append(selected, b)
			}

			cur := prj.cfg.Business.Currency
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "account\tdebit\tcredit\tbalance\t")
			for _, b := range selected {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
					b.Number(),
					report.FormatAmount(b.Debit(), cur),
					report.FormatAmount(b.Credit(), cur),
					report.FormatAmount(b.Balance(), cur))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include accounts without movements")
	return cmd
}
