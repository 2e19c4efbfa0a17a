package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cleared-dev/finsim/internal/journal"
	"github.com/cleared-dev/finsim/internal/model"
	"github.com/cleared-dev/finsim/internal/simulation"
)

// parseLine reads ACCOUNT[/ANALYTIC]=AMOUNT.
func parseLine(side model.Side, s string) (journal.ImputationData, error) {
	acct, amount, ok := strings.Cut(s, "=")
	if !ok {
		return journal.ImputationData{}, fmt.Errorf("invalid line %q: expected ACCOUNT=AMOUNT", s)
	}
	v, err := simulation.ParseValue(amount)
	if err != nil {
		return journal.ImputationData{}, fmt.Errorf("invalid amount in %q", s)
	}
	acct, analytic, _ := strings.Cut(strings.TrimSpace(acct), "/")
	d := journal.ImputationData{Account: acct, AnalyticAccount: analytic, Amount: v, Side: side}
	return d, nil
}

func newPostCommand(g *globals) *cobra.Command {
	var (
		label, date, desc, doc string
		debits, credits        []string
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post an entry to a journal",
		Example: `  finsim post -j VT --date 2025-01-15 --desc "Facture 12" \
    --debit 411=1200 --credit 706=1000 --credit 44571=200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := model.ParseDate(date)
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
			var lines []journal.ImputationData
			for _, set := range []struct {
				side  model.Side
				specs []string
			}{{model.Debit, debits}, {model.Credit, credits}} {
				for _, s := range set.specs {
					d, err := parseLine(set.side, s)
					if err != nil {
						return err
					}
					lines = append(lines, d)
				}
			}

			prj, err := openProject(g.dir, true, g.logger)
			if err != nil {
				return err
			}
			j, err := prj.journal(label)
			if err != nil {
				return err
			}
			e, err := j.LogEntry(day.Time, desc, lines, doc)
			if e == nil {
				return err
			}
			printf(cmd, "%s", e)
			return multierr.Append(err, prj.save(cmd.Context(), fmt.Sprintf("post: %s %s", e.ID(), desc)))
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&label, "journal", "j", "", "journal label (required)")
	flags.StringVar(&date, "date", time.Now().Format(model.DateFormat), "entry date")
	flags.StringVar(&desc, "desc", "", "entry description")
	flags.StringVar(&doc, "doc", "", "supporting document reference")
	flags.StringArrayVar(&debits, "debit", nil, "debit line ACCOUNT[/ANALYTIC]=AMOUNT")
	flags.StringArrayVar(&credits, "credit", nil, "credit line ACCOUNT[/ANALYTIC]=AMOUNT")
	_ = cmd.MarkFlagRequired("journal")
	return cmd
}

func newValidateCommand(g *globals) *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "validate [entry-id...]",
		Short: "Validate entries",
		Long:  "Validate the given entries, or every pending entry of --journal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && label == "" {
				return fmt.Errorf("give entry ids or --journal")
			}
			prj, err := openProject(g.dir, true, g.logger)
			if err != nil {
				return err
			}

			var entries []*journal.Entry
			for _, entryID := range args {
				e, err := prj.entry(entryID)
				if err != nil {
					return err
				}
				entries = append(entries, e)
			}
			if label != "" {
				j, err := prj.journal(label)
				if err != nil {
					return err
				}
				for e := range j.Entries() {
					if !e.IsValidated() {
						entries = append(entries, e)
					}
				}
			}

			var errs error
			n := 0
			for _, e := range entries {
				if err := e.Validate(e.Journal().Now()); err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				n++
			}
			printf(cmd, "validated %d entries\n", n)
			return multierr.Append(errs, prj.save(cmd.Context(), fmt.Sprintf("validate: %d entries", n)))
		},
	}
	cmd.Flags().StringVarP(&label, "journal", "j", "", "validate every pending entry of this journal")
	return cmd
}

func newReconcileCommand(g *globals) *cobra.Command {
	var recID string

	cmd := &cobra.Command{
		Use:   "reconcile entry-id...",
		Short: "Reconcile validated entries under one reconciliation id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if recID == "" {
				recID = uuid.NewString()
			}
			prj, err := openProject(g.dir, true, g.logger)
			if err != nil {
				return err
			}
			entries := make([]*journal.Entry, 0, len(args))
			for _, entryID := range args {
				e, err := prj.entry(entryID)
				if err != nil {
					return err
				}
				entries = append(entries, e)
			}

			var errs error
			n := 0
			for _, e := range entries {
				if err := e.Reconcile(recID, e.Journal().Now()); err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				n++
			}
			printf(cmd, "reconciled %d entries as %s\n", n, recID)
			return multierr.Append(errs, prj.save(cmd.Context(), "reconcile: "+recID))
		},
	}
	cmd.Flags().StringVar(&recID, "id", "", "reconciliation id (default: a new UUID)")
	return cmd
}
