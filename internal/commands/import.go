package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cleared-dev/finsim/internal/config"
	"github.com/cleared-dev/finsim/internal/importer"
)

func newImportCommand(g *globals) *cobra.Command {
	var (
		bank   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import [statement.csv...]",
		Short: "Import bank statements",
		Long: "Parse bank statements, categorize their transactions with the rules of the bank account " +
			"and post them. Without arguments, import every CSV file of import/ and move it to import/processed/.",
		RunE: func(cmd *cobra.Command, args []string) error {
			prj, err := openProject(g.dir, !dryRun, g.logger)
			if err != nil {
				return err
			}
			acct, err := bankAccount(prj.cfg, bank)
			if err != nil {
				return err
			}
			parser, err := importer.DefaultRegistry().Get(acct.Format)
			if err != nil {
				return err
			}
			j, err := prj.journal(acct.Journal)
			if err != nil {
				return err
			}

			type statement struct{ name, path string }
			var (
				stmts   []statement
				scanned = len(args) == 0
			)
			if scanned {
				files, err := importer.Scan(prj.root)
				if err != nil {
					return err
				}
				for _, f := range files {
					stmts = append(stmts, statement{f.Name, f.Path})
				}
			}
			for _, a := range args {
				stmts = append(stmts, statement{a, a})
			}

			categorizer := acct.Categorizer()
			total, suspense := 0, 0
			for _, st := range stmts {
				txns, err := importer.ParseFile(parser, st.path)
				if err != nil {
					return err
				}
				postings, err := categorizer.CategorizeAll(txns)
				if err != nil {
					return fmt.Errorf("%s: %w", st.name, err)
				}
				for _, p := range postings {
					if !p.Matched {
						suspense++
					}
				}
				if dryRun {
					for _, p := range postings {
						printf(cmd, "%s %-40s %s %s\n", p.Transaction.Date.Format("2006-01-02"), p.Description, p.Counterpart, p.Transaction.Amount)
					}
					continue
				}
				entries, err := importer.Post(j, postings)
				total += len(entries)
				if err != nil {
					return multierr.Append(fmt.Errorf("%s: %w", st.name, err), prj.save(cmd.Context(), "import: "+st.name))
				}
				if scanned {
					if err := importer.MarkProcessed(prj.root, st.name); err != nil {
						return err
					}
				}
			}

			printf(cmd, "imported %d entries from %d statements (%d to suspense)\n", total, len(stmts), suspense)
			if dryRun {
				return nil
			}
			return prj.save(cmd.Context(), fmt.Sprintf("import: %d entries", total))
		},
	}
	cmd.Flags().StringVar(&bank, "bank", "", "bank account name (default: the only one configured)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the categorized transactions without posting")
	return cmd
}

func bankAccount(cfg *config.Config, name string) (config.BankAccount, error) {
	if name != "" {
		b, ok := cfg.Bank(name)
		if !ok {
			return config.BankAccount{}, fmt.Errorf("unknown bank account %q", name)
		}
		return b, nil
	}
	switch len(cfg.BankAccounts) {
	case 0:
		return config.BankAccount{}, errors.New("no bank account configured")
	case 1:
		return cfg.BankAccounts[0], nil
	}
	return config.BankAccount{}, errors.New("several bank accounts configured: use --bank")
}
