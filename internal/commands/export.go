package commands

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cleared-dev/finsim/internal/journal"
	"github.com/cleared-dev/finsim/internal/model"
)

func newExportCommand(g *globals) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export entries as CSV, one row per imputation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prj, err := openProject(g.dir, false, g.logger)
			if err != nil {
				return err
			}

			records := prj.period.Records()
			if label != "" {
				j, err := prj.journal(label)
				if err != nil {
					return err
				}
				records = j.Records()
			}

			if len(args) == 0 {
				return journal.WriteRecords(cmd.OutOrStdout(), records)
			}
			var buf bytes.Buffer
			if err := journal.WriteRecords(&buf, records); err != nil {
				return err
			}
			if err := atomic.WriteFile(args[0], &buf); err != nil {
				return fmt.Errorf("writing %s: %w", args[0], err)
			}
			printf(cmd, "exported %d entries to %s\n", len(records), args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&label, "journal", "j", "", "export a single journal")
	return cmd
}

func newRestoreCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Load entries from a CSV export into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prj, err := openProject(g.dir, false, g.logger)
			if err != nil {
				return err
			}

			records, err := readExport(args[0])
			if err != nil {
				return err
			}
			var invalid error
			for _, v := range journal.ValidateRecords(records, prj.period.Chart().Accounts()) {
				invalid = multierr.Append(invalid, v)
			}
			if invalid != nil {
				return fmt.Errorf("%s: %w", args[0], invalid)
			}
			if err := prj.period.Load(records); err != nil {
				return err
			}
			if err := prj.period.Run(); err != nil {
				return fmt.Errorf("replaying journals: %w", err)
			}
			if err := prj.file.Append(records...); err != nil {
				return err
			}

			printf(cmd, "restored %d entries\n", len(records))
			return prj.commit(cmd.Context(), fmt.Sprintf("restore: %d entries from %s", len(records), args[0]))
		},
	}
}

func readExport(path string) ([]model.EntryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := journal.ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
