package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/cleared-dev/finsim/internal/model"
)

// Snapshot is the state of an account right after one imputation.
type Snapshot struct {
	Date         model.Date
	ImputationID string
	Account      string
	Side         model.Side
	Amount       decimal.Decimal
	InnerDebit   decimal.Decimal
	InnerCredit  decimal.Decimal
}

// InnerBalance returns credit minus debit.
func (s Snapshot) InnerBalance() decimal.Decimal {
	return s.InnerCredit.Sub(s.InnerDebit)
}

// Header is the CSV header for balance-history.csv.
const Header = "date,imputation_id,account,side,amount,inner_debit,inner_credit"

const (
	numFields      = 7
	logDir         = "logs"
	logFile        = "logs/balance-history.csv"
	colDate        = 0
	colImputation  = 1
	colAccount     = 2
	colSide        = 3
	colAmount      = 4
	colInnerDebit  = 5
	colInnerCredit = 6
)

// Path returns the history file of the project at root.
func Path(root string) string { return filepath.Join(root, logFile) }

// MarshalSnapshot converts a Snapshot to a CSV row.
func MarshalSnapshot(s Snapshot) []string {
	row := make([]string, numFields)
	row[colDate] = s.Date.String()
	row[colImputation] = s.ImputationID
	row[colAccount] = s.Account
	row[colSide] = s.Side.String()
	row[colAmount] = s.Amount.String()
	row[colInnerDebit] = s.InnerDebit.String()
	row[colInnerCredit] = s.InnerCredit.String()
	return row
}

// UnmarshalSnapshot converts a CSV row to a Snapshot.
func UnmarshalSnapshot(record []string) (Snapshot, error) {
	if len(record) != numFields {
		return Snapshot{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := model.ParseDate(record[colDate])
	if err != nil {
		return Snapshot{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}
	side, err := model.ParseSide(record[colSide])
	if err != nil {
		return Snapshot{}, err
	}
	var amounts [3]decimal.Decimal
	for k, col := range []int{colAmount, colInnerDebit, colInnerCredit} {
		if amounts[k], err = decimal.NewFromString(record[col]); err != nil {
			return Snapshot{}, fmt.Errorf("parsing amount %q: %w", record[col], err)
		}
	}

	return Snapshot{
		Date:         date,
		ImputationID: record[colImputation],
		Account:      record[colAccount],
		Side:         side,
		Amount:       amounts[0],
		InnerDebit:   amounts[1],
		InnerCredit:  amounts[2],
	}, nil
}

// Append writes snapshots to <root>/logs/balance-history.csv, creating the
// file and header if needed.
func Append(root string, snapshots []Snapshot) (err error) {
	if err := os.MkdirAll(filepath.Join(root, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(root)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening balance history: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, s := range snapshots {
		if err := cw.Write(MarshalSnapshot(s)); err != nil {
			return fmt.Errorf("writing snapshot %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all snapshots from <root>/logs/balance-history.csv.
// Returns an empty slice if the file does not exist.
func Read(root string) ([]Snapshot, error) {
	f, err := os.Open(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening balance history: %w", err)
	}
	defer f.Close()

	return readSnapshots(f)
}

func readSnapshots(r io.Reader) ([]Snapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading balance history CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var snapshots []Snapshot
	for i, rec := range records[1:] {
		s, err := UnmarshalSnapshot(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}
