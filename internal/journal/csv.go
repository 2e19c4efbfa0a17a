package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finsim/internal/model"
)

// Header is the CSV header for exported journals. Each row is one imputation;
// rows of the same entry are consecutive.
const Header = "journal,sequence_number,date,description,document,side,account,analytic_account,amount,validation_date,reconciliation_id,reconciliation_date"

const (
	numFields      = 12
	colJournal     = 0
	colSeq         = 1
	colDate        = 2
	colDesc        = 3
	colDocument    = 4
	colSide        = 5
	colAccount     = 6
	colAnalytic    = 7
	colAmount      = 8
	colValidation  = 9
	colReconcileID = 10
	colReconciled  = 11
)

// ReadRecords reads an exported journal.
func ReadRecords(r io.Reader) ([]model.EntryRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	// Skip header row.
	var records []model.EntryRecord
	for i, row := range rows[1:] {
		rec, side, imp, err := UnmarshalRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if n := len(records); n == 0 || records[n-1].Journal != rec.Journal || records[n-1].SequenceNumber != rec.SequenceNumber {
			records = append(records, rec)
		}
		last := &records[len(records)-1]
		if side == model.Debit {
			last.Debits = append(last.Debits, imp)
		} else {
			last.Credits = append(last.Credits, imp)
		}
	}
	return records, nil
}

// WriteRecords writes records to w (including header).
func WriteRecords(w io.Writer, records []model.EntryRecord) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return AppendRecords(w, records)
}

// AppendRecords appends records to an existing journal CSV (no header).
func AppendRecords(w io.Writer, records []model.EntryRecord) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for _, rec := range records {
		for _, row := range MarshalRows(rec) {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing entry %s-%d: %w", rec.Journal, rec.SequenceNumber, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRows converts an entry record to one CSV row per imputation.
func MarshalRows(rec model.EntryRecord) [][]string {
	rows := make([][]string, 0, len(rec.Debits)+len(rec.Credits))
	add := func(imp model.ImputationRecord, side model.Side) {
		row := make([]string, numFields)
		row[colJournal] = rec.Journal
		row[colSeq] = strconv.Itoa(rec.SequenceNumber)
		row[colDate] = rec.Date.String()
		row[colDesc] = rec.Description
		row[colDocument] = rec.Document
		row[colSide] = side.String()
		row[colAccount] = imp.Account
		row[colAnalytic] = imp.AnalyticAccount
		row[colAmount] = imp.Amount.String()
		if rec.ValidationDate != nil {
			row[colValidation] = rec.ValidationDate.Format(time.RFC3339Nano)
		}
		row[colReconcileID] = rec.ReconciliationID
		if rec.ReconciliationDate != nil {
			row[colReconciled] = rec.ReconciliationDate.Format(time.RFC3339Nano)
		}
		rows = append(rows, row)
	}
	for _, imp := range rec.Debits {
		add(imp, model.Debit)
	}
	for _, imp := range rec.Credits {
		add(imp, model.Credit)
	}
	return rows
}

// UnmarshalRow converts a CSV row to the entry fields it carries and its
// imputation.
func UnmarshalRow(row []string) (model.EntryRecord, model.Side, model.ImputationRecord, error) {
	var rec model.EntryRecord
	var imp model.ImputationRecord
	if len(row) != numFields {
		return rec, 0, imp, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	seq, err := strconv.Atoi(row[colSeq])
	if err != nil {
		return rec, 0, imp, fmt.Errorf("parsing sequence_number %q: %w", row[colSeq], err)
	}

	date, err := model.ParseDate(row[colDate])
	if err != nil {
		return rec, 0, imp, fmt.Errorf("parsing date %q: %w", row[colDate], err)
	}

	side, err := model.ParseSide(row[colSide])
	if err != nil {
		return rec, 0, imp, err
	}

	amount, err := decimal.NewFromString(row[colAmount])
	if err != nil {
		return rec, 0, imp, fmt.Errorf("parsing amount %q: %w", row[colAmount], err)
	}

	validation, err := parseTimestamp(row[colValidation])
	if err != nil {
		return rec, 0, imp, fmt.Errorf("parsing validation_date %q: %w", row[colValidation], err)
	}

	reconciled, err := parseTimestamp(row[colReconciled])
	if err != nil {
		return rec, 0, imp, fmt.Errorf("parsing reconciliation_date %q: %w", row[colReconciled], err)
	}

	rec = model.EntryRecord{
		Journal:            row[colJournal],
		SequenceNumber:     seq,
		Date:               date,
		Description:        row[colDesc],
		Document:           row[colDocument],
		ValidationDate:     validation,
		ReconciliationID:   row[colReconcileID],
		ReconciliationDate: reconciled,
	}
	imp = model.ImputationRecord{
		Account:         row[colAccount],
		AnalyticAccount: row[colAnalytic],
		Amount:          amount,
	}
	return rec, side, imp, nil
}

func parseTimestamp(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
