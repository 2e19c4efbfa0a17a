package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cleared-dev/finsim/internal/model"
)

const (
	numFields  = 6
	colNumber  = 0
	colDesc    = 1
	colParent  = 2
	colDevise  = 3
	colSystem  = 4
	colComment = 5
)

var header = []string{"number", "description", "parent", "devise", "system", "comment"}

// ReadAccounts reads a chart CSV into parent-linked entries.
func ReadAccounts(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ReadChart reads a chart CSV and builds the chart.
func ReadChart(r io.Reader, name string) (*Chart, error) {
	entries, err := ReadAccounts(r)
	if err != nil {
		return nil, err
	}
	return FromList(name, entries)
}

// WriteAccounts writes the chart depth-first, so parents precede children.
func WriteAccounts(w io.Writer, chart *Chart) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for n := range chart.Nodes() {
		e := Entry{Account: *n.Value}
		if p := n.Parent(); p != nil {
			e.Parent = p.Key()
		}
		if err := cw.Write(MarshalAccount(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
		row++
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Entry to a CSV row.
func MarshalAccount(e Entry) []string {
	row := make([]string, numFields)
	row[colNumber] = e.Account.Number
	row[colDesc] = e.Account.Description
	row[colParent] = e.Parent
	row[colDevise] = e.Account.Devise
	row[colSystem] = e.Account.System
	row[colComment] = e.Account.Comment
	return row
}

// UnmarshalAccount converts a CSV row to an Entry.
func UnmarshalAccount(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colNumber] == "" {
		return Entry{}, fmt.Errorf("empty account number")
	}

	devise := record[colDevise]
	if devise == "" {
		devise = model.DefaultDevise
	}
	return Entry{
		Account: model.Account{
			Number:      record[colNumber],
			Description: record[colDesc],
			Devise:      devise,
			System:      record[colSystem],
			Comment:     record[colComment],
		},
		Parent: record[colParent],
	}, nil
}
