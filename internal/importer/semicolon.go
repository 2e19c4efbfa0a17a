package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cleared-dev/finsim/internal/model"
	"github.com/cleared-dev/finsim/internal/simulation"
)

// SemicolonParser parses the semicolon separated exports of French banks:
// Date;Libellé;Montant with dd/mm/yyyy dates and comma decimals.
type SemicolonParser struct{}

const frDateFormat = "02/01/2006"

func (p *SemicolonParser) Format() string { return "fr" }

func (p *SemicolonParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading statement: %w", err)
	}

	var txns []model.BankTransaction
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return txns, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading statement: %w", err)
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("row %d: expected at least 3 fields, got %d", row, len(rec))
		}
		date, err := time.Parse(frDateFormat, rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", row, rec[0], err)
		}
		amount, err := simulation.ParseValue(rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", row, rec[2], err)
		}
		desc := strings.TrimSpace(rec[1])
		txns = append(txns, model.BankTransaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Reference:   makeRef("fr", date, desc),
		})
	}
}
