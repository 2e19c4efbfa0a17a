package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is a normalized bank statement line produced by an importer.
type BankTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = money out, positive = money in
	Reference   string
	Type        string // bank transaction type (ACH_DEBIT, etc.)
}
