package journal

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finsim/internal/id"
	"github.com/cleared-dev/finsim/internal/model"
)

// ValidationError describes a single invariant violation. It unwraps to
// the matching sentinel error.
type ValidationError struct {
	EntryID     string
	Description string
	Err         error
}

func (e *ValidationError) Error() string {
	if e.EntryID == "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Description)
	}
	return fmt.Sprintf("%v [%s]: %s", e.Err, e.EntryID, e.Description)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// line is the account-number view of an imputation shared by entries,
// templates and records.
type line struct {
	account string
	side    model.Side
	amount  decimal.Decimal
}

// checkLines enforces the construction invariants of an entry: at least one
// line, no negative amount, no account twice, debits equal credits once
// rounded to the currency precision.
func checkLines(entryID string, lines []line) error {
	if len(lines) == 0 {
		return &ValidationError{EntryID: entryID, Description: "no imputation", Err: ErrEmptyEntry}
	}
	seen := make(map[string]bool, len(lines))
	debits, credits := decimal.Zero, decimal.Zero
	for _, l := range lines {
		if l.amount.IsNegative() {
			return &ValidationError{
				EntryID:     entryID,
				Description: fmt.Sprintf("%s %s on #%s", l.side, l.amount, l.account),
				Err:         ErrNegativeAmount,
			}
		}
		if seen[l.account] {
			return &ValidationError{
				EntryID:     entryID,
				Description: fmt.Sprintf("account #%s", l.account),
				Err:         ErrDuplicatedEntry,
			}
		}
		seen[l.account] = true
		if l.side == model.Debit {
			debits = debits.Add(l.amount)
		} else {
			credits = credits.Add(l.amount)
		}
	}
	debits, credits = model.RoundCurrency(debits), model.RoundCurrency(credits)
	if !debits.Equal(credits) {
		return &ValidationError{
			EntryID:     entryID,
			Description: fmt.Sprintf("debits (%s) != credits (%s)", debits.StringFixed(2), credits.StringFixed(2)),
			Err:         ErrUnbalancedEntry,
		}
	}
	return nil
}

// AccountChecker tests whether an account number exists in a chart.
type AccountChecker interface {
	Exists(number string) bool
}

// ValidateRecords checks serialized entries without posting them. It reports
// every violation instead of stopping at the first one. Sequence numbers
// must be positive and unique per journal; gaps are legal because failed
// postings burn their number.
func ValidateRecords(records []model.EntryRecord, chart AccountChecker) []*ValidationError {
	var errs []*ValidationError

	type key struct {
		journal string
		seq     int
	}
	seen := make(map[key]bool)
	hundred := decimal.NewFromInt(100)

	for _, rec := range records {
		entryID := id.FormatEntryID(rec.Journal, rec.SequenceNumber)

		if rec.SequenceNumber <= 0 {
			errs = append(errs, &ValidationError{EntryID: entryID, Description: "sequence number must be positive", Err: ErrInvalidSequence})
		}
		k := key{rec.Journal, rec.SequenceNumber}
		if seen[k] {
			errs = append(errs, &ValidationError{EntryID: entryID, Description: "sequence number reused", Err: ErrDuplicateSequence})
		}
		seen[k] = true

		lines := recordLines(rec)
		if err := checkLines(entryID, lines); err != nil {
			errs = append(errs, err.(*ValidationError))
		}

		for _, l := range lines {
			if !chart.Exists(l.account) {
				errs = append(errs, &ValidationError{EntryID: entryID, Description: fmt.Sprintf("account #%s", l.account), Err: ErrAccountNotFound})
			}
			if scaled := l.amount.Mul(hundred); !scaled.Equal(scaled.Floor()) {
				errs = append(errs, &ValidationError{
					EntryID:     entryID,
					Description: fmt.Sprintf("amount %s on #%s has more than 2 decimal places", l.amount, l.account),
					Err:         ErrPrecision,
				})
			}
		}
		if rec.ReconciliationDate != nil && rec.ValidationDate == nil {
			errs = append(errs, &ValidationError{EntryID: entryID, Description: "reconciled before validation", Err: ErrNotValidated})
		}
	}

	slices.SortStableFunc(errs, func(a, b *ValidationError) int {
		return cmp.Compare(a.EntryID, b.EntryID)
	})
	return errs
}

func recordLines(rec model.EntryRecord) []line {
	lines := make([]line, 0, len(rec.Debits)+len(rec.Credits))
	for _, d := range rec.Debits {
		lines = append(lines, line{account: d.Account, side: model.Debit, amount: d.Amount})
	}
	for _, c := range rec.Credits {
		lines = append(lines, line{account: c.Account, side: model.Credit, amount: c.Amount})
	}
	return lines
}
