package journal

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finsim/internal/id"
	"github.com/cleared-dev/finsim/internal/model"
)

// Entry is a balanced group of imputations posted together.
type Entry struct {
	journal     *Journal
	seq         int
	date        model.Date
	description string
	document    string

	imputations []*Imputation
	debits      []*Imputation
	credits     []*Imputation

	validationDate     *time.Time
	reconciliationID   string
	reconciliationDate *time.Time
}

// newEntry sorts imputations by account number and checks the entry
// invariants. Nothing is applied.
func newEntry(j *Journal, seq int, date time.Time, description, document string, imputations []*Imputation) (*Entry, error) {
	e := &Entry{
		journal:     j,
		seq:         seq,
		date:        model.NewDate(date.Date()),
		description: description,
		document:    document,
		imputations: slices.Clone(imputations),
	}
	slices.SortStableFunc(e.imputations, func(a, b *Imputation) int {
		return model.CompareNumbers(a.account.Number(), b.account.Number())
	})

	lines := make([]line, len(e.imputations))
	for k, imp := range e.imputations {
		lines[k] = imp.line()
	}
	if err := checkLines(e.ID(), lines); err != nil {
		return nil, err
	}

	for _, imp := range e.imputations {
		imp.entry = e
		if imp.IsDebit() {
			e.debits = append(e.debits, imp)
		} else {
			e.credits = append(e.credits, imp)
		}
	}
	return e, nil
}

// ID returns the journal-qualified identifier, e.g. "VT-000003".
func (e *Entry) ID() string {
	label := ""
	if e.journal != nil {
		label = e.journal.label
	}
	return id.FormatEntryID(label, e.seq)
}

func (e *Entry) Journal() *Journal { return e.journal }

func (e *Entry) SequenceNumber() int { return e.seq }

func (e *Entry) Date() time.Time { return e.date.Time }

func (e *Entry) Description() string { return e.description }

func (e *Entry) Document() string { return e.document }

// Imputations returns every line sorted by account number.
func (e *Entry) Imputations() []*Imputation { return e.imputations }

func (e *Entry) Debits() []*Imputation { return e.debits }

func (e *Entry) Credits() []*Imputation { return e.credits }

// SumOfDebits returns the rounded total of debit lines.
func (e *Entry) SumOfDebits() decimal.Decimal { return sum(e.debits) }

// SumOfCredits returns the rounded total of credit lines.
func (e *Entry) SumOfCredits() decimal.Decimal { return sum(e.credits) }

func sum(imputations []*Imputation) decimal.Decimal {
	total := decimal.Zero
	for _, imp := range imputations {
		total = total.Add(imp.amount)
	}
	return model.RoundCurrency(total)
}

func (e *Entry) ValidationDate() *time.Time { return e.validationDate }

func (e *Entry) ReconciliationID() string { return e.reconciliationID }

func (e *Entry) ReconciliationDate() *time.Time { return e.reconciliationDate }

func (e *Entry) IsValidated() bool { return e.validationDate != nil }

func (e *Entry) IsReconciled() bool { return e.reconciliationDate != nil }

// Validate marks the entry validated at now. It fails with
// ErrAlreadyValidated the second time. A listener error is returned after
// the transition took place.
func (e *Entry) Validate(now time.Time) error {
	if e.validationDate != nil {
		return fmt.Errorf("%s: %w", e.ID(), ErrAlreadyValidated)
	}
	now = now.UTC()
	e.validationDate = &now
	return e.notify(EventValidated)
}

// Reconcile marks a validated entry as matched against reconciliationID.
func (e *Entry) Reconcile(reconciliationID string, now time.Time) error {
	if e.reconciliationDate != nil {
		return fmt.Errorf("%s: %w", e.ID(), ErrAlreadyReconciled)
	}
	if e.validationDate == nil {
		return fmt.Errorf("%s: %w", e.ID(), ErrNotValidated)
	}
	now = now.UTC()
	e.reconciliationID = reconciliationID
	e.reconciliationDate = &now
	return e.notify(EventReconciled)
}

func (e *Entry) notify(kind EventKind) error {
	if e.journal == nil {
		return nil
	}
	return e.journal.notify(Event{Kind: kind, Journal: e.journal, Entry: e})
}

// Involves reports whether an imputation targets number or one of its
// sub-accounts.
func (e *Entry) Involves(number string) bool {
	for _, imp := range e.imputations {
		for b := imp.account; b != nil; b = b.Parent() {
			if b.Number() == number {
				return true
			}
		}
	}
	return false
}

// Record returns the serialized form of the entry.
func (e *Entry) Record() model.EntryRecord {
	rec := model.EntryRecord{
		SequenceNumber:   e.seq,
		Date:             e.date,
		Description:      e.description,
		Document:         e.document,
		ReconciliationID: e.reconciliationID,
		Debits:           make([]model.ImputationRecord, 0, len(e.debits)),
		Credits:          make([]model.ImputationRecord, 0, len(e.credits)),
	}
	if e.journal != nil {
		rec.Journal = e.journal.label
	}
	if e.validationDate != nil {
		t := *e.validationDate
		rec.ValidationDate = &t
	}
	if e.reconciliationDate != nil {
		t := *e.reconciliationDate
		rec.ReconciliationDate = &t
	}
	for _, imp := range e.debits {
		rec.Debits = append(rec.Debits, imp.record())
	}
	for _, imp := range e.credits {
		rec.Credits = append(rec.Credits, imp.record())
	}
	return rec
}

func (e *Entry) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Journal Entry %s on %s: %s\n", e.ID(), e.date, e.description)
	for _, imp := range e.debits {
		sb.WriteString(imp.String())
		sb.WriteByte('\n')
	}
	for _, imp := range e.credits {
		sb.WriteString(imp.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
