package importer

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/cleared-dev/finsim/internal/journal"
	"github.com/cleared-dev/finsim/internal/model"
)

var (
	// ErrUncategorized is returned for a transaction no rule matches when the
	// categorizer has no suspense account.
	ErrUncategorized = errors.New("uncategorized transaction")
	// ErrZeroAmount is returned for a transaction without amount.
	ErrZeroAmount = errors.New("zero amount transaction")
)

// Rule maps transactions whose description contains Match to Account.
// Matching ignores case. Label, when set, replaces the bank description.
type Rule struct {
	Match   string `yaml:"match"`
	Account string `yaml:"account"`
	Label   string `yaml:"label,omitempty"`
}

func (r Rule) matches(txn model.BankTransaction) bool {
	return r.Match != "" && strings.Contains(strings.ToUpper(txn.Description), strings.ToUpper(r.Match))
}

// Categorizer turns bank transactions into balanced postings between a bank
// account and a counterpart picked by the first matching rule.
type Categorizer struct {
	Bank     string
	Suspense string
	Rules    []Rule
}

// Posting is a categorized bank transaction.
type Posting struct {
	Transaction model.BankTransaction
	Description string
	Counterpart string
	// Matched is false when the suspense account was used.
	Matched     bool
	Imputations []journal.ImputationData
}

// Categorize builds the imputations of txn. Money in debits the bank
// account, money out credits it.
func (c *Categorizer) Categorize(txn model.BankTransaction) (Posting, error) {
	if txn.Amount.IsZero() {
		return Posting{}, fmt.Errorf("%w: %s on %s", ErrZeroAmount, txn.Description, txn.Date.Format(model.DateFormat))
	}
	p := Posting{Transaction: txn, Description: txn.Description}
	for _, r := range c.Rules {
		if r.matches(txn) {
			p.Counterpart, p.Matched = r.Account, true
			if r.Label != "" {
				p.Description = r.Label
			}
			break
		}
	}
	if !p.Matched {
		if c.Suspense == "" {
			return Posting{}, fmt.Errorf("%w: %s on %s", ErrUncategorized, txn.Description, txn.Date.Format(model.DateFormat))
		}
		p.Counterpart = c.Suspense
	}

	amount := model.RoundCurrency(txn.Amount.Abs())
	if txn.Amount.IsPositive() {
		p.Imputations = []journal.ImputationData{
			journal.Debit(c.Bank, amount),
			journal.Credit(p.Counterpart, amount),
		}
	} else {
		p.Imputations = []journal.ImputationData{
			journal.Debit(p.Counterpart, amount),
			journal.Credit(c.Bank, amount),
		}
	}
	return p, nil
}

// CategorizeAll categorizes every transaction, reporting all failures.
func (c *Categorizer) CategorizeAll(txns []model.BankTransaction) ([]Posting, error) {
	var (
		postings []Posting
		errs     error
	)
	for _, txn := range txns {
		p, err := c.Categorize(txn)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		postings = append(postings, p)
	}
	return postings, errs
}

// Post logs postings into j, using the transaction reference as document.
// It stops at the first entry the journal rejects.
func Post(j *journal.Journal, postings []Posting) ([]*journal.Entry, error) {
	entries := make([]*journal.Entry, 0, len(postings))
	for _, p := range postings {
		e, err := j.LogEntry(p.Transaction.Date, p.Description, p.Imputations, p.Transaction.Reference)
		if e != nil {
			entries = append(entries, e)
		}
		if err != nil {
			return entries, fmt.Errorf("posting %s: %w", p.Transaction.Reference, err)
		}
	}
	return entries, nil
}
