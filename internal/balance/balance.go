// Package balance holds the mutable per-period projection of an account
// chart: accumulated debits and credits with aggregated subtree balances.
package balance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finsim/internal/hierarchy"
	"github.com/cleared-dev/finsim/internal/model"
)

// ErrNegativeAmount is returned when a negative amount is applied.
var ErrNegativeAmount = errors.New("negative amount")

// AccountBalance accumulates the imputations of one account. Aggregated
// values are recomputed lazily after an imputation on the account or one of
// its descendants.
type AccountBalance struct {
	account *model.Account
	node    *hierarchy.Node[string, *AccountBalance]

	innerDebit  decimal.Decimal
	innerCredit decimal.Decimal

	innerValid   bool
	innerBalance decimal.Decimal

	valid   bool
	debit   decimal.Decimal
	credit  decimal.Decimal
	balance decimal.Decimal
}

func newAccountBalance(account *model.Account) *AccountBalance {
	b := &AccountBalance{account: account}
	b.node = hierarchy.NewNode(account.Number, b)
	return b
}

// Account returns the underlying account.
func (b *AccountBalance) Account() *model.Account { return b.account }

// Number returns the account number.
func (b *AccountBalance) Number() string { return b.account.Number }

func (b *AccountBalance) String() string { return b.account.String() }

// Parent returns the balance of the parent account, or nil for a root.
func (b *AccountBalance) Parent() *AccountBalance {
	if p := b.node.Parent(); p != nil {
		return p.Value
	}
	return nil
}

// Children returns the balances of the direct sub-accounts.
func (b *AccountBalance) Children() []*AccountBalance {
	children := b.node.Children()
	res := make([]*AccountBalance, len(children))
	for i, c := range children {
		res[i] = c.Value
	}
	return res
}

// ApplyDebit adds amount to the inner debit.
func (b *AccountBalance) ApplyDebit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("debit %s on %s: %w", amount, b, ErrNegativeAmount)
	}
	b.innerDebit = b.innerDebit.Add(amount)
	b.invalidateInner()
	return nil
}

// ApplyCredit adds amount to the inner credit.
func (b *AccountBalance) ApplyCredit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("credit %s on %s: %w", amount, b, ErrNegativeAmount)
	}
	b.innerCredit = b.innerCredit.Add(amount)
	b.invalidateInner()
	return nil
}

// Apply adds amount on the given side.
func (b *AccountBalance) Apply(side model.Side, amount decimal.Decimal) error {
	if side == model.Debit {
		return b.ApplyDebit(amount)
	}
	return b.ApplyCredit(amount)
}

// ForceBalance replaces the inner values, typically with opening balances.
func (b *AccountBalance) ForceBalance(debit, credit decimal.Decimal) error {
	if debit.IsNegative() || credit.IsNegative() {
		return fmt.Errorf("forcing %s: %w", b, ErrNegativeAmount)
	}
	b.innerDebit = debit
	b.innerCredit = credit
	b.invalidateInner()
	return nil
}

// InnerDebit returns the sum of debits posted directly to the account.
func (b *AccountBalance) InnerDebit() decimal.Decimal { return b.innerDebit }

// InnerCredit returns the sum of credits posted directly to the account.
func (b *AccountBalance) InnerCredit() decimal.Decimal { return b.innerCredit }

// InnerBalance returns InnerCredit - InnerDebit.
func (b *AccountBalance) InnerBalance() decimal.Decimal {
	if !b.innerValid {
		b.innerBalance = b.innerCredit.Sub(b.innerDebit)
		b.innerValid = true
	}
	return b.innerBalance
}

// HasImputations reports whether anything was posted directly to the account.
func (b *AccountBalance) HasImputations() bool {
	return !b.innerDebit.IsZero() || !b.innerCredit.IsZero()
}

// Debit returns the debits of the account and its descendants.
func (b *AccountBalance) Debit() decimal.Decimal {
	b.compute()
	return b.debit
}

// Credit returns the credits of the account and its descendants.
func (b *AccountBalance) Credit() decimal.Decimal {
	b.compute()
	return b.credit
}

// Balance returns Credit - Debit.
func (b *AccountBalance) Balance() decimal.Decimal {
	b.compute()
	return b.balance
}

func (b *AccountBalance) compute() {
	if b.valid {
		return
	}
	debit, credit := b.innerDebit, b.innerCredit
	for _, c := range b.node.Children() {
		debit = debit.Add(c.Value.Debit())
		credit = credit.Add(c.Value.Credit())
	}
	b.debit, b.credit = debit, credit
	b.balance = credit.Sub(debit)
	b.valid = true
}

func (b *AccountBalance) invalidateInner() {
	b.innerValid = false
	for n := b.node; n != nil; n = n.Parent() {
		n.Value.valid = false
	}
}

func (b *AccountBalance) reset() {
	b.innerDebit = decimal.Zero
	b.innerCredit = decimal.Zero
	b.innerValid = false
	b.valid = false
}
