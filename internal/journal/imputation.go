package journal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finsim/internal/balance"
	"github.com/cleared-dev/finsim/internal/model"
)

// ImputationData is an imputation keyed by account number, not yet bound to
// a balance chart.
type ImputationData struct {
	Account         string
	AnalyticAccount string
	Amount          decimal.Decimal
	Side            model.Side
}

// Debit returns a debit line on account.
func Debit(account string, amount decimal.Decimal) ImputationData {
	return ImputationData{Account: account, Amount: amount, Side: model.Debit}
}

// Credit returns a credit line on account.
func Credit(account string, amount decimal.Decimal) ImputationData {
	return ImputationData{Account: account, Amount: amount, Side: model.Credit}
}

// WithAnalytic returns a copy of d also imputed on an analytic account.
func (d ImputationData) WithAnalytic(account string) ImputationData {
	d.AnalyticAccount = account
	return d
}

// Resolve binds d to the balances of chart and analytic. Unknown accounts
// fail with ErrAccountNotFound.
func (d ImputationData) Resolve(chart, analytic *balance.Chart) (*Imputation, error) {
	acct, err := chart.Get(d.Account)
	if err != nil {
		return nil, err
	}
	imp := &Imputation{account: acct, amount: d.Amount, side: d.Side}
	if d.AnalyticAccount != "" {
		if analytic == nil {
			return nil, fmt.Errorf("analytic account %s without analytic chart: %w", d.AnalyticAccount, ErrAccountNotFound)
		}
		if imp.analytic, err = analytic.Get(d.AnalyticAccount); err != nil {
			return nil, fmt.Errorf("analytic: %w", err)
		}
	}
	return imp, nil
}

func (d ImputationData) line() line {
	return line{account: d.Account, side: d.Side, amount: d.Amount}
}

// Imputation is one debit or credit line of a posted entry.
type Imputation struct {
	entry    *Entry
	account  *balance.AccountBalance
	analytic *balance.AccountBalance
	amount   decimal.Decimal
	side     model.Side
}

// Entry returns the owning entry.
func (i *Imputation) Entry() *Entry { return i.entry }

// Account returns the imputed balance.
func (i *Imputation) Account() *balance.AccountBalance { return i.account }

// AnalyticAccount returns the analytic balance, or nil.
func (i *Imputation) AnalyticAccount() *balance.AccountBalance { return i.analytic }

func (i *Imputation) Amount() decimal.Decimal { return i.amount }

func (i *Imputation) Side() model.Side { return i.side }

func (i *Imputation) IsDebit() bool { return i.side == model.Debit }

func (i *Imputation) IsCredit() bool { return i.side == model.Credit }

func (i *Imputation) String() string {
	return fmt.Sprintf("%s %10s: %10s", i.side, i.account.Number(), i.amount.StringFixed(2))
}

// Data returns the unresolved form of the imputation.
func (i *Imputation) Data() ImputationData {
	d := ImputationData{Account: i.account.Number(), Amount: i.amount, Side: i.side}
	if i.analytic != nil {
		d.AnalyticAccount = i.analytic.Number()
	}
	return d
}

func (i *Imputation) record() model.ImputationRecord {
	d := i.Data()
	return model.ImputationRecord{Account: d.Account, AnalyticAccount: d.AnalyticAccount, Amount: d.Amount}
}

func (i *Imputation) line() line {
	return line{account: i.account.Number(), side: i.side, amount: i.amount}
}

func (i *Imputation) apply() error {
	if err := i.account.Apply(i.side, i.amount); err != nil {
		return err
	}
	if i.analytic != nil {
		return i.analytic.Apply(i.side, i.amount)
	}
	return nil
}
