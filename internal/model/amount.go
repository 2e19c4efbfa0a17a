package model

import "github.com/shopspring/decimal"

// CurrencyPlaces is the precision used to compare debit and credit totals.
const CurrencyPlaces = 2

// RoundCurrency rounds d to currency precision.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}
