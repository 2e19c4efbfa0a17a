package model

import "strings"

// DefaultDevise is the currency used when a chart definition does not name one.
const DefaultDevise = "EUR"

// Account is an immutable entry of the chart of accounts.
type Account struct {
	Number      string
	Description string
	Devise      string
	Comment     string
	System      string // classification tag, e.g. "base", "abrégé", "développé"
}

// NewAccount returns an Account with the default devise filled in.
func NewAccount(number, description string) *Account {
	return &Account{Number: number, Description: description, Devise: DefaultDevise}
}

// String returns the account number prefixed with '#'.
func (a *Account) String() string {
	return "#" + a.Number
}

// CompareNumbers orders account numbers. Numbers compare as strings, which
// matches numeric order for siblings of a code-length hierarchy.
func CompareNumbers(a, b string) int {
	return strings.Compare(a, b)
}
