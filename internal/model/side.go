package model

import "fmt"

// Side is the polarity of an imputation.
type Side int

const (
	Debit Side = iota
	Credit
)

// String returns the one-letter code used in records and logs.
func (s Side) String() string {
	switch s {
	case Debit:
		return "D"
	case Credit:
		return "C"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// ParseSide parses "D"/"C" (case-insensitive, long forms accepted).
func ParseSide(s string) (Side, error) {
	switch s {
	case "D", "d", "debit", "Debit":
		return Debit, nil
	case "C", "c", "credit", "Credit":
		return Credit, nil
	}
	return 0, fmt.Errorf("invalid side %q", s)
}
