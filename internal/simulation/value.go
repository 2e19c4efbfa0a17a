package simulation

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errNotLiteral = errors.New("not a literal value")

var hundred = decimal.NewFromInt(100)

// unitMarkers are stripped from amount literals; they carry no value.
var unitMarkers = []string{"€", "EUR", "$", "USD", "TTC", "HT"}

// ParseValue reads an amount or percentage literal: "1200", "1 200,50 €",
// "$12.5 USD", "20 %". Percentages are returned as fractions.
func ParseValue(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	for _, m := range unitMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return decimal.Zero, errNotLiteral
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errNotLiteral
	}
	if percent {
		v = v.Div(hundred)
	}
	return v, nil
}
