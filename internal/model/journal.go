package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DateFormat is the layout of entry dates in serialized records.
const DateFormat = "2006-01-02"

// ImputationRecord is one debit or credit line of a serialized entry.
type ImputationRecord struct {
	Account         string          `json:"account"`
	AnalyticAccount string          `json:"analytic_account,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
}

// EntryRecord is the serialized form of a posted journal entry. It is the
// only shape stores persist; reloading it and replaying the journal must
// reproduce identical balances.
type EntryRecord struct {
	Journal            string             `json:"journal"`
	SequenceNumber     int                `json:"sequence_number"`
	Date               Date               `json:"date"`
	Description        string             `json:"description"`
	Document           string             `json:"document,omitempty"`
	ValidationDate     *time.Time         `json:"validation_date"`
	ReconciliationID   string             `json:"reconciliation_id,omitempty"`
	ReconciliationDate *time.Time         `json:"reconciliation_date"`
	Debits             []ImputationRecord `json:"debits"`
	Credits            []ImputationRecord `json:"credits"`
}

// Date is a calendar day serialized as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate returns the UTC midnight Date for y/m/d.
func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateFormat)
}

// MarshalJSON shadows time.Time's RFC 3339 encoding.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses a quoted ISO date.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseDate(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = parsed
	return nil
}
