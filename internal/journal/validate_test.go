package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finsim/internal/model"
)

// mockAccounts implements AccountChecker for testing.
type mockAccounts struct {
	numbers map[string]bool
}

func (m *mockAccounts) Exists(number string) bool {
	return m.numbers[number]
}

func newMockAccounts(numbers ...string) *mockAccounts {
	m := &mockAccounts{numbers: make(map[string]bool)}
	for _, n := range numbers {
		m.numbers[n] = true
	}
	return m
}

var defaultAccounts = newMockAccounts("512", "706", "44571", "606")

func balancedRecord(seq int, debitAcct, creditAcct, amount string) model.EntryRecord {
	return model.EntryRecord{
		Journal:        "VT",
		SequenceNumber: seq,
		Date:           model.NewDate(2025, 1, 15),
		Description:    "test",
		Debits:         []model.ImputationRecord{{Account: debitAcct, Amount: d(amount)}},
		Credits:        []model.ImputationRecord{{Account: creditAcct, Amount: d(amount)}},
	}
}

func TestValidateRecords_Balanced(t *testing.T) {
	records := []model.EntryRecord{
		balancedRecord(1, "512", "706", "100.00"),
		balancedRecord(3, "606", "512", "12.50"),
	}
	errs := ValidateRecords(records, defaultAccounts)
	assert.Empty(t, errs, "gaps in sequence numbers are legal")
}

func TestValidateRecords_Unbalanced(t *testing.T) {
	rec := balancedRecord(1, "512", "706", "100.00")
	rec.Credits[0].Amount = d("99.00")
	errs := ValidateRecords([]model.EntryRecord{rec}, defaultAccounts)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnbalancedEntry)
	assert.Equal(t, "VT-000001", errs[0].EntryID)
	assert.Contains(t, errs[0].Error(), "100.00")
}

func TestValidateRecords_UnknownAccount(t *testing.T) {
	errs := ValidateRecords([]model.EntryRecord{balancedRecord(1, "512", "999", "1")}, defaultAccounts)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrAccountNotFound)
}

func TestValidateRecords_Precision(t *testing.T) {
	errs := ValidateRecords([]model.EntryRecord{balancedRecord(1, "512", "706", "1.005")}, defaultAccounts)
	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrPrecision)
	}
}

func TestValidateRecords_Sequence(t *testing.T) {
	records := []model.EntryRecord{
		balancedRecord(1, "512", "706", "1"),
		balancedRecord(1, "512", "706", "2"),
		balancedRecord(0, "512", "706", "3"),
	}
	errs := ValidateRecords(records, defaultAccounts)
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], ErrInvalidSequence)
	assert.ErrorIs(t, errs[1], ErrDuplicateSequence)

	// Same number in two journals is fine.
	other := balancedRecord(1, "512", "706", "1")
	other.Journal = "BQ"
	assert.Empty(t, ValidateRecords([]model.EntryRecord{records[0], other}, defaultAccounts))
}

func TestValidateRecords_ReconciledBeforeValidation(t *testing.T) {
	rec := balancedRecord(1, "512", "706", "1")
	now := time.Now()
	rec.ReconciliationDate = &now
	errs := ValidateRecords([]model.EntryRecord{rec}, defaultAccounts)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrNotValidated)
}

func TestValidateRecords_Duplicated(t *testing.T) {
	rec := balancedRecord(1, "512", "512", "1")
	errs := ValidateRecords([]model.EntryRecord{rec}, defaultAccounts)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrDuplicatedEntry)
}
