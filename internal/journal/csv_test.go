package journal

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finsim/internal/model"
)

func TestCSVRoundTrip(t *testing.T) {
	validated := time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)
	first := balancedRecord(1, "512", "706", "100.00")
	first.Document = "F-001"
	first.ValidationDate = &validated
	first.ReconciliationID = "R-1"
	first.ReconciliationDate = &validated
	second := model.EntryRecord{
		Journal:        "VT",
		SequenceNumber: 2,
		Date:           model.NewDate(2025, 1, 20),
		Description:    "sale, with comma",
		Debits:         []model.ImputationRecord{{Account: "512", Amount: d("120")}},
		Credits: []model.ImputationRecord{
			{Account: "44571", Amount: d("20")},
			{Account: "706", AnalyticAccount: "A1", Amount: d("100")},
		},
	}
	records := []model.EntryRecord{first, second}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	got, err := ReadRecords(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	if diff := cmp.Diff(records, got, cmp.Comparer(func(a, b model.ImputationRecord) bool {
		return a.Account == b.Account && a.AnalyticAccount == b.AnalyticAccount && a.Amount.Equal(b.Amount)
	})); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, nil))
	require.NoError(t, AppendRecords(&buf, []model.EntryRecord{balancedRecord(1, "512", "706", "5")}))
	require.NoError(t, AppendRecords(&buf, []model.EntryRecord{balancedRecord(2, "606", "512", "5")}))

	got, err := ReadRecords(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "606", got[1].Debits[0].Account)
}

func TestUnmarshalRow_Errors(t *testing.T) {
	valid := MarshalRows(balancedRecord(1, "512", "706", "5"))[0]
	tests := []struct {
		name string
		col  int
		val  string
	}{
		{"sequence", colSeq, "x"},
		{"date", colDate, "15/01/2025"},
		{"side", colSide, "X"},
		{"amount", colAmount, "abc"},
		{"validation", colValidation, "yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := append([]string(nil), valid...)
			row[tt.col] = tt.val
			_, _, _, err := UnmarshalRow(row)
			assert.Error(t, err)
		})
	}
	_, _, _, err := UnmarshalRow(valid[:3])
	assert.Error(t, err)
}

func TestReadTestdata(t *testing.T) {
	f, err := os.Open("../../testdata/journal.csv")
	require.NoError(t, err)
	defer f.Close()

	records, err := ReadRecords(f)
	require.NoError(t, err)
	require.Len(t, records, 3)

	j := newJournal(t)
	require.NoError(t, j.Load(records))
	require.NoError(t, j.Run())
	assert.True(t, d("1200").Equal(balanceOf(t, j, "706").Credit()))
	assert.Empty(t, ValidateRecords(records, j.Chart().Accounts()))
}
