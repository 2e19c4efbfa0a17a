package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finsim/internal/accounts"
	"github.com/cleared-dev/finsim/internal/balance"
	"github.com/cleared-dev/finsim/internal/journal"
	"github.com/cleared-dev/finsim/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testSnapshot() Snapshot {
	return Snapshot{
		Date:         model.NewDate(2025, time.January, 15),
		ImputationID: "VT-000001b",
		Account:      "706",
		Side:         model.Credit,
		Amount:       d("100"),
		InnerDebit:   d("0"),
		InnerCredit:  d("350.50"),
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Snapshot{testSnapshot()}))

	snaps, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "706", snaps[0].Account)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Snapshot{testSnapshot()}))

	s2 := testSnapshot()
	s2.Account = "411"
	s2.Side = model.Debit
	require.NoError(t, Append(dir, []Snapshot{s2}))

	snaps, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "706", snaps[0].Account)
	assert.Equal(t, "411", snaps[1].Account)
	assert.Equal(t, model.Debit, snaps[1].Side)
}

func TestRead_NotFound(t *testing.T) {
	snaps, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, snaps)
}

func TestRead_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(Path(dir), []byte(Header+"\n"), 0o644))

	snaps, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, snaps)
}

func TestMarshalUnmarshal(t *testing.T) {
	s := testSnapshot()
	row := MarshalSnapshot(s)
	assert.Equal(t, []string{"2025-01-15", "VT-000001b", "706", "C", "100", "0", "350.5"}, row)

	got, err := UnmarshalSnapshot(row)
	require.NoError(t, err)
	assert.True(t, s.Date.Equal(got.Date.Time))
	assert.Equal(t, s.ImputationID, got.ImputationID)
	assert.True(t, s.InnerCredit.Equal(got.InnerCredit))
	assert.True(t, d("350.5").Equal(got.InnerBalance()))
}

func TestUnmarshalSnapshot_Errors(t *testing.T) {
	_, err := UnmarshalSnapshot([]string{"one", "two"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 7 fields")

	row := MarshalSnapshot(testSnapshot())
	row[colAmount] = "ten"
	_, err = UnmarshalSnapshot(row)
	assert.ErrorContains(t, err, "parsing amount")
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	chart := balance.Mirror(accounts.DefaultChart())
	j := journal.New("VT", "Ventes", chart, journal.WithListener(rec))

	date := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	for _, amount := range []string{"100", "250"} {
		_, err := j.LogEntry(date, "Vente", []journal.ImputationData{
			journal.Debit("411", d(amount)),
			journal.Credit("706", d(amount)),
		}, "")
		require.NoError(t, err)
	}

	snaps := rec.Account("706")
	require.Len(t, snaps, 2)
	assert.True(t, d("100").Equal(snaps[0].InnerCredit))
	assert.True(t, d("350").Equal(snaps[1].InnerCredit))
	// Imputations are sorted by account: 411 is line a, 706 line b.
	assert.Equal(t, "VT-000002b", snaps[1].ImputationID)
	assert.Len(t, rec.Snapshots(), 4)

	// Replays are not recorded by default.
	require.NoError(t, j.Run())
	assert.Len(t, rec.Snapshots(), 4)

	dir := t.TempDir()
	require.NoError(t, rec.Flush(dir))
	assert.Empty(t, rec.Snapshots())
	stored, err := Read(dir)
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestRecorder_WithReplay(t *testing.T) {
	rec := NewRecorder(WithReplay())
	chart := balance.Mirror(accounts.DefaultChart())
	j := journal.New("VT", "Ventes", chart, journal.WithListener(rec))
	_, err := j.LogEntry(time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), "Vente",
		[]journal.ImputationData{journal.Debit("411", d("10")), journal.Credit("706", d("10"))}, "")
	require.NoError(t, err)

	require.NoError(t, j.Run())
	snaps := rec.Account("411")
	require.Len(t, snaps, 2)
	// Run resets the chart before replaying.
	assert.True(t, d("10").Equal(snaps[1].InnerDebit))
}
