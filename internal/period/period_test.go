package period

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finsim/internal/accounts"
	"github.com/cleared-dev/finsim/internal/journal"
)

var (
	start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	stop  = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	defs  = []JournalDef{{Label: "VT", Description: "Ventes"}, {Label: "HA", Description: "Achats"}}
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newPeriod(t *testing.T) *Period {
	t.Helper()
	p, err := New(accounts.DefaultChart(), defs, start, stop)
	require.NoError(t, err)
	return p
}

func post(t *testing.T, p *Period) {
	t.Helper()
	vt, err := p.Journal("VT")
	require.NoError(t, err)
	ha, err := p.Journal("HA")
	require.NoError(t, err)

	_, err = vt.LogEntry(start.AddDate(0, 1, 0), "sale", []journal.ImputationData{
		journal.Debit("512", d("120")),
		journal.Credit("706", d("100")),
		journal.Credit("44571", d("20")),
	}, "")
	require.NoError(t, err)
	_, err = ha.LogEntry(start.AddDate(0, 2, 0), "purchase", []journal.ImputationData{
		journal.Debit("606", d("50")),
		journal.Credit("512", d("50")),
	}, "")
	require.NoError(t, err)
}

func TestJournalsShareChart(t *testing.T) {
	p := newPeriod(t)
	post(t, p)

	bank, err := p.Chart().Get("512")
	require.NoError(t, err)
	assert.True(t, d("-70").Equal(bank.Balance()))

	var labels []string
	for j := range p.Journals() {
		labels = append(labels, j.Label())
		assert.Same(t, p.Chart(), j.Chart())
	}
	assert.Equal(t, []string{"VT", "HA"}, labels)
}

func TestRun(t *testing.T) {
	p := newPeriod(t)
	post(t, p)
	require.NoError(t, p.Run())
	require.NoError(t, p.Run())

	bank, _ := p.Chart().Get("512")
	assert.True(t, d("120").Equal(bank.Debit()))
	assert.True(t, d("50").Equal(bank.Credit()))
}

func TestRecordsLoad(t *testing.T) {
	p := newPeriod(t)
	post(t, p)
	records := p.Records()
	require.Len(t, records, 2)

	other := newPeriod(t)
	require.NoError(t, other.Load(records))
	require.NoError(t, other.Run())
	for b := range p.Chart().All() {
		ob, err := other.Chart().Get(b.Number())
		require.NoError(t, err)
		assert.True(t, b.Balance().Equal(ob.Balance()), b.Number())
	}

	records[0].Journal = "OD"
	require.ErrorIs(t, newPeriod(t).Load(records), ErrUnknownJournal)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(accounts.DefaultChart(), defs, stop, start)
	require.Error(t, err)

	_, err = New(accounts.DefaultChart(), []JournalDef{{Label: "VT"}, {Label: "VT"}}, start, stop)
	require.Error(t, err)

	_, err = New(accounts.DefaultChart(), []JournalDef{{}}, start, stop)
	require.Error(t, err)

	p := newPeriod(t)
	_, err = p.Journal("OD")
	require.ErrorIs(t, err, ErrUnknownJournal)
}

func TestContains(t *testing.T) {
	p := newPeriod(t)
	assert.True(t, p.Contains(start))
	assert.True(t, p.Contains(stop))
	assert.False(t, p.Contains(stop.AddDate(0, 0, 1)))
	assert.False(t, p.Contains(start.Add(-time.Second)))
}

func TestAnalyticChart(t *testing.T) {
	p, err := New(accounts.DefaultChart(), defs, start, stop, WithAnalyticChart(accounts.DefaultChart()))
	require.NoError(t, err)
	require.NotNil(t, p.AnalyticChart())

	vt, _ := p.Journal("VT")
	assert.Same(t, p.AnalyticChart(), vt.AnalyticChart())
}
