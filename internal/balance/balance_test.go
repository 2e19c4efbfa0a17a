package balance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finsim/internal/accounts"
	"github.com/cleared-dev/finsim/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newChart(t *testing.T) *Chart {
	t.Helper()
	return Mirror(accounts.DefaultChart())
}

func get(t *testing.T, c *Chart, number string) *AccountBalance {
	t.Helper()
	b, err := c.Get(number)
	require.NoError(t, err)
	return b
}

func TestMirror_Isomorphic(t *testing.T) {
	src := accounts.DefaultChart()
	c := Mirror(src)
	assert.Equal(t, src.Len(), c.Len())

	var want, got []string
	for a := range src.All() {
		want = append(want, a.Number)
	}
	for b := range c.All() {
		got = append(got, b.Number())
		parent := ""
		if p := b.Parent(); p != nil {
			parent = p.Number()
		}
		assert.Equal(t, src.ParentNumber(b.Number()), parent)
	}
	assert.Equal(t, want, got)
}

func TestApply_PropagatesToAncestors(t *testing.T) {
	c := newChart(t)
	bank := get(t, c, "512")
	class5 := get(t, c, "5")

	// Warm the caches before posting.
	assert.True(t, class5.Balance().IsZero())

	require.NoError(t, bank.ApplyDebit(d("100")))
	assert.True(t, d("100").Equal(class5.Debit()))
	assert.True(t, d("-100").Equal(class5.Balance()))
	assert.True(t, class5.InnerDebit().IsZero())
	assert.False(t, class5.HasImputations())
	assert.True(t, bank.HasImputations())

	require.NoError(t, bank.ApplyCredit(d("30")))
	assert.True(t, d("-70").Equal(get(t, c, "51").Balance()))
	assert.True(t, d("-70").Equal(bank.InnerBalance()))
}

func TestBalance_SubtreeInvariant(t *testing.T) {
	c := newChart(t)
	posts := []struct {
		number string
		side   model.Side
		amount string
	}{
		{"6", model.Debit, "3"},
		{"606", model.Debit, "12.5"},
		{"62", model.Credit, "4"},
		{"626", model.Debit, "7"},
		{"641", model.Credit, "1.25"},
	}
	for _, p := range posts {
		require.NoError(t, get(t, c, p.number).Apply(p.side, d(p.amount)))
	}

	for b := range c.All() {
		want := b.InnerBalance()
		for _, child := range b.Children() {
			want = want.Add(child.Balance())
		}
		assert.True(t, want.Equal(b.Balance()), "account %s: want %s, got %s", b.Number(), want, b.Balance())
		assert.True(t, b.Credit().Sub(b.Debit()).Equal(b.Balance()))
	}
	assert.True(t, d("-17.25").Equal(get(t, c, "6").Balance()))
}

func TestBalance_Idempotent(t *testing.T) {
	c := newChart(t)
	require.NoError(t, get(t, c, "706").ApplyCredit(d("80")))
	root := get(t, c, "7")
	first := root.Balance()
	assert.True(t, first.Equal(root.Balance()))
	assert.True(t, root.Credit().Equal(root.Credit()))
}

func TestApply_Negative(t *testing.T) {
	c := newChart(t)
	bank := get(t, c, "512")
	err := bank.ApplyDebit(d("-10"))
	require.ErrorIs(t, err, ErrNegativeAmount)
	err = bank.ApplyCredit(d("-0.01"))
	require.ErrorIs(t, err, ErrNegativeAmount)
	assert.True(t, bank.Debit().IsZero())
	assert.True(t, bank.Credit().IsZero())
	assert.False(t, bank.HasImputations())
}

func TestForceBalance(t *testing.T) {
	c := newChart(t)
	capital := get(t, c, "101")
	require.NoError(t, capital.ApplyCredit(d("5")))
	require.NoError(t, capital.ForceBalance(d("0"), d("1000")))
	assert.True(t, d("1000").Equal(get(t, c, "1").Balance()))

	require.ErrorIs(t, capital.ForceBalance(d("-1"), d("0")), ErrNegativeAmount)
	assert.True(t, d("1000").Equal(capital.Credit()))
}

func TestReset(t *testing.T) {
	c := newChart(t)
	require.NoError(t, get(t, c, "512").ApplyDebit(d("100")))
	require.NoError(t, get(t, c, "706").ApplyCredit(d("100")))
	c.Refresh()

	c.Reset()
	for b := range c.All() {
		assert.True(t, b.Debit().IsZero(), b.Number())
		assert.True(t, b.Credit().IsZero(), b.Number())
		assert.True(t, b.InnerBalance().IsZero(), b.Number())
	}
}

func TestRefresh(t *testing.T) {
	c := newChart(t)
	require.NoError(t, get(t, c, "44571").ApplyCredit(d("20")))
	c.Refresh()
	for b := range c.All() {
		assert.True(t, b.valid, b.Number())
		assert.True(t, b.innerValid, b.Number())
	}
	assert.True(t, d("20").Equal(get(t, c, "4").Balance()))
}

func TestGet_NotFound(t *testing.T) {
	c := newChart(t)
	_, err := c.Get("999")
	require.ErrorIs(t, err, accounts.ErrAccountNotFound)
	_, ok := c.Lookup("999")
	assert.False(t, ok)
	assert.Len(t, c.Roots(), 7)
	assert.Equal(t, accounts.DefaultChartName, c.Name())
}
