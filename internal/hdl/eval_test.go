package hdl

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finsim/internal/accounts"
	"github.com/cleared-dev/finsim/internal/balance"
	"github.com/cleared-dev/finsim/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// saleChart posts debit 512 100 / credit 706 80 / credit 44571 20 and a
// purchase debit 606 30 / credit 401 30.
func saleChart(t *testing.T) *balance.Chart {
	t.Helper()
	c := balance.Mirror(accounts.DefaultChart())
	apply := func(number string, side model.Side, amount string) {
		b, err := c.Get(number)
		require.NoError(t, err)
		require.NoError(t, b.Apply(side, d(amount)))
	}
	apply("512", model.Debit, "100")
	apply("706", model.Credit, "80")
	apply("44571", model.Credit, "20")
	apply("606", model.Debit, "30")
	apply("401", model.Credit, "30")
	return c
}

func capture() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})), &buf
}

func eval(t *testing.T, e *NumericEvaluator, text string) decimal.Decimal {
	t.Helper()
	v, err := e.Run(MustParse(text))
	require.NoError(t, err)
	return v
}

func TestNumeric_Accounts(t *testing.T) {
	e := NewNumericEvaluator(saleChart(t))
	tests := []struct {
		input string
		want  string
	}{
		{"706C", "80"},
		{"706D", "0"},
		{"512B", "-100"},
		{"512D", "100"},
		{"7C", "80"},
		{"44571C + 706C", "100"},
		{"[700:708]C", "80"},
		{"[600:609]D - [400:401]C", "0"},
		{"-512B / 4", "25"},
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"10 / 4", "2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := eval(t, e, tt.input)
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestNumeric_IntervalSkipsMissing(t *testing.T) {
	chart, err := accounts.FromList("c", []accounts.Entry{
		{Account: model.Account{Number: "7"}},
		{Account: model.Account{Number: "70"}, Parent: "7"},
		{Account: model.Account{Number: "706"}, Parent: "70"},
	})
	require.NoError(t, err)
	c := balance.Mirror(chart)
	b, _ := c.Lookup("706")
	require.NoError(t, b.ApplyDebit(d("80")))

	logger, buf := capture()
	e := NewNumericEvaluator(c, WithLogger(logger))
	assert.True(t, d("80").Equal(eval(t, e, "[700:708]D")))
	assert.Contains(t, buf.String(), "account interval skips missing accounts")
	assert.Contains(t, buf.String(), "missing=8")
	assert.Equal(t, 1, strings.Count(buf.String(), "level=WARN"))

	buf.Reset()
	assert.True(t, d("80").Equal(eval(t, e, "[706:706]D")))
	assert.Empty(t, buf.String())

	assert.True(t, eval(t, e, "[800:808]D").IsZero())
	assert.Contains(t, buf.String(), "matches no account")
}

func TestNumeric_MissingAccountIsZero(t *testing.T) {
	logger, buf := capture()
	e := NewNumericEvaluator(saleChart(t), WithLogger(logger))
	assert.True(t, d("80").Equal(eval(t, e, "999D + 706C")))
	assert.Contains(t, buf.String(), "account does not exist")
	assert.Contains(t, buf.String(), "account=999")
}

func TestNumeric_Program(t *testing.T) {
	e := NewNumericEvaluator(saleChart(t))
	got := eval(t, e, "vat = 44571C; sales = 706C\ntotal = vat + sales\ntotal * 2")
	assert.True(t, d("200").Equal(got))

	total, ok := e.Get("total")
	require.True(t, ok)
	assert.True(t, d("100").Equal(total))
	assert.Len(t, e.Variables(), 3)

	// The scope is shared across runs.
	assert.True(t, d("101").Equal(eval(t, e, "total + 1")))

	e.Set("rate", d("0.2"))
	assert.True(t, d("16").Equal(eval(t, e, "sales * rate")))

	v, err := e.Run(nil)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestNumeric_Errors(t *testing.T) {
	e := NewNumericEvaluator(saleChart(t))
	tests := []struct {
		input string
		err   error
	}{
		{"x + 1", ErrUndefinedVariable},
		{"1 / 0", ErrDivisionByZero},
		{"706C / (512B + 100)", ErrDivisionByZero},
		{"foo(1)", ErrUnknownFunction},
		{"abs()", ErrArity},
		{"abs(1, 2)", ErrArity},
		{"min()", ErrArity},
		{"round(1, 2, 3)", ErrArity},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := e.Run(MustParse(tt.input))
			require.ErrorIs(t, err, tt.err)
		})
	}

	// A failing statement leaves earlier assignments in place.
	_, err := e.Run(MustParse("a = 1; b = a / 0"))
	require.ErrorIs(t, err, ErrDivisionByZero)
	_, ok := e.Get("a")
	assert.True(t, ok)
	_, ok = e.Get("b")
	assert.False(t, ok)
}

func TestNumeric_Builtins(t *testing.T) {
	e := NewNumericEvaluator(saleChart(t))
	tests := []struct {
		input string
		want  string
	}{
		{"abs(-3)", "3"},
		{"abs(512B)", "100"},
		{"min(3, 1, 2)", "1"},
		{"max(3, 1, 2)", "3"},
		{"max(7)", "7"},
		{"round(10 / 3)", "3.33"},
		{"round(1.23456, 3)", "1.235"},
		{"pos(-5)", "0"},
		{"pos(5)", "5"},
		{"pos(512B)", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := eval(t, e, tt.input)
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestNumeric_WithFunction(t *testing.T) {
	double := func(args []decimal.Decimal) (decimal.Decimal, error) {
		return args[0].Mul(decimal.NewFromInt(2)), nil
	}
	e := NewNumericEvaluator(saleChart(t), WithFunction("double", double), WithFunction("abs", double))
	assert.True(t, d("160").Equal(eval(t, e, "double(706C)")))
	assert.True(t, d("-2").Equal(eval(t, e, "abs(-1)")))
}

func TestSet(t *testing.T) {
	logger, buf := capture()
	e := NewSetEvaluator(saleChart(t), WithLogger(logger))

	got, err := e.Run(MustParse("706C + 44571C - 999D + [600:609]D * 2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"44571", "606", "607", "706"}, got.Sorted())
	assert.Contains(t, buf.String(), "account=999")

	got, err = e.Run(MustParse("a = 706C; -a + max(512B, 1)"))
	require.NoError(t, err)
	assert.Equal(t, []string{"512", "706"}, got.Sorted())
	assert.True(t, got.Contains("512"))

	got, err = e.Run(MustParse("1 + 2"))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = e.Run(MustParse("undefined + 1"))
	require.ErrorIs(t, err, ErrUndefinedVariable)

	// Unknown functions are irrelevant to which accounts are read.
	got, err = e.Run(MustParse("whatever(706C)"))
	require.NoError(t, err)
	assert.Equal(t, []string{"706"}, got.Sorted())
}

func TestAccountSet(t *testing.T) {
	a := NewAccountSet("1", "2")
	b := NewAccountSet("2", "3")
	u := a.Union(b)
	assert.Equal(t, []string{"1", "2", "3"}, u.Sorted())
	assert.Len(t, a, 2, "union does not mutate")

	var empty AccountSet
	assert.Equal(t, []string{"2", "3"}, empty.Union(b).Sorted())
}
