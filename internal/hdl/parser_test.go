package hdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"-2 * 3", "(-2 * 3)"},
		{"--706B", "--706B"},
		{"10.5 / 2", "(10.5 / 2)"},
		{"a = 706C - [600:609]D", "a = (706C - [600:609]D)"},
		{"max(1, 2, x)", "max(1, 2, x)"},
		{"f()", "f()"},
		{"pos(12B + 13B)", "pos((12B + 13B))"},
		{"  x_1\t*y  ", "(x_1 * y)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog, err := Parse(tt.input)
			require.NoError(t, err)
			require.Len(t, prog, 1)
			assert.Equal(t, tt.want, prog[0].String())
		})
	}
}

func TestParse_Nodes(t *testing.T) {
	prog := MustParse("r = [700:708]C + 512D")
	a, ok := prog[0].(*Assignation)
	require.True(t, ok)
	assert.Equal(t, "r", a.Name)

	b, ok := a.Value.(*Binary)
	require.True(t, ok)
	assert.Equal(t, Add, b.Op)
	assert.Equal(t, &AccountInterval{Low: 700, High: 708, Figure: FigureCredit}, b.Left)
	assert.Equal(t, &AccountRef{Number: "512", Figure: FigureDebit}, b.Right)
}

func TestParse_Statements(t *testing.T) {
	prog, err := Parse("a = 1; b = a * 2 # double\n\n# comment only\nb + 706B;\n")
	require.NoError(t, err)
	require.Len(t, prog, 3)
	assert.Equal(t, "a = 1\nb = (a * 2)\n(b + 706B)", prog.String())

	empty, err := Parse("  \n# nothing\n;;")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		input      string
		line, col  int
		msgContain string
	}{
		{"1 +", 1, 4, "end of input"},
		{"a = (1", 1, 7, "expected ')'"},
		{"1 $ 2", 1, 3, "illegal character"},
		{"x\n  706X", 2, 6, "after number"},
		{"[708:700]D", 1, 1, "empty account interval"},
		{"[700:]D", 1, 6, "malformed"},
		{"[700:708]", 1, 10, "followed by D, C or B"},
		{"1 2", 1, 3, "unexpected"},
		{"706 C", 1, 5, "unexpected"},
		{"max(1 2)", 1, 7, "expected ',' or ')'"},
		{"= 3", 1, 1, "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.ErrorIs(t, err, ErrSyntax)
			var serr *SyntaxError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.line, serr.Line, "line")
			assert.Equal(t, tt.col, serr.Column, "column")
			assert.Contains(t, serr.Error(), tt.msgContain)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("1 +") })
}

func TestVariables(t *testing.T) {
	prog := MustParse("a = b + c * b; d = a + e")
	assert.Equal(t, []string{"b", "c"}, Variables(prog[0]))
	assert.Equal(t, []string{"a", "e"}, Variables(prog[1]))
	assert.Equal(t, []string{"b", "c", "e"}, prog.Variables())
	assert.Equal(t, []string{"a", "d"}, prog.Assigned())
	assert.Empty(t, Variables(MustParse("706C + 1")[0]))
}
