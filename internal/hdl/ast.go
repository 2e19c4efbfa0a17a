// Package hdl implements the small expression language used to compute
// report lines from account balances.
//
//	net = 706C - 606D          # assignment
//	[700:708]C * 0.2; pos(12B) # interval, call
package hdl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Node is an element of the syntax tree. Trees are immutable once parsed.
type Node interface {
	fmt.Stringer
	node()
}

// Figure selects which balance value an account reference reads.
type Figure byte

const (
	FigureDebit   Figure = 'D'
	FigureCredit  Figure = 'C'
	FigureBalance Figure = 'B'
)

// Variable reads a variable of the evaluation scope.
type Variable struct {
	Name string
}

// AccountRef reads one account, e.g. 706C.
type AccountRef struct {
	Number string
	Figure Figure
}

// AccountInterval sums the accounts numbered Low to High inclusive, e.g.
// [700:708]D.
type AccountInterval struct {
	Low, High int
	Figure    Figure
}

// Constant is a decimal literal.
type Constant struct {
	Value decimal.Decimal
}

// Operator is a binary arithmetic operator.
type Operator byte

const (
	Add Operator = '+'
	Sub Operator = '-'
	Mul Operator = '*'
	Div Operator = '/'
)

// Binary applies Op to Left and Right.
type Binary struct {
	Op          Operator
	Left, Right Node
}

// Negation is the unary minus.
type Negation struct {
	Operand Node
}

// Call invokes a function.
type Call struct {
	Name string
	Args []Node
}

// Assignation evaluates Value and stores it in the variable Name.
type Assignation struct {
	Name  string
	Value Node
}

func (*Variable) node()        {}
func (*AccountRef) node()      {}
func (*AccountInterval) node() {}
func (*Constant) node()        {}
func (*Binary) node()          {}
func (*Negation) node()        {}
func (*Call) node()            {}
func (*Assignation) node()     {}

func (v *Variable) String() string { return v.Name }

func (a *AccountRef) String() string { return a.Number + string(a.Figure) }

func (a *AccountInterval) String() string {
	return fmt.Sprintf("[%d:%d]%c", a.Low, a.High, a.Figure)
}

func (c *Constant) String() string { return c.Value.String() }

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %c %s)", b.Left, b.Op, b.Right)
}

func (n *Negation) String() string { return "-" + n.Operand.String() }

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

func (a *Assignation) String() string { return a.Name + " = " + a.Value.String() }

// Program is a list of statements sharing one variable scope.
type Program []Node

func (p Program) String() string {
	stmts := make([]string, len(p))
	for i, s := range p {
		stmts[i] = s.String()
	}
	return strings.Join(stmts, "\n")
}

// Assigned returns the variables the program assigns, in order.
func (p Program) Assigned() []string {
	var res []string
	for _, s := range p {
		if a, ok := s.(*Assignation); ok && !slices.Contains(res, a.Name) {
			res = append(res, a.Name)
		}
	}
	return res
}

// Variables returns the variables read by the program, in order of first
// appearance, excluding those assigned by an earlier statement.
func (p Program) Variables() []string {
	var res, assigned []string
	for _, s := range p {
		for _, v := range Variables(s) {
			if !slices.Contains(res, v) && !slices.Contains(assigned, v) {
				res = append(res, v)
			}
		}
		if a, ok := s.(*Assignation); ok {
			assigned = append(assigned, a.Name)
		}
	}
	return res
}

// Variables returns the variables read by node, in order of first
// appearance. The destination of an assignation is not read.
func Variables(node Node) []string {
	var res []string
	walk(node, func(n Node) {
		if v, ok := n.(*Variable); ok && !slices.Contains(res, v.Name) {
			res = append(res, v.Name)
		}
	})
	return res
}

func walk(node Node, fn func(Node)) {
	fn(node)
	switch n := node.(type) {
	case *Binary:
		walk(n.Left, fn)
		walk(n.Right, fn)
	case *Negation:
		walk(n.Operand, fn)
	case *Call:
		for _, a := range n.Args {
			walk(a, fn)
		}
	case *Assignation:
		walk(n.Value, fn)
	}
}
