package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finsim/internal/balance"
	"github.com/cleared-dev/finsim/internal/hdl"
)

// Evaluator runs row computations in one evaluation mode.
type Evaluator[T any] interface {
	Run(prog hdl.Program) (T, error)
	Set(name string, v T)
}

// Visitor computes rows once each, evaluating the rows a computation
// depends on first.
type Visitor[T any] struct {
	table  *Table
	eval   Evaluator[T]
	zero   func() T
	sum    func(a, b T) T
	values map[*Row]T
	active map[*Row]bool
}

// NewVisitor returns a visitor over t. zero gives the value of an empty row
// and sum aggregates the children of a sum row.
func NewVisitor[T any](t *Table, eval Evaluator[T], zero func() T, sum func(a, b T) T) *Visitor[T] {
	return &Visitor[T]{
		table:  t,
		eval:   eval,
		zero:   zero,
		sum:    sum,
		values: make(map[*Row]T),
		active: make(map[*Row]bool),
	}
}

// Compute returns the value of row.
func (v *Visitor[T]) Compute(row *Row) (T, error) {
	if val, ok := v.values[row]; ok {
		return val, nil
	}
	if v.active[row] {
		return v.zero(), fmt.Errorf("%w: row %q", ErrCircularReference, row.title)
	}
	v.active[row] = true
	defer delete(v.active, row)

	val := v.zero()
	switch row.kind {
	case KindValue:
		for _, name := range row.program.Variables() {
			def, ok := v.table.defs[name]
			if !ok || def == row {
				continue
			}
			if _, err := v.Compute(def); err != nil {
				return val, err
			}
		}
		if len(row.program) > 0 {
			res, err := v.eval.Run(row.program)
			if err != nil {
				return val, fmt.Errorf("row %q: %w", row.title, err)
			}
			val = res
		}
	case KindSum:
		for _, c := range row.children {
			cv, err := v.Compute(c)
			if err != nil {
				return val, err
			}
			val = v.sum(val, cv)
		}
		if row.assign != "" {
			v.eval.Set(row.assign, val)
		}
	}
	v.values[row] = val
	return val, nil
}

// Run computes the variables in dependency order, then every other row.
func (v *Visitor[T]) Run() error {
	for _, name := range v.table.order {
		if _, err := v.Compute(v.table.defs[name]); err != nil {
			return err
		}
	}
	for row := range v.table.Rows() {
		if _, err := v.Compute(row); err != nil {
			return err
		}
	}
	return nil
}

// Value returns the computed value of row.
func (v *Visitor[T]) Value(row *Row) (T, bool) {
	val, ok := v.values[row]
	return val, ok
}

// Result holds the numeric value of every row of a table.
type Result struct {
	table  *Table
	values map[*Row]decimal.Decimal
}

func (r *Result) Table() *Table { return r.table }

// Value returns the value of row, zero for padding.
func (r *Result) Value(row *Row) decimal.Decimal {
	return r.values[row]
}

// Lookup returns the value of the first row titled title in column.
func (r *Result) Lookup(column, title string) (decimal.Decimal, bool) {
	c, ok := r.table.Column(column)
	if !ok {
		return decimal.Zero, false
	}
	for row := range c.Rows() {
		if row.title == title {
			return r.values[row], true
		}
	}
	return decimal.Zero, false
}

// Compute evaluates every row against the balances of chart.
func (t *Table) Compute(chart hdl.Balances, opts ...hdl.Option) (*Result, error) {
	v := NewVisitor[decimal.Decimal](t, hdl.NewNumericEvaluator(chart, opts...),
		func() decimal.Decimal { return decimal.Zero },
		decimal.Decimal.Add)
	if err := v.Run(); err != nil {
		return nil, err
	}
	return &Result{table: t, values: v.values}, nil
}

// Coverage tells which accounts of a chart a table reads.
type Coverage struct {
	// Referenced holds the accounts named by a computation.
	Referenced hdl.AccountSet
	// Uncovered lists, in chart order, the accounts that are neither
	// referenced nor below a referenced account.
	Uncovered []string
	// Missed is the subset of Uncovered holding imputations of its own.
	Missed []string
}

// Coverage evaluates the table in set mode against chart.
func (t *Table) Coverage(chart *balance.Chart, opts ...hdl.Option) (*Coverage, error) {
	v := NewVisitor[hdl.AccountSet](t, hdl.NewSetEvaluator(chart, opts...),
		func() hdl.AccountSet { return hdl.AccountSet{} },
		hdl.AccountSet.Union)
	if err := v.Run(); err != nil {
		return nil, err
	}

	res := &Coverage{Referenced: hdl.AccountSet{}}
	for row := range t.Rows() {
		if row.kind == KindValue {
			res.Referenced = res.Referenced.Union(v.values[row])
		}
	}
	for b := range chart.All() {
		if covered(res.Referenced, b) {
			continue
		}
		res.Uncovered = append(res.Uncovered, b.Number())
		if b.HasImputations() {
			res.Missed = append(res.Missed, b.Number())
		}
	}
	return res, nil
}

func covered(set hdl.AccountSet, b *balance.AccountBalance) bool {
	for ; b != nil; b = b.Parent() {
		if set.Contains(b.Number()) {
			return true
		}
	}
	return false
}

// ReferencedAccounts returns the referenced accounts in ascending order.
func (c *Coverage) ReferencedAccounts() []string { return c.Referenced.Sorted() }
