package report

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/multierr"

	"github.com/cleared-dev/finsim/internal/hdl"
)

var (
	// ErrCircularReference is returned when variables depend on each other.
	ErrCircularReference = errors.New("circular reference")
	// ErrDuplicateVariable is returned when two rows assign the same variable.
	ErrDuplicateVariable = errors.New("variable assigned twice")
)

// CycleError names the variables of a dependency cycle, the first one
// repeated at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCircularReference, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCircularReference }

// SumRow returns a row aggregating children. A non-empty assign stores the
// sum in that variable.
func SumRow(title, assign string, pos Position, show bool, children ...*Row) *Row {
	r := &Row{kind: KindSum, title: title, assign: assign, position: pos, show: show}
	for _, c := range children {
		r.addChild(c)
	}
	return r
}

// ValueRow returns a row running program. A nil program evaluates to zero.
func ValueRow(title string, program hdl.Program) *Row {
	return &Row{kind: KindValue, title: title, show: true, program: program}
}

// EmptyRow returns n lines of padding.
func EmptyRow(n int) *Row {
	return &Row{kind: KindEmpty, padding: n}
}

// NewColumn lays out roots into output lines.
func NewColumn(title string, roots ...*Row) *Column {
	c := &Column{title: title, roots: roots}
	for _, r := range roots {
		c.layout(r, 0)
	}
	return c
}

func (c *Column) layout(r *Row, level int) {
	r.level = level
	switch r.kind {
	case KindEmpty:
		for range r.padding {
			c.lines = append(c.lines, nil)
		}
		return
	case KindValue:
		c.lines = append(c.lines, r)
		return
	}
	if r.position == Before {
		c.lines = append(c.lines, r)
	}
	for _, child := range r.children {
		c.layout(child, level+1)
	}
	if r.position == After {
		c.lines = append(c.lines, r)
	}
}

// NewTable sorts columns by title and orders the variables they assign.
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{columns: slices.Clone(columns), defs: make(map[string]*Row)}
	slices.SortStableFunc(t.columns, func(a, b *Column) int { return cmp.Compare(a.title, b.title) })

	var err error
	for r := range t.Rows() {
		for _, v := range r.Defines() {
			if prev, ok := t.defs[v]; ok {
				err = multierr.Append(err, fmt.Errorf("%w: %s by %q and %q", ErrDuplicateVariable, v, prev.title, r.title))
				continue
			}
			t.defs[v] = r
		}
	}
	for r := range t.Rows() {
		if r.kind != KindValue {
			continue
		}
		for _, v := range r.program.Variables() {
			if _, ok := t.defs[v]; !ok {
				err = multierr.Append(err, fmt.Errorf("row %q: %w: %s", r.title, hdl.ErrUndefinedVariable, v))
			}
		}
	}
	if err != nil {
		return nil, err
	}

	order, err := t.sortVariables()
	if err != nil {
		return nil, err
	}
	t.order = order
	return t, nil
}

const (
	white = iota
	grey
	black
)

// sortVariables returns the variables in dependency postorder.
func (t *Table) sortVariables() ([]string, error) {
	names := make([]string, 0, len(t.defs))
	for v := range t.defs {
		names = append(names, v)
	}
	slices.Sort(names)

	colour := make(map[string]int, len(names))
	var (
		order []string
		stack []string
	)
	var visit func(v string) error
	visit = func(v string) error {
		switch colour[v] {
		case black:
			return nil
		case grey:
			i := slices.Index(stack, v)
			path := append(slices.Clone(stack[i:]), v)
			return &CycleError{Path: path}
		}
		colour[v] = grey
		stack = append(stack, v)
		for _, dep := range t.defs[v].Reads() {
			if _, ok := t.defs[dep]; !ok {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		colour[v] = black
		order = append(order, v)
		return nil
	}
	for _, v := range names {
		if err := visit(v); err != nil {
			return nil, err
		}
	}
	return order, nil
}
