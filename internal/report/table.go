package report

import (
	"fmt"
	"iter"
	"slices"

	"github.com/cleared-dev/finsim/internal/hdl"
)

// Kind tags a report row.
type Kind int

const (
	// KindSum aggregates its children.
	KindSum Kind = iota + 1
	// KindValue runs a computation.
	KindValue
	// KindEmpty is vertical padding.
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindSum:
		return "sum"
	case KindValue:
		return "value"
	case KindEmpty:
		return "empty"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Position places a sum row line relative to its children.
type Position int

const (
	Before Position = iota
	After
)

func parsePosition(s string) (Position, error) {
	switch s {
	case "", "before":
		return Before, nil
	case "after":
		return After, nil
	}
	return Before, fmt.Errorf("invalid position %q, want before or after", s)
}

func (p Position) String() string {
	if p == After {
		return "after"
	}
	return "before"
}

// Row is a line of a report column.
type Row struct {
	kind     Kind
	title    string
	level    int
	show     bool
	position Position
	assign   string
	program  hdl.Program
	padding  int
	parent   *Row
	children []*Row
}

func (r *Row) Kind() Kind { return r.kind }

func (r *Row) Title() string { return r.title }

// Level is the depth of the row in its column, roots being 0.
func (r *Row) Level() int { return r.level }

// Show reports whether the row value is displayed. Value rows are always
// shown; sum rows only when requested.
func (r *Row) Show() bool { return r.show }

func (r *Row) Position() Position { return r.position }

// Computation returns the program of a value row, nil otherwise.
func (r *Row) Computation() hdl.Program { return r.program }

// Padding returns the number of empty lines of a padding row.
func (r *Row) Padding() int { return r.padding }

func (r *Row) Parent() *Row { return r.parent }

func (r *Row) Children() []*Row { return r.children }

// Defines returns the variables the row assigns.
func (r *Row) Defines() []string {
	switch r.kind {
	case KindSum:
		if r.assign != "" {
			return []string{r.assign}
		}
	case KindValue:
		return r.program.Assigned()
	}
	return nil
}

// Reads returns the variables read by the row, including every row of the
// subtree of a sum row.
func (r *Row) Reads() []string {
	var res []string
	for row := range r.subtree() {
		for _, v := range row.program.Variables() {
			if !slices.Contains(res, v) {
				res = append(res, v)
			}
		}
	}
	return res
}

func (r *Row) subtree() iter.Seq[*Row] {
	return func(yield func(*Row) bool) {
		r.walk(yield)
	}
}

func (r *Row) walk(yield func(*Row) bool) bool {
	if !yield(r) {
		return false
	}
	for _, c := range r.children {
		if !c.walk(yield) {
			return false
		}
	}
	return true
}

func (r *Row) addChild(c *Row) {
	c.parent = r
	r.children = append(r.children, c)
}

// Column is a titled forest of rows with its output line order. A nil line
// is an empty padding line.
type Column struct {
	title string
	roots []*Row
	lines []*Row
}

func (c *Column) Title() string { return c.title }

func (c *Column) Roots() []*Row { return c.roots }

// Lines returns the rows in output order: a sum row comes before or after
// its children depending on its position, padding rows expand to nil lines.
func (c *Column) Lines() []*Row { return c.lines }

// Rows walks every row of the column depth-first.
func (c *Column) Rows() iter.Seq[*Row] {
	return func(yield func(*Row) bool) {
		for _, r := range c.roots {
			if !r.walk(yield) {
				return
			}
		}
	}
}

// Table is a set of columns sharing one variable scope.
type Table struct {
	columns []*Column
	defs    map[string]*Row
	order   []string
}

func (t *Table) Columns() []*Column { return t.columns }

// Column returns the column titled title.
func (t *Table) Column(title string) (*Column, bool) {
	i := slices.IndexFunc(t.columns, func(c *Column) bool { return c.title == title })
	if i < 0 {
		return nil, false
	}
	return t.columns[i], true
}

// Rows walks every row of every column.
func (t *Table) Rows() iter.Seq[*Row] {
	return func(yield func(*Row) bool) {
		for _, c := range t.columns {
			for r := range c.Rows() {
				if !yield(r) {
					return
				}
			}
		}
	}
}

// Definition returns the row assigning variable.
func (t *Table) Definition(variable string) (*Row, bool) {
	r, ok := t.defs[variable]
	return r, ok
}

// Order returns the variables in evaluation order: every variable comes
// after the variables its defining row reads.
func (t *Table) Order() []string { return slices.Clone(t.order) }
