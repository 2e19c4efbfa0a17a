package report

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/finsim/internal/hdl"
)

// source accepts any YAML scalar as computation text, so that a bare
// number is a valid computation.
type source string

func (s *source) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: computation must be a scalar", value.Line)
	}
	*s = source(value.Value)
	return nil
}

type item struct {
	Title       string  `yaml:"title"`
	Childs      *[]item `yaml:"childs"`
	Assign      string  `yaml:"assign"`
	Position    string  `yaml:"position"`
	Show        bool    `yaml:"show"`
	Computation *source `yaml:"computation"`
	Padding     *int    `yaml:"padding"`

	line int
}

func (it *item) UnmarshalYAML(value *yaml.Node) error {
	type plain item
	if err := value.Decode((*plain)(it)); err != nil {
		return err
	}
	it.line = value.Line
	return nil
}

// Load reads a YAML table: a mapping from column title to a list of items.
// An item with childs is a sum row, an item with padding is empty space,
// anything else is a value row whose computation is HDL text. Every
// malformed item is reported, not only the first one, in column title order.
func Load(r io.Reader) (*Table, error) {
	var doc map[string][]item
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing report table: %w", err)
	}

	var (
		columns []*Column
		errs    error
	)
	for _, title := range slices.Sorted(maps.Keys(doc)) {
		items := doc[title]
		roots := make([]*Row, 0, len(items))
		for _, it := range items {
			row, err := buildRow(it)
			errs = multierr.Append(errs, err)
			if row != nil {
				roots = append(roots, row)
			}
		}
		columns = append(columns, NewColumn(title, roots...))
	}
	if errs != nil {
		return nil, errs
	}
	return NewTable(columns...)
}

// LoadFile reads the table stored at path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func buildRow(it item) (*Row, error) {
	switch {
	case it.Childs != nil:
		if it.Computation != nil {
			return nil, fmt.Errorf("line %d: row %q has both childs and computation", it.line, it.Title)
		}
		pos, err := parsePosition(it.Position)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", it.line, err)
		}
		var errs error
		children := make([]*Row, 0, len(*it.Childs))
		for _, c := range *it.Childs {
			row, err := buildRow(c)
			errs = multierr.Append(errs, err)
			if row != nil {
				children = append(children, row)
			}
		}
		return SumRow(it.Title, it.Assign, pos, it.Show, children...), errs

	case it.Padding != nil:
		if *it.Padding < 0 {
			return nil, fmt.Errorf("line %d: negative padding %d", it.line, *it.Padding)
		}
		return EmptyRow(*it.Padding), nil
	}

	if it.Title == "" {
		return nil, fmt.Errorf("line %d: value row without title", it.line)
	}
	if it.Computation == nil {
		return ValueRow(it.Title, nil), nil
	}
	prog, err := hdl.Parse(string(*it.Computation))
	if err != nil {
		return nil, fmt.Errorf("line %d: row %q: %w", it.line, it.Title, err)
	}
	return ValueRow(it.Title, prog), nil
}
