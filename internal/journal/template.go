package journal

import "slices"

// Template is a reusable, pre-checked entry description. Logging it
// resolves and checks it again against the journal's current chart.
type Template struct {
	description string
	imputations []ImputationData
}

// NewTemplate checks the entry invariants on account numbers.
func NewTemplate(description string, imputations []ImputationData) (*Template, error) {
	lines := make([]line, len(imputations))
	for k, d := range imputations {
		lines[k] = d.line()
	}
	if err := checkLines(description, lines); err != nil {
		return nil, err
	}
	return &Template{description: description, imputations: slices.Clone(imputations)}, nil
}

func (t *Template) Description() string { return t.description }

// Imputations returns a copy of the template lines.
func (t *Template) Imputations() []ImputationData { return slices.Clone(t.imputations) }
