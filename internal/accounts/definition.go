package accounts

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/finsim/internal/model"
)

// code accepts YAML integers and strings alike.
type code string

func (c *code) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: account code must be a scalar", value.Line)
	}
	*c = code(strings.TrimSpace(value.Value))
	return nil
}

type definition struct {
	Metadata struct {
		Name string `yaml:"name"`
	} `yaml:"metadata"`
	Plan []accountDefinition `yaml:"plan"`
}

type accountDefinition struct {
	Code        code   `yaml:"code"`
	Description string `yaml:"description"`
	Comment     string `yaml:"comment"`
	Commentaire string `yaml:"commentaire"`
	System      string `yaml:"system"`
	Systeme     string `yaml:"système"`
	Devise      string `yaml:"devise"`
}

// LoadDefinition reads a YAML chart definition. The length of an account code
// encodes its depth: an account is the child of the nearest preceding account
// with a strictly shorter code. Source order is not assumed sorted, so the
// chart is sorted once loaded.
func LoadDefinition(r io.Reader) (*Chart, error) {
	var def definition
	if err := yaml.NewDecoder(r).Decode(&def); err != nil {
		return nil, fmt.Errorf("parsing chart definition: %w", err)
	}

	chart := NewChart(def.Metadata.Name)
	var stack []string
	for i, d := range def.Plan {
		number := string(d.Code)
		if number == "" {
			return nil, fmt.Errorf("plan entry %d: missing code", i+1)
		}
		for len(stack) > 0 && len(stack[len(stack)-1]) >= len(number) {
			stack = stack[:len(stack)-1]
		}
		parent := ""
		if len(stack) > 0 {
			parent = stack[len(stack)-1]
		}

		acct := &model.Account{
			Number:      number,
			Description: d.Description,
			Devise:      firstNonEmpty(d.Devise, model.DefaultDevise),
			Comment:     firstNonEmpty(d.Comment, d.Commentaire),
			System:      firstNonEmpty(d.System, d.Systeme),
		}
		if err := chart.Add(acct, parent); err != nil {
			return nil, fmt.Errorf("plan entry %d: %w", i+1, err)
		}
		stack = append(stack, number)
	}
	chart.Sort()
	return chart, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
