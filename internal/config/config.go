package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Rhymond/go-money"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/finsim/internal/importer"
	"github.com/cleared-dev/finsim/internal/model"
	"github.com/cleared-dev/finsim/internal/period"
)

// FileName is the project configuration file at the project root.
const FileName = "finsim.yaml"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the top-level finsim.yaml configuration.
type Config struct {
	Business     BusinessConfig      `yaml:"business"`
	Period       PeriodConfig        `yaml:"period"`
	Chart        ChartConfig         `yaml:"chart"`
	Journals     []period.JournalDef `yaml:"journals"`
	Paths        PathsConfig         `yaml:"paths"`
	BankAccounts []BankAccount       `yaml:"bank_accounts,omitempty"`
	Git          GitConfig           `yaml:"git"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"` // ISO 4217 code
}

// PeriodConfig bounds the financial period, both days included.
type PeriodConfig struct {
	Start model.Date `yaml:"start"`
	Stop  model.Date `yaml:"stop"`
}

// ChartConfig locates the account charts. Paths are relative to the
// project root; an empty Source selects the built-in chart.
type ChartConfig struct {
	Source   string `yaml:"source,omitempty"`
	Analytic string `yaml:"analytic,omitempty"`
}

// PathsConfig locates project files relative to the project root.
type PathsConfig struct {
	Store    string `yaml:"store"`
	Reports  string `yaml:"reports"`
	Scenario string `yaml:"scenario"`
}

// BankAccount maps a bank feed to an account of the chart and the rules
// categorizing its transactions.
type BankAccount struct {
	Name     string          `yaml:"name"`
	Format   string          `yaml:"format"`
	Journal  string          `yaml:"journal"`
	Account  string          `yaml:"account"`
	Suspense string          `yaml:"suspense,omitempty"`
	Rules    []importer.Rule `yaml:"rules,omitempty"`
}

// Categorizer returns the categorizer of the bank account.
func (b BankAccount) Categorizer() *importer.Categorizer {
	return &importer.Categorizer{Bank: b.Account, Suspense: b.Suspense, Rules: b.Rules}
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a finsim.yaml file from disk and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate reports every inconsistency of the configuration.
func (c *Config) Validate() error {
	var errs error
	invalid := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if money.GetCurrency(c.Business.Currency) == nil {
		invalid("unknown currency %q", c.Business.Currency)
	}
	if c.Period.Start.IsZero() || c.Period.Stop.IsZero() {
		invalid("period start and stop are required")
	} else if c.Period.Stop.Before(c.Period.Start.Time) {
		invalid("period stops (%s) before it starts (%s)", c.Period.Stop, c.Period.Start)
	}

	labels := make(map[string]bool, len(c.Journals))
	for _, j := range c.Journals {
		switch {
		case j.Label == "":
			invalid("journal without label")
		case labels[j.Label]:
			invalid("duplicate journal %q", j.Label)
		}
		labels[j.Label] = true
	}
	for _, b := range c.BankAccounts {
		if b.Account == "" {
			invalid("bank account %q has no account", b.Name)
		}
		if !labels[b.Journal] {
			invalid("bank account %q posts to unknown journal %q", b.Name, b.Journal)
		}
	}
	return errs
}

// Bank returns the bank account named name.
func (c *Config) Bank(name string) (BankAccount, bool) {
	for _, b := range c.BankAccounts {
		if b.Name == name {
			return b, true
		}
	}
	return BankAccount{}, false
}

// Resolve returns path relative to the project root, or "" for "".
func Resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// Default returns a Config with sensible defaults for a new project whose
// period is the calendar year of year.
func Default(businessName string, year int) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:     businessName,
			Currency: "EUR",
		},
		Period: PeriodConfig{
			Start: model.NewDate(year, time.January, 1),
			Stop:  model.NewDate(year, time.December, 31),
		},
		Journals: []period.JournalDef{
			{Label: "AC", Description: "Achats"},
			{Label: "VT", Description: "Ventes"},
			{Label: "BQ", Description: "Banque"},
			{Label: "OD", Description: "Opérations diverses"},
		},
		Paths: PathsConfig{
			Store:    "data/journal.jsonl",
			Reports:  "reports",
			Scenario: "scenario.yaml",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "finsim",
			AuthorEmail: "finsim@localhost",
		},
	}
}
