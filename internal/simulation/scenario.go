// Package simulation turns a YAML scenario of planned transactions into
// scheduled journal postings.
package simulation

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/finsim/internal/balance"
	"github.com/cleared-dev/finsim/internal/hdl"
	"github.com/cleared-dev/finsim/internal/journal"
	"github.com/cleared-dev/finsim/internal/model"
	"github.com/cleared-dev/finsim/internal/scheduler"
)

// ErrScenario is wrapped by every scenario definition error.
var ErrScenario = errors.New("invalid scenario")

// Binding is a named value of a scenario.
type Binding struct {
	Name  string
	Value decimal.Decimal
}

// Transaction is a planned posting.
type Transaction struct {
	Date       time.Time
	Label      string
	Journal    string
	Document   string
	Recurrence scheduler.Recurrence
	Template   *journal.Template
}

// Scenario holds the parameters, variables and transactions of a simulation.
type Scenario struct {
	Parameters   []Binding
	Variables    []Binding
	Transactions []Transaction
}

type config struct {
	chart  hdl.Balances
	logger *slog.Logger
}

// Option configures scenario loading.
type Option func(*config)

// WithBalances lets expressions read account balances at load time.
func WithBalances(chart hdl.Balances) Option {
	return func(c *config) { c.chart = chart }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

type noBalances struct{}

func (noBalances) Lookup(string) (*balance.AccountBalance, bool) { return nil, false }

// recurrenceAliases maps French recurrence names to their canonical form.
var recurrenceAliases = map[string]scheduler.Recurrence{
	"unique":         scheduler.Once,
	"hebdomadaire":   scheduler.Weekly,
	"mensuel":        scheduler.Monthly,
	"bimestriel":     scheduler.Bimonthly,
	"trimestriel":    scheduler.Quarterly,
	"quadrimestriel": scheduler.FourMonthly,
	"semestriel":     scheduler.HalfYearly,
	"annuel":         scheduler.Annual,
}

var imputationKey = regexp.MustCompile(`^(debit|credit) +(\d+)(?: */ *(\d+))?$`)

type document struct {
	Parameters   yaml.Node   `yaml:"parameters"`
	Variables    yaml.Node   `yaml:"variables"`
	Transactions []yaml.Node `yaml:"transactions"`
}

// Load reads a scenario. Parameters are literals, variables and amounts
// are HDL expressions over the parameters, the variables defined before
// them and the transaction locals. Every malformed transaction is reported.
func Load(r io.Reader, opts ...Option) (*Scenario, error) {
	cfg := config{logger: slog.Default()}
	for _, o := range opts {
		o(&cfg)
	}

	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Scenario{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrScenario, err)
	}

	l := &loader{cfg: cfg}
	global := l.evaluator(nil)
	s := &Scenario{}
	var err error
	if s.Parameters, err = l.bindings(global, &doc.Parameters, true); err != nil {
		return nil, err
	}
	if s.Variables, err = l.bindings(global, &doc.Variables, false); err != nil {
		return nil, err
	}
	l.scope = global.Variables()

	var errs error
	for i := range doc.Transactions {
		tx, skip, err := l.transaction(&doc.Transactions[i])
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if !skip {
			s.Transactions = append(s.Transactions, tx)
		}
	}
	if errs != nil {
		return nil, errs
	}
	return s, nil
}

// LoadFile reads the scenario stored at path.
func LoadFile(path string, opts ...Option) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Load(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (c config) balances() hdl.Balances {
	if c.chart == nil {
		return noBalances{}
	}
	return c.chart
}

type loader struct {
	cfg   config
	scope map[string]decimal.Decimal
}

// evaluator returns an evaluator seeded with scope.
func (l *loader) evaluator(scope map[string]decimal.Decimal) *hdl.NumericEvaluator {
	e := hdl.NewNumericEvaluator(l.cfg.balances(), hdl.WithLogger(l.cfg.logger))
	for name, v := range scope {
		e.Set(name, v)
	}
	return e
}

func scenarioErrorf(node *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrScenario, node.Line, fmt.Sprintf(format, args...))
}

// pairs iterates the key/value nodes of a mapping in document order.
func pairs(node *yaml.Node) ([][2]*yaml.Node, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, scenarioErrorf(node, "expected a mapping")
	}
	res := make([][2]*yaml.Node, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		res = append(res, [2]*yaml.Node{node.Content[i], node.Content[i+1]})
	}
	return res, nil
}

func (l *loader) bindings(eval *hdl.NumericEvaluator, node *yaml.Node, literal bool) ([]Binding, error) {
	kvs, err := pairs(node)
	if err != nil {
		return nil, err
	}
	res := make([]Binding, 0, len(kvs))
	for _, kv := range kvs {
		name := kv[0].Value
		var v decimal.Decimal
		if literal {
			v, err = ParseValue(kv[1].Value)
			if err != nil {
				return nil, scenarioErrorf(kv[1], "parameter %s: cannot parse %q", name, kv[1].Value)
			}
		} else {
			v, err = value(eval, kv[1])
			if err != nil {
				return nil, fmt.Errorf("variable %s: %w", name, err)
			}
		}
		eval.Set(name, v)
		l.cfg.logger.Debug("scenario binding", "name", name, "value", v.String())
		res = append(res, Binding{Name: name, Value: v})
	}
	return res, nil
}

// value evaluates a literal or an HDL expression in the current scope.
func value(eval *hdl.NumericEvaluator, node *yaml.Node) (decimal.Decimal, error) {
	if node.Kind != yaml.ScalarNode {
		return decimal.Zero, scenarioErrorf(node, "expected a value")
	}
	if v, err := ParseValue(node.Value); err == nil {
		return v, nil
	}
	prog, err := hdl.Parse(node.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("line %d: %w", node.Line, err)
	}
	v, err := eval.Run(prog)
	if err != nil {
		return decimal.Zero, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return v, nil
}

func parseRecurrence(s string) (scheduler.Recurrence, error) {
	if r, ok := recurrenceAliases[s]; ok {
		return r, nil
	}
	return scheduler.ParseRecurrence(s)
}

func (l *loader) transaction(node *yaml.Node) (tx Transaction, skip bool, err error) {
	kvs, err := pairs(node)
	if err != nil {
		return tx, false, err
	}

	// Locals only live for one transaction.
	eval := l.evaluator(l.scope)
	var (
		data    []journal.ImputationData
		hasDate bool
	)
	for _, kv := range kvs {
		key, val := strings.TrimSpace(kv[0].Value), kv[1]
		switch {
		case key == "date":
			d, err := model.ParseDate(val.Value)
			if err != nil {
				return tx, false, scenarioErrorf(val, "bad date %q", val.Value)
			}
			tx.Date, hasDate = d.Time, true
		case key == "label":
			tx.Label = val.Value
		case key == "journal":
			tx.Journal = val.Value
		case key == "document":
			tx.Document = val.Value
		case key == "recurrence":
			if tx.Recurrence, err = parseRecurrence(val.Value); err != nil {
				return tx, false, scenarioErrorf(val, "%v", err)
			}
		case key == "skip":
			if skip, err = strconv.ParseBool(val.Value); err != nil {
				return tx, false, scenarioErrorf(val, "bad skip flag %q", val.Value)
			}
		case strings.HasPrefix(key, "local "):
			name := strings.TrimSpace(strings.TrimPrefix(key, "local "))
			v, err := value(eval, val)
			if err != nil {
				return tx, false, fmt.Errorf("local %s: %w", name, err)
			}
			eval.Set(name, v)
		default:
			m := imputationKey.FindStringSubmatch(key)
			if m == nil {
				return tx, false, scenarioErrorf(kv[0], "unknown key %q", key)
			}
			v, err := value(eval, val)
			if err != nil {
				return tx, false, fmt.Errorf("%s: %w", key, err)
			}
			d := journal.Debit(m[2], model.RoundCurrency(v))
			if m[1] == "credit" {
				d = journal.Credit(m[2], model.RoundCurrency(v))
			}
			if m[3] != "" {
				d = d.WithAnalytic(m[3])
			}
			data = append(data, d)
		}
	}
	if skip {
		return tx, true, nil
	}

	switch {
	case !hasDate:
		return tx, false, scenarioErrorf(node, "transaction %q without date", tx.Label)
	case tx.Journal == "":
		return tx, false, scenarioErrorf(node, "transaction %q without journal", tx.Label)
	}
	if tx.Recurrence == "" {
		tx.Recurrence = scheduler.Once
	}
	if tx.Template, err = journal.NewTemplate(tx.Label, data); err != nil {
		return tx, false, fmt.Errorf("line %d: transaction %q: %w", node.Line, tx.Label, err)
	}
	return tx, false, nil
}
