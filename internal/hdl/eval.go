package hdl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finsim/internal/balance"
)

var (
	// ErrUndefinedVariable is returned when a variable is read before assignment.
	ErrUndefinedVariable = errors.New("undefined variable")
	// ErrDivisionByZero is returned by a division by zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrUnknownFunction is returned when calling an unregistered function.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrArity is returned when a function gets the wrong number of arguments.
	ErrArity = errors.New("wrong number of arguments")
)

// Balances gives access to account balances by number.
type Balances interface {
	Lookup(number string) (*balance.AccountBalance, bool)
}

// algebra gives the meaning of every leaf and operator for one evaluation
// mode. evaluate does the tree walk and the variable scope.
type algebra[T any] interface {
	constant(c *Constant) T
	account(a *AccountRef) T
	interval(a *AccountInterval) T
	binary(op Operator, left, right T) (T, error)
	negate(v T) T
	call(name string, args []T) (T, error)
}

func evaluate[T any](alg algebra[T], scope map[string]T, node Node) (T, error) {
	var zero T
	switch n := node.(type) {
	case *Constant:
		return alg.constant(n), nil
	case *AccountRef:
		return alg.account(n), nil
	case *AccountInterval:
		return alg.interval(n), nil
	case *Variable:
		v, ok := scope[n.Name]
		if !ok {
			return zero, fmt.Errorf("%w: %s", ErrUndefinedVariable, n.Name)
		}
		return v, nil
	case *Assignation:
		v, err := evaluate(alg, scope, n.Value)
		if err != nil {
			return zero, err
		}
		scope[n.Name] = v
		return v, nil
	case *Negation:
		v, err := evaluate(alg, scope, n.Operand)
		if err != nil {
			return zero, err
		}
		return alg.negate(v), nil
	case *Binary:
		left, err := evaluate(alg, scope, n.Left)
		if err != nil {
			return zero, err
		}
		right, err := evaluate(alg, scope, n.Right)
		if err != nil {
			return zero, err
		}
		return alg.binary(n.Op, left, right)
	case *Call:
		args := make([]T, len(n.Args))
		for i, a := range n.Args {
			v, err := evaluate(alg, scope, a)
			if err != nil {
				return zero, err
			}
			args[i] = v
		}
		return alg.call(n.Name, args)
	}
	return zero, fmt.Errorf("unsupported node %T", node)
}

func run[T any](alg algebra[T], scope map[string]T, prog Program) (T, error) {
	var res T
	for _, stmt := range prog {
		v, err := evaluate(alg, scope, stmt)
		if err != nil {
			return res, fmt.Errorf("evaluating %s: %w", stmt, err)
		}
		res = v
	}
	return res, nil
}

// Function is a numeric function callable from HDL.
type Function func(args []decimal.Decimal) (decimal.Decimal, error)

type config struct {
	logger    *slog.Logger
	functions map[string]Function
}

// Option configures an evaluator.
type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithFunction registers or overrides a function.
func WithFunction(name string, fn Function) Option {
	return func(c *config) { c.functions[name] = fn }
}

func newConfig(opts []Option) config {
	c := config{logger: slog.Default(), functions: builtins()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// lookup resolves an account leniently: a missing account is logged at
// level and reported absent.
func lookup(c config, chart Balances, number string, level slog.Level) (*balance.AccountBalance, bool) {
	b, ok := chart.Lookup(number)
	if !ok {
		c.logger.Log(context.Background(), level, "account does not exist", "account", number)
	}
	return b, ok
}

// intervalAccounts returns the existing accounts of an interval. Missing
// numbers count as zero; they are reported with a single warning per
// interval listing how many were skipped.
func intervalAccounts(c config, chart Balances, a *AccountInterval) []*balance.AccountBalance {
	var res []*balance.AccountBalance
	for n := a.Low; n <= a.High; n++ {
		if b, ok := lookup(c, chart, strconv.Itoa(n), slog.LevelDebug); ok {
			res = append(res, b)
		}
	}
	if len(res) == 0 {
		c.logger.Warn("account interval matches no account", "interval", a.String())
	} else if missing := a.High - a.Low + 1 - len(res); missing > 0 {
		c.logger.Warn("account interval skips missing accounts", "interval", a.String(), "missing", missing)
	}
	return res
}

func figure(b *balance.AccountBalance, f Figure) decimal.Decimal {
	switch f {
	case FigureDebit:
		return b.Debit()
	case FigureCredit:
		return b.Credit()
	}
	return b.Balance()
}

// NumericEvaluator computes decimal values from account balances. Missing
// accounts evaluate to zero with a warning.
type NumericEvaluator struct {
	cfg   config
	chart Balances
	vars  map[string]decimal.Decimal
}

// NewNumericEvaluator returns an evaluator reading chart.
func NewNumericEvaluator(chart Balances, opts ...Option) *NumericEvaluator {
	return &NumericEvaluator{cfg: newConfig(opts), chart: chart, vars: make(map[string]decimal.Decimal)}
}

// Run executes the statements in order and returns the value of the last
// one, zero for an empty program.
func (e *NumericEvaluator) Run(prog Program) (decimal.Decimal, error) {
	return run[decimal.Decimal](e, e.vars, prog)
}

// Eval evaluates a single node in the evaluator's scope.
func (e *NumericEvaluator) Eval(node Node) (decimal.Decimal, error) {
	return evaluate[decimal.Decimal](e, e.vars, node)
}

// Set assigns a variable.
func (e *NumericEvaluator) Set(name string, v decimal.Decimal) { e.vars[name] = v }

// Get reads a variable.
func (e *NumericEvaluator) Get(name string) (decimal.Decimal, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Variables returns a copy of the scope.
func (e *NumericEvaluator) Variables() map[string]decimal.Decimal { return maps.Clone(e.vars) }

func (e *NumericEvaluator) constant(c *Constant) decimal.Decimal { return c.Value }

func (e *NumericEvaluator) account(a *AccountRef) decimal.Decimal {
	b, ok := lookup(e.cfg, e.chart, a.Number, slog.LevelWarn)
	if !ok {
		return decimal.Zero
	}
	return figure(b, a.Figure)
}

func (e *NumericEvaluator) interval(a *AccountInterval) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range intervalAccounts(e.cfg, e.chart, a) {
		sum = sum.Add(figure(b, a.Figure))
	}
	return sum
}

func (e *NumericEvaluator) binary(op Operator, left, right decimal.Decimal) (decimal.Decimal, error) {
	switch op {
	case Add:
		return left.Add(right), nil
	case Sub:
		return left.Sub(right), nil
	case Mul:
		return left.Mul(right), nil
	case Div:
		if right.IsZero() {
			return decimal.Zero, ErrDivisionByZero
		}
		return left.Div(right), nil
	}
	return decimal.Zero, fmt.Errorf("unknown operator %q", op)
}

func (e *NumericEvaluator) negate(v decimal.Decimal) decimal.Decimal { return v.Neg() }

func (e *NumericEvaluator) call(name string, args []decimal.Decimal) (decimal.Decimal, error) {
	fn, ok := e.cfg.functions[name]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	v, err := fn(args)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// AccountSet is a set of account numbers.
type AccountSet map[string]struct{}

// NewAccountSet returns a set holding numbers.
func NewAccountSet(numbers ...string) AccountSet {
	s := make(AccountSet, len(numbers))
	for _, n := range numbers {
		s[n] = struct{}{}
	}
	return s
}

func (s AccountSet) Contains(number string) bool {
	_, ok := s[number]
	return ok
}

// Union returns a new set holding the numbers of s and other.
func (s AccountSet) Union(other AccountSet) AccountSet {
	res := maps.Clone(s)
	if res == nil {
		res = make(AccountSet, len(other))
	}
	maps.Copy(res, other)
	return res
}

// Sorted returns the numbers in ascending order.
func (s AccountSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// SetEvaluator computes which accounts an expression reads: every leaf
// evaluates to the set of accounts it touches and operators are unions.
type SetEvaluator struct {
	cfg   config
	chart Balances
	vars  map[string]AccountSet
}

// NewSetEvaluator returns an evaluator reading chart.
func NewSetEvaluator(chart Balances, opts ...Option) *SetEvaluator {
	return &SetEvaluator{cfg: newConfig(opts), chart: chart, vars: make(map[string]AccountSet)}
}

// Run executes the statements in order and returns the set of the last one.
func (e *SetEvaluator) Run(prog Program) (AccountSet, error) {
	res, err := run[AccountSet](e, e.vars, prog)
	if res == nil {
		res = AccountSet{}
	}
	return res, err
}

// Eval evaluates a single node in the evaluator's scope.
func (e *SetEvaluator) Eval(node Node) (AccountSet, error) {
	return evaluate[AccountSet](e, e.vars, node)
}

// Set assigns a variable.
func (e *SetEvaluator) Set(name string, v AccountSet) { e.vars[name] = v }

func (e *SetEvaluator) constant(*Constant) AccountSet { return AccountSet{} }

func (e *SetEvaluator) account(a *AccountRef) AccountSet {
	if _, ok := lookup(e.cfg, e.chart, a.Number, slog.LevelWarn); !ok {
		return AccountSet{}
	}
	return NewAccountSet(a.Number)
}

func (e *SetEvaluator) interval(a *AccountInterval) AccountSet {
	res := AccountSet{}
	for _, b := range intervalAccounts(e.cfg, e.chart, a) {
		res[b.Number()] = struct{}{}
	}
	return res
}

func (e *SetEvaluator) binary(_ Operator, left, right AccountSet) (AccountSet, error) {
	return left.Union(right), nil
}

func (e *SetEvaluator) negate(v AccountSet) AccountSet { return v }

func (e *SetEvaluator) call(_ string, args []AccountSet) (AccountSet, error) {
	res := AccountSet{}
	for _, a := range args {
		res = res.Union(a)
	}
	return res, nil
}
