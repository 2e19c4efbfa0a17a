package hdl

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finsim/internal/model"
)

func builtins() map[string]Function {
	return map[string]Function{
		"abs": unary(decimal.Decimal.Abs),
		"pos": unary(func(d decimal.Decimal) decimal.Decimal {
			return decimal.Max(d, decimal.Zero)
		}),
		"min":   variadic(decimal.Min),
		"max":   variadic(decimal.Max),
		"round": round,
	}
}

func unary(fn func(decimal.Decimal) decimal.Decimal) Function {
	return func(args []decimal.Decimal) (decimal.Decimal, error) {
		if len(args) != 1 {
			return decimal.Zero, fmt.Errorf("%w: want 1, got %d", ErrArity, len(args))
		}
		return fn(args[0]), nil
	}
}

func variadic(fn func(first decimal.Decimal, rest ...decimal.Decimal) decimal.Decimal) Function {
	return func(args []decimal.Decimal) (decimal.Decimal, error) {
		if len(args) == 0 {
			return decimal.Zero, fmt.Errorf("%w: want at least 1, got 0", ErrArity)
		}
		return fn(args[0], args[1:]...), nil
	}
}

// round(x) rounds to the currency precision, round(x, n) to n places.
func round(args []decimal.Decimal) (decimal.Decimal, error) {
	switch len(args) {
	case 1:
		return model.RoundCurrency(args[0]), nil
	case 2:
		return args[0].Round(int32(args[1].IntPart())), nil
	}
	return decimal.Zero, fmt.Errorf("%w: want 1 or 2, got %d", ErrArity, len(args))
}
