package screener

import (
	"fmt"

	"github.com/rs/zerolog"
	"go.starlark.net/starlark"

	"github.com/quantforge/ta/pkg/quotes"
)

// Engine evaluates Starlark screening expressions against a quote series
type Engine struct {
	logger zerolog.Logger
}

// New creates a new screener engine
func New(logger zerolog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Eval evaluates a single screening expression against the quotes and
// returns its value. The expression sees the OHLCV columns as lists plus
// the indicator() and last() builtins.
func (e *Engine) Eval(name, expr string, q *quotes.Quotes) (starlark.Value, error) {
	thread := &starlark.Thread{
		Name: fmt.Sprintf("screener-%s", name),
		Print: func(thread *starlark.Thread, msg string) {
			e.logger.Info().Str("screener", name).Msg(msg)
		},
	}

	value, err := starlark.Eval(thread, name, expr, e.predeclared(q))
	if err != nil {
		return nil, fmt.Errorf("screener evaluation failed: %w", err)
	}
	return value, nil
}

// Matches evaluates the expression and reports its truthiness, the
// convenience form used for symbol filtering.
func (e *Engine) Matches(name, expr string, q *quotes.Quotes) (bool, error) {
	value, err := e.Eval(name, expr, q)
	if err != nil {
		return false, err
	}
	return bool(value.Truth()), nil
}
