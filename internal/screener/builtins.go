package screener

import (
	"fmt"
	"math"

	"go.starlark.net/starlark"

	"github.com/quantforge/ta/pkg/indicator"
	"github.com/quantforge/ta/pkg/quotes"
)

// predeclared builds the expression environment: the OHLCV columns as lists
// and the screening builtins bound to the quote series.
func (e *Engine) predeclared(q *quotes.Quotes) starlark.StringDict {
	env := starlark.StringDict{
		"open":      seriesToList(q.Open()),
		"high":      seriesToList(q.High()),
		"low":       seriesToList(q.Low()),
		"close":     seriesToList(q.Close()),
		"indicator": starlark.NewBuiltin("indicator", indicatorBuiltin(q)),
		"last":      starlark.NewBuiltin("last", lastBuiltin),
	}
	if volume, err := q.Volume(); err == nil {
		env["volume"] = seriesToList(volume)
	} else {
		env["volume"] = starlark.None
	}
	return env
}

// indicatorBuiltin exposes the registry: indicator(name, **params) returns a
// dict mapping each output name to its series.
func indicatorBuiltin(q *quotes.Quotes) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, nil, 1, &name); err != nil {
			return nil, err
		}

		params := indicator.Params{}
		for _, kv := range kwargs {
			key, ok := kv[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("indicator() keyword must be a string")
			}
			value, err := fromStarlark(kv[1])
			if err != nil {
				return nil, fmt.Errorf("indicator() parameter %s: %w", string(key), err)
			}
			params[string(key)] = value
		}

		result, err := indicator.Compute(name, q, params)
		if err != nil {
			return nil, err
		}

		dict := starlark.NewDict(result.Len())
		for _, output := range result.Names() {
			series, _ := result.Get(output)
			if err := dict.SetKey(starlark.String(output), seriesToList(series)); err != nil {
				return nil, err
			}
		}
		return dict, nil
	}
}

// lastBuiltin returns the final element of a list, None for an empty one.
func lastBuiltin(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var list *starlark.List
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &list); err != nil {
		return nil, err
	}
	if list.Len() == 0 {
		return starlark.None, nil
	}
	return list.Index(list.Len() - 1), nil
}

// seriesToList converts a float series to a Starlark list, NaN becoming None.
func seriesToList(values []float64) *starlark.List {
	elems := make([]starlark.Value, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			elems[i] = starlark.None
			continue
		}
		elems[i] = starlark.Float(v)
	}
	return starlark.NewList(elems)
}

// fromStarlark converts a parameter value to its Go form.
func fromStarlark(v starlark.Value) (any, error) {
	switch value := v.(type) {
	case starlark.Bool:
		return bool(value), nil
	case starlark.Int:
		n, ok := value.Int64()
		if !ok {
			return nil, fmt.Errorf("integer out of range")
		}
		return n, nil
	case starlark.Float:
		return float64(value), nil
	case starlark.String:
		return string(value), nil
	case starlark.NoneType:
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported parameter type %s", v.Type())
}
