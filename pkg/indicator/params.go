package indicator

import (
	"fmt"
	"math"

	"github.com/quantforge/ta/pkg/ma"
)

// Params carries the caller-supplied parameters of a registry computation.
// Values arrive from JSON bodies, CLI flags or starlark keywords, so the
// getters accept the loosely typed numbers those sources produce.
type Params map[string]any

func (p Params) intValue(name string, def int) (int, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %s must be an integer, got %g", ma.ErrInvalidParameter, name, n)
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("%w: %s must be an integer, got %T", ma.ErrInvalidParameter, name, v)
}

func (p Params) floatValue(name string, def float64) (float64, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("%w: %s must be a number, got %T", ma.ErrInvalidParameter, name, v)
}

func (p Params) stringValue(name, def string) (string, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ma.ErrInvalidParameter, name, v)
	}
	return s, nil
}

func (p Params) boolValue(name string, def bool) (bool, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a boolean, got %T", ma.ErrInvalidParameter, name, v)
	}
	return b, nil
}

func (p Params) maTypeValue(name string, def ma.Type) (ma.Type, error) {
	s, err := p.stringValue(name, "")
	if err != nil {
		return 0, err
	}
	if s == "" {
		return def, nil
	}
	return ma.Parse(s)
}
