// Package ma implements the smoothing kernel shared by every indicator:
// a simple windowed mean plus the exponential blend
// out[i] = alpha*in[i] + (1-alpha)*out[i-1], in seven initialization
// flavors. All functions are batch transforms over float64 slices where
// NaN marks an unavailable value.
package ma

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter is returned for out-of-domain periods and
// unrecognized policy names.
var ErrInvalidParameter = errors.New("invalid parameter")

// Type selects the smoothing recurrence and its initialization.
type Type int

const (
	// SMA is the plain mean of the last period values.
	SMA Type = iota + 1
	// EMA is the classic EMA (alpha = 2/(period+1)) seeded with the mean
	// of the first period values.
	EMA
	// MMA is the modified (Wilder) EMA (alpha = 1/period) seeded with the
	// mean of the first period values.
	MMA
	// EMA0 is the classic EMA seeded with the first value.
	EMA0
	// MMA0 is the modified EMA seeded with the first value.
	MMA0
	// EMAW is the classic EMA with dynamic warm-up: the zero-seeded
	// exponential sum divided by its cumulative weight, defined from the
	// first sample on.
	EMAW
	// MMAW is the modified EMA with the same dynamic warm-up.
	MMAW
)

// Parse maps a policy name to its Type.
func Parse(name string) (Type, error) {
	switch name {
	case "sma":
		return SMA, nil
	case "ema":
		return EMA, nil
	case "mma":
		return MMA, nil
	case "ema0":
		return EMA0, nil
	case "mma0":
		return MMA0, nil
	case "emaw":
		return EMAW, nil
	case "mmaw":
		return MMAW, nil
	}
	return 0, fmt.Errorf("%w: unknown move average type: %s", ErrInvalidParameter, name)
}

// String returns the policy name accepted by Parse.
func (t Type) String() string {
	switch t {
	case SMA:
		return "sma"
	case EMA:
		return "ema"
	case MMA:
		return "mma"
	case EMA0:
		return "ema0"
	case MMA0:
		return "mma0"
	case EMAW:
		return "emaw"
	case MMAW:
		return "mmaw"
	}
	return fmt.Sprintf("ma.Type(%d)", int(t))
}

func (t Type) alpha(period int) float64 {
	switch t {
	case EMA, EMA0, EMAW:
		return 2.0 / (float64(period) + 1.0)
	default:
		return 1.0 / float64(period)
	}
}

// Calculate smooths values with the given period and policy. The output has
// the same length as the input. A NaN input yields a NaN output at the same
// index and resets the recurrence: the next non-NaN value starts a fresh run
// with the policy's own seeding rule. Insufficient history (shorter than the
// seed needs) surfaces as leading NaNs, never as an error.
func Calculate(values []float64, period int, typ Type) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: period must be greater than 0, got %d", ErrInvalidParameter, period)
	}
	switch typ {
	case SMA:
		return calculateSMA(values, period), nil
	case EMA, MMA:
		return calculateSeeded(values, period, typ.alpha(period)), nil
	case EMA0, MMA0:
		return calculateFromFirst(values, typ.alpha(period)), nil
	case EMAW, MMAW:
		return calculateWarmup(values, typ.alpha(period)), nil
	}
	return nil, fmt.Errorf("%w: bad move average type: %d", ErrInvalidParameter, int(typ))
}

// calculateSMA keeps a rolling sum over the window and tracks the most
// recent NaN so that any window touching one yields NaN.
func calculateSMA(values []float64, period int) []float64 {
	result := make([]float64, len(values))
	sum := 0.0
	lastBad := -1
	for i, v := range values {
		if math.IsNaN(v) {
			lastBad = i
			sum = 0
			result[i] = math.NaN()
			continue
		}
		sum += v
		if i >= period && lastBad < i-period {
			sum -= values[i-period]
		}
		// window [i-period+1, i] must be fully clean
		if i-period+1 <= lastBad {
			result[i] = math.NaN()
			continue
		}
		result[i] = sum / float64(period)
	}
	return result
}

// calculateSeeded implements ema/mma: each run of non-NaN values is seeded
// with the mean of its first period samples, then blended.
func calculateSeeded(values []float64, period int, alpha float64) []float64 {
	result := make([]float64, len(values))
	count := 0
	seedSum := 0.0
	prev := 0.0
	for i, v := range values {
		if math.IsNaN(v) {
			count = 0
			seedSum = 0
			result[i] = math.NaN()
			continue
		}
		count++
		switch {
		case count < period:
			seedSum += v
			result[i] = math.NaN()
		case count == period:
			prev = (seedSum + v) / float64(period)
			result[i] = prev
		default:
			prev = v*alpha + prev*(1-alpha)
			result[i] = prev
		}
	}
	return result
}

// calculateFromFirst implements ema0/mma0: the first value of a run is its
// own seed.
func calculateFromFirst(values []float64, alpha float64) []float64 {
	result := make([]float64, len(values))
	fresh := true
	prev := 0.0
	for i, v := range values {
		if math.IsNaN(v) {
			fresh = true
			result[i] = math.NaN()
			continue
		}
		if fresh {
			prev = v
			fresh = false
		} else {
			prev = v*alpha + prev*(1-alpha)
		}
		result[i] = prev
	}
	return result
}

// calculateWarmup implements emaw/mmaw: a zero-seeded exponential sum
// normalized by its cumulative weight 1-(1-alpha)^(k+1), which removes the
// start-up bias and converges to the plain recurrence for large k.
func calculateWarmup(values []float64, alpha float64) []float64 {
	result := make([]float64, len(values))
	num := 0.0
	den := 0.0
	for i, v := range values {
		if math.IsNaN(v) {
			num = 0
			den = 0
			result[i] = math.NaN()
			continue
		}
		num = v*alpha + num*(1-alpha)
		den = alpha + den*(1-alpha)
		result[i] = num / den
	}
	return result
}
