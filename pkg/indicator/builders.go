package indicator

import (
	"fmt"
	"math"

	"github.com/quantforge/ta/pkg/ma"
)

// Derived-series builders: stateless transforms from the canonical columns
// to the intermediate sequences the pipelines smooth and combine. Every
// builder returns a slice of the input length and uses a documented rule at
// index 0 instead of inventing a prior bar.

// trueRange is max(high-low, |high-prevClose|, |low-prevClose|);
// the first bar has no prior close and uses high-low.
func trueRange(high, low, closev []float64) []float64 {
	tr := make([]float64, len(high))
	for i := range high {
		if i == 0 {
			tr[0] = high[0] - low[0]
			continue
		}
		tr[i] = math.Max(high[i]-low[i],
			math.Max(math.Abs(high[i]-closev[i-1]), math.Abs(low[i]-closev[i-1])))
	}
	return tr
}

// directionalMovement emits +DM/-DM: the up-move (or down-move) when it is
// positive and strictly larger than the opposite move, else 0. Both are 0 at
// index 0.
func directionalMovement(high, low []float64) (pDM, mDM []float64) {
	pDM = make([]float64, len(high))
	mDM = make([]float64, len(high))
	for i := 1; i < len(high); i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			pDM[i] = up
		}
		if down > up && down > 0 {
			mDM[i] = down
		}
	}
	return pDM, mDM
}

func typicalPrice(high, low, closev []float64) []float64 {
	tp := make([]float64, len(high))
	for i := range high {
		tp[i] = (high[i] + low[i] + closev[i]) / 3
	}
	return tp
}

func medianPrice(high, low []float64) []float64 {
	mp := make([]float64, len(high))
	for i := range high {
		mp[i] = (high[i] + low[i]) / 2
	}
	return mp
}

// moneyFlows splits typical price times volume into positive and negative
// flows by the typical-price direction. Index 0 has no direction and lands
// in neither flow.
func moneyFlows(tp, volume []float64) (pos, neg []float64) {
	pos = make([]float64, len(tp))
	neg = make([]float64, len(tp))
	for i := 1; i < len(tp); i++ {
		mf := tp[i] * volume[i]
		switch {
		case tp[i] > tp[i-1]:
			pos[i] = mf
		case tp[i] < tp[i-1]:
			neg[i] = mf
		}
	}
	return pos, neg
}

// rollingMax returns the highest value of the trailing window, NaN until a
// full window exists. A NaN inside the window makes the extreme NaN.
func rollingMax(values []float64, period int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		if i < period-1 {
			result[i] = math.NaN()
			continue
		}
		highest := math.Inf(-1)
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				highest = math.NaN()
				break
			}
			if values[j] > highest {
				highest = values[j]
			}
		}
		result[i] = highest
	}
	return result
}

// rollingMin returns the lowest value of the trailing window, NaN until a
// full window exists. A NaN inside the window makes the extreme NaN.
func rollingMin(values []float64, period int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		if i < period-1 {
			result[i] = math.NaN()
			continue
		}
		lowest := math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				lowest = math.NaN()
				break
			}
			if values[j] < lowest {
				lowest = values[j]
			}
		}
		result[i] = lowest
	}
	return result
}

// rollingStd is the population standard deviation of the trailing window.
func rollingStd(values []float64, period int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		if i < period-1 {
			result[i] = math.NaN()
			continue
		}
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += values[j]
		}
		mean := sum / float64(period)
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}
		result[i] = math.Sqrt(variance / float64(period))
	}
	return result
}

// meanAbsDev is the mean absolute deviation of the trailing window around
// the supplied center series; 0 until a full window exists.
func meanAbsDev(values, center []float64, period int) []float64 {
	result := make([]float64, len(values))
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += math.Abs(values[j] - center[i])
		}
		result[i] = sum / float64(period)
	}
	return result
}

func validatePeriod(name string, period int) error {
	if period < 1 {
		return fmt.Errorf("%w: %s must be greater than 0, got %d", ma.ErrInvalidParameter, name, period)
	}
	return nil
}

func validateMultiplier(name string, value float64) error {
	if value <= 0 {
		return fmt.Errorf("%w: %s must be greater than 0, got %g", ma.ErrInvalidParameter, name, value)
	}
	return nil
}

func validateValue(value string, allowVolume bool) error {
	switch value {
	case "open", "high", "low", "close":
		return nil
	case "volume":
		if allowVolume {
			return nil
		}
	}
	allowed := "open, high, low, close"
	if allowVolume {
		allowed += ", volume"
	}
	return fmt.Errorf("%w: value must be one of %s, got %s", ma.ErrInvalidParameter, allowed, value)
}
