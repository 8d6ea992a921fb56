package indicator

import (
	"fmt"
	"math"

	"github.com/quantforge/ta/pkg/ma"
	"github.com/quantforge/ta/pkg/quotes"
)

// ADX computes the average directional movement index with its two
// directional indicator lines. The DI lines are smoothed directional
// movement normalized by ATR; bars where ATR is zero have no defined DI.
// Output series: adx, p_di, m_di.
func ADX(q *quotes.Quotes, period, smooth int, maType ma.Type) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	if err := validatePeriod("smooth", smooth); err != nil {
		return nil, err
	}
	pDM, mDM := directionalMovement(q.High(), q.Low())
	atrResult, err := ATR(q, period, maType)
	if err != nil {
		return nil, err
	}
	atr, _ := atrResult.Get("atr")
	pSmooth, err := ma.Calculate(pDM, period, maType)
	if err != nil {
		return nil, err
	}
	mSmooth, err := ma.Calculate(mDM, period, maType)
	if err != nil {
		return nil, err
	}
	n := q.Len()
	pDI := make([]float64, n)
	mDI := make([]float64, n)
	dx := make([]float64, n)
	for i := 0; i < n; i++ {
		if atr[i] == 0 {
			pDI[i] = math.NaN()
			mDI[i] = math.NaN()
			dx[i] = math.NaN()
			continue
		}
		pDI[i] = 100 * pSmooth[i] / atr[i]
		mDI[i] = 100 * mSmooth[i] / atr[i]
		sum := pDI[i] + mDI[i]
		if sum == 0 {
			dx[i] = 0
			continue
		}
		dx[i] = 100 * math.Abs(pDI[i]-mDI[i]) / sum
	}
	adx, err := ma.Calculate(dx, smooth, maType)
	if err != nil {
		return nil, err
	}
	return newResult().add("adx", adx).add("p_di", pDI).add("m_di", mDI), nil
}

// Aroon computes the aroon up/down lines: how recently the rolling extreme
// was set, as a share of the period. The window spans period+1 bars, so the
// first period entries are NaN. Output series: up, down, oscillator.
func Aroon(q *quotes.Quotes, period int) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	high, low := q.High(), q.Low()
	n := len(high)
	up := make([]float64, n)
	down := make([]float64, n)
	oscillator := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period {
			up[i] = math.NaN()
			down[i] = math.NaN()
			oscillator[i] = math.NaN()
			continue
		}
		maxOffset, minOffset := 0, 0
		for j := 1; j <= period; j++ {
			if high[i-period+j] > high[i-period+maxOffset] {
				maxOffset = j
			}
			if low[i-period+j] < low[i-period+minOffset] {
				minOffset = j
			}
		}
		up[i] = float64(maxOffset) / float64(period) * 100
		down[i] = float64(minOffset) / float64(period) * 100
		oscillator[i] = up[i] - down[i]
	}
	return newResult().add("up", up).add("down", down).add("oscillator", oscillator), nil
}

// avMinMax is the midpoint of the rolling high-low range, the building
// block of the ichimoku lines. Window NaNs propagate through the extremes.
func avMinMax(high, low []float64, period int) []float64 {
	highest := rollingMax(high, period)
	lowest := rollingMin(low, period)
	out := make([]float64, len(high))
	for i := range high {
		out[i] = (highest[i] + lowest[i]) / 2
	}
	return out
}

// shiftAhead moves a series forward by offset bars, NaN-filling the start.
func shiftAhead(series []float64, offset int) []float64 {
	out := make([]float64, len(series))
	for i := range out {
		if i < offset {
			out[i] = math.NaN()
			continue
		}
		out[i] = series[i-offset]
	}
	return out
}

// Ichimoku computes the five ichimoku lines.
// Output series: tenkan, kijun, senkou_a, senkou_b, chikou.
func Ichimoku(q *quotes.Quotes, periodShort, periodMid, periodLong, offsetSenkou, offsetChikou int) (*Result, error) {
	if err := validatePeriod("period_short", periodShort); err != nil {
		return nil, err
	}
	if err := validatePeriod("period_mid", periodMid); err != nil {
		return nil, err
	}
	if err := validatePeriod("period_long", periodLong); err != nil {
		return nil, err
	}
	if offsetSenkou < 0 {
		return nil, fmt.Errorf("%w: offset_senkou must be >= 0, got %d", ma.ErrInvalidParameter, offsetSenkou)
	}
	if offsetChikou < 0 {
		return nil, fmt.Errorf("%w: offset_chikou must be >= 0, got %d", ma.ErrInvalidParameter, offsetChikou)
	}
	high, low, closev := q.High(), q.Low(), q.Close()
	n := len(closev)
	tenkan := avMinMax(high, low, periodShort)
	kijun := avMinMax(high, low, periodMid)
	senkouA := make([]float64, n)
	for i := range senkouA {
		senkouA[i] = (tenkan[i] + kijun[i]) / 2
	}
	senkouA = shiftAhead(senkouA, offsetSenkou)
	senkouB := shiftAhead(avMinMax(high, low, periodLong), offsetSenkou)
	chikou := make([]float64, n)
	for i := range chikou {
		if i+offsetChikou < n {
			chikou[i] = closev[i+offsetChikou]
		} else {
			chikou[i] = math.NaN()
		}
	}
	return newResult().
		add("tenkan", tenkan).
		add("kijun", kijun).
		add("senkou_a", senkouA).
		add("senkou_b", senkouB).
		add("chikou", chikou), nil
}

// ParabolicSAR computes the parabolic stop-and-reverse curve with its flip
// signals (+1 bullish flip, -1 bearish flip). Bars before the first flip
// are NaN since the initial trend direction is a guess.
// Output series: sar, signal.
func ParabolicSAR(q *quotes.Quotes, start, maximum, increment float64) (*Result, error) {
	if err := validateMultiplier("start", start); err != nil {
		return nil, err
	}
	if err := validateMultiplier("maximum", maximum); err != nil {
		return nil, err
	}
	if err := validateMultiplier("increment", increment); err != nil {
		return nil, err
	}
	high, low := q.High(), q.Low()
	n := len(high)
	sars := make([]float64, n)
	signals := make([]float64, n)
	if n == 0 {
		return newResult().add("sar", sars).add("signal", signals), nil
	}
	isBullish := true
	af := start
	sar := low[0]
	extreme := high[0]
	for i := 1; i < n; i++ {
		sar += af * (extreme - sar)
		if isBullish {
			if i > 1 {
				sar = math.Min(sar, math.Min(low[i-1], low[i-2]))
			}
			if low[i] < sar {
				isBullish = false
				signals[i] = -1
				sar = extreme
				af = start
				extreme = low[i]
			} else if high[i] > extreme {
				extreme = high[i]
				af = math.Min(af+increment, maximum)
			}
		} else {
			if i > 1 {
				sar = math.Max(sar, math.Max(high[i-1], high[i-2]))
			}
			if high[i] > sar {
				isBullish = true
				signals[i] = 1
				sar = extreme
				af = start
				extreme = high[i]
			} else if low[i] < extreme {
				extreme = low[i]
				af = math.Min(af+increment, maximum)
			}
		}
		sars[i] = sar
	}
	// the stretch before the first reversal has no confirmed direction
	for i := 0; i < n; i++ {
		if signals[i] != 0 {
			break
		}
		sars[i] = math.NaN()
		signals[i] = 0
	}
	return newResult().add("sar", sars).add("signal", signals), nil
}

// findUpCorner scans for the next high pivot starting at iPoint. New highs
// extend the candidate through a depth-wide lookahead; a pullback of at
// least delta confirms it. Returns the pivot index and the index to resume
// scanning from.
func findUpCorner(iPoint int, high, low []float64, delta float64, depth int) (int, int) {
	n := len(high)
	iCorner := iPoint
	corner := high[iPoint]
	for i := iPoint + 1; i < n; i++ {
		if high[i] > corner {
			for {
				end := i + depth
				if end > n {
					end = n
				}
				best := i
				for j := i + 1; j < end; j++ {
					if high[j] > high[best] {
						best = j
					}
				}
				iCorner = best
				corner = high[iCorner]
				if iCorner == i {
					break
				}
				i = iCorner
			}
		} else if (corner-low[i])/corner >= delta {
			return iCorner, i
		}
	}
	return iCorner, n
}

// findDownCorner mirrors findUpCorner for low pivots.
func findDownCorner(iPoint int, high, low []float64, delta float64, depth int) (int, int) {
	n := len(high)
	iCorner := iPoint
	corner := low[iPoint]
	for i := iPoint + 1; i < n; i++ {
		if low[i] < corner {
			for {
				end := i + depth
				if end > n {
					end = n
				}
				best := i
				for j := i + 1; j < end; j++ {
					if low[j] < low[best] {
						best = j
					}
				}
				iCorner = best
				corner = low[iCorner]
				if iCorner == i {
					break
				}
				i = iCorner
			}
		} else if (high[i]-corner)/corner >= delta {
			return iCorner, i
		}
	}
	return iCorner, n
}

// calcPivots walks the series alternating corner directions and marks each
// confirmed pivot. In checking mode it stops at the first pivot that a prior
// pass already marked with the same type, which is where the two passes
// converge regardless of the assumed starting direction.
func calcPivots(direction int, high, low []float64, delta float64, pivots, pivotTypes []float64, depth int, checking bool) (int, bool) {
	n := len(high)
	iPoint := 0
	for iPoint < n {
		if direction > 0 {
			iCorner, next := findUpCorner(iPoint, high, low, delta, depth)
			iPoint = next
			if iPoint >= n {
				break
			}
			if checking && pivotTypes[iCorner] == 1 {
				return iCorner, true
			}
			pivotTypes[iCorner] = 1
			pivots[iCorner] = high[iCorner]
			direction = -1
		} else {
			iCorner, next := findDownCorner(iPoint, high, low, delta, depth)
			iPoint = next
			if iPoint >= n {
				break
			}
			if checking && pivotTypes[iCorner] == -1 {
				return iCorner, true
			}
			pivotTypes[iCorner] = -1
			pivots[iCorner] = low[iCorner]
			direction = 1
		}
	}
	return 0, false
}

func argMax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

func argMin(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] < values[best] {
			best = i
		}
	}
	return best
}

// addLastPoint appends unconfirmed trailing pivots after the last confirmed
// one, keeping the depth spacing in both scan steps.
func addLastPoint(pivotTypes, pivots, high, low []float64, delta float64, depth int) {
	n := len(high)
	iLast := 0
	for i := n - 1; i >= 0; i-- {
		if pivotTypes[i] != 0 {
			iLast = i
			break
		}
	}
	if pivotTypes[iLast] == 0 || iLast+depth >= n {
		return
	}
	if pivotTypes[iLast] > 0 {
		vMax := high[iLast]
		iMin := iLast + depth + argMin(low[iLast+depth:])
		vMin := low[iMin]
		pivotTypes[iMin] = -1
		pivots[iMin] = vMin
		if (vMax-vMin)/vMax < delta || iMin+depth >= n {
			return
		}
		iMax := iMin + depth + argMax(high[iMin+depth:])
		pivotTypes[iMax] = 1
		pivots[iMax] = high[iMax]
		return
	}
	vMin := low[iLast]
	iMax := iLast + depth + argMax(high[iLast+depth:])
	vMax := high[iMax]
	pivotTypes[iMax] = 1
	pivots[iMax] = vMax
	if (vMax-vMin)/vMin < delta || iMax+depth >= n {
		return
	}
	iMin := iMax + depth + argMin(low[iMax+depth:])
	pivotTypes[iMin] = -1
	pivots[iMin] = low[iMin]
}

// ZigZag marks pivot points where price reverses by at least delta. The
// priceType selects the series pivots are read from: "high_low" uses the
// high and low columns, any single column name uses that column for both
// sides. With endPoints the unconfirmed trailing pivots are included.
// Output series: pivots (NaN where none), pivot_types (1 high, -1 low,
// 0 none).
func ZigZag(q *quotes.Quotes, delta float64, depth int, priceType string, endPoints bool) (*Result, error) {
	if err := validateMultiplier("delta", delta); err != nil {
		return nil, err
	}
	if err := validatePeriod("depth", depth); err != nil {
		return nil, err
	}
	var high, low []float64
	switch priceType {
	case "high_low":
		high, low = q.High(), q.Low()
	case "open", "high", "low", "close":
		col, err := q.Column(priceType)
		if err != nil {
			return nil, err
		}
		high, low = col, col
	default:
		return nil, fmt.Errorf("%w: type must be one of high_low, open, high, low, close, got %s",
			ma.ErrInvalidParameter, priceType)
	}
	n := len(high)
	pivots := make([]float64, n)
	pivotTypes := make([]float64, n)
	for i := range pivots {
		pivots[i] = math.NaN()
	}
	if n == 0 {
		return newResult().add("pivots", pivots).add("pivot_types", pivotTypes), nil
	}
	calcPivots(-1, high, low, delta, pivots, pivotTypes, depth, false)
	iValid, found := calcPivots(1, high, low, delta, pivots, pivotTypes, depth, true)

	if !endPoints && found {
		// the earliest pivots depend on the assumed starting direction;
		// keep them only when the move from the preceding extreme clears delta
		if iValid > 0 {
			if pivotTypes[iValid] > 0 {
				prevMin := low[argMin(low[:iValid])]
				if (pivots[iValid]-prevMin)/prevMin < delta {
					iValid++
				}
			} else {
				prevMax := high[argMax(high[:iValid])]
				if (prevMax-pivots[iValid])/prevMax < delta {
					iValid++
				}
			}
		}
		for i := 0; i < iValid; i++ {
			pivots[i] = math.NaN()
			pivotTypes[i] = 0
		}
	}
	if endPoints {
		addLastPoint(pivotTypes, pivots, high, low, delta, depth)
	}
	return newResult().add("pivots", pivots).add("pivot_types", pivotTypes), nil
}
