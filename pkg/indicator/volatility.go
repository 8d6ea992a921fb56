package indicator

import (
	"math"

	"github.com/quantforge/ta/pkg/ma"
	"github.com/quantforge/ta/pkg/quotes"
)

// ATR computes the average true range together with the raw true range and
// the ATR as a percentage of the close. Output series: tr, atr, atrp.
func ATR(q *quotes.Quotes, smooth int, maType ma.Type) (*Result, error) {
	if err := validatePeriod("smooth", smooth); err != nil {
		return nil, err
	}
	tr := trueRange(q.High(), q.Low(), q.Close())
	atr, err := ma.Calculate(tr, smooth, maType)
	if err != nil {
		return nil, err
	}
	closev := q.Close()
	atrp := make([]float64, len(tr))
	for i := range atrp {
		if closev[i] == 0 {
			atrp[i] = math.NaN()
			continue
		}
		atrp[i] = atr[i] / closev[i] * 100
	}
	return newResult().add("tr", tr).add("atr", atr).add("atrp", atrp), nil
}

// Bollinger computes Bollinger bands around a moving average of the chosen
// column, with independent upper and lower deviation multipliers, plus the
// z-score of the source against the band center. A zero deviation window
// gives a z-score of 0. Output series: mid_line, up_line, down_line,
// z_score.
func Bollinger(q *quotes.Quotes, period int, deviationUp, deviationDown float64, maType ma.Type, value string) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	if err := validateMultiplier("deviation_up", deviationUp); err != nil {
		return nil, err
	}
	if err := validateMultiplier("deviation_down", deviationDown); err != nil {
		return nil, err
	}
	if err := validateValue(value, true); err != nil {
		return nil, err
	}
	source, err := q.Column(value)
	if err != nil {
		return nil, err
	}
	mid, err := ma.Calculate(source, period, maType)
	if err != nil {
		return nil, err
	}
	std := rollingStd(source, period)
	up := make([]float64, len(source))
	down := make([]float64, len(source))
	zScore := make([]float64, len(source))
	for i := range source {
		up[i] = mid[i] + std[i]*deviationUp
		down[i] = mid[i] - std[i]*deviationDown
		if std[i] == 0 {
			zScore[i] = 0
			continue
		}
		zScore[i] = (source[i] - mid[i]) / std[i]
	}
	return newResult().
		add("mid_line", mid).
		add("up_line", up).
		add("down_line", down).
		add("z_score", zScore), nil
}

// Keltner computes the Keltner channel: a moving average of the close with
// bands one ATR multiple away, plus the relative channel width. A zero
// center gives a width of 0. Output series: mid_line, up_line, down_line,
// width.
func Keltner(q *quotes.Quotes, period int, multiplier float64, periodATR int, maType, maTypeATR ma.Type) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	if err := validateMultiplier("multiplier", multiplier); err != nil {
		return nil, err
	}
	if err := validatePeriod("period_atr", periodATR); err != nil {
		return nil, err
	}
	atrResult, err := ATR(q, periodATR, maTypeATR)
	if err != nil {
		return nil, err
	}
	atr, _ := atrResult.Get("atr")
	mid, err := ma.Calculate(q.Close(), period, maType)
	if err != nil {
		return nil, err
	}
	up := make([]float64, len(mid))
	down := make([]float64, len(mid))
	width := make([]float64, len(mid))
	for i := range mid {
		up[i] = mid[i] + atr[i]*multiplier
		down[i] = mid[i] - atr[i]*multiplier
		if mid[i] == 0 {
			width[i] = 0
			continue
		}
		width[i] = (up[i] - down[i]) / mid[i]
	}
	return newResult().
		add("mid_line", mid).
		add("up_line", up).
		add("down_line", down).
		add("width", width), nil
}

// Chandelier computes chandelier exit levels: the rolling extreme adjusted
// by an ATR multiple. With useClose the extremes come from the close column
// instead of high/low. Output series: exit_long, exit_short.
func Chandelier(q *quotes.Quotes, period int, multiplier float64, useClose bool) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	if err := validateMultiplier("multiplier", multiplier); err != nil {
		return nil, err
	}
	atrResult, err := ATR(q, period, ma.MMA)
	if err != nil {
		return nil, err
	}
	atr, _ := atrResult.Get("atr")
	high, low := q.High(), q.Low()
	if useClose {
		high = q.Close()
		low = q.Close()
	}
	highest := rollingMax(high, period)
	lowest := rollingMin(low, period)
	exitLong := make([]float64, len(atr))
	exitShort := make([]float64, len(atr))
	for i := range atr {
		exitLong[i] = highest[i] - atr[i]*multiplier
		exitShort[i] = lowest[i] + atr[i]*multiplier
	}
	return newResult().add("exit_long", exitLong).add("exit_short", exitShort), nil
}

// Supertrend computes the supertrend line: ATR bands around the bar
// midpoint that ratchet toward price and flip with the trend.
// Output series: supertrend, supertrend_mid.
func Supertrend(q *quotes.Quotes, period int, multiplier float64, maType ma.Type) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	if err := validateMultiplier("multiplier", multiplier); err != nil {
		return nil, err
	}
	atrResult, err := ATR(q, period, maType)
	if err != nil {
		return nil, err
	}
	atr, _ := atrResult.Get("atr")
	high, low, closev := q.High(), q.Low(), q.Close()
	n := len(closev)
	supertrend := make([]float64, n)
	supertrendMid := make([]float64, n)
	start := period - 1
	for i := 0; i < start && i < n; i++ {
		supertrend[i] = math.NaN()
		supertrendMid[i] = math.NaN()
	}
	if start >= n {
		return newResult().add("supertrend", supertrend).add("supertrend_mid", supertrendMid), nil
	}
	mid := (high[start] + low[start]) / 2
	upperBand := mid + multiplier*atr[start]
	lowerBand := mid - multiplier*atr[start]
	trendUp := closev[start] >= mid
	for i := start; i < n; i++ {
		mid = (high[i] + low[i]) / 2
		supertrendMid[i] = mid
		baseUpper := mid + multiplier*atr[i]
		baseLower := mid - multiplier*atr[i]
		if i > 0 {
			if baseUpper < upperBand || closev[i-1] > upperBand {
				upperBand = baseUpper
			}
			if baseLower > lowerBand || closev[i-1] < lowerBand {
				lowerBand = baseLower
			}
		}
		threshold := upperBand
		if trendUp {
			threshold = lowerBand
		}
		if closev[i] <= threshold {
			supertrend[i] = upperBand
			trendUp = false
		} else {
			supertrend[i] = lowerBand
			trendUp = true
		}
	}
	return newResult().add("supertrend", supertrend).add("supertrend_mid", supertrendMid), nil
}
