package indicator

import (
	"math"

	"github.com/quantforge/ta/pkg/ma"
	"github.com/quantforge/ta/pkg/quotes"
)

// SMA computes the simple moving average of a price column.
// Output series: sma.
func SMA(q *quotes.Quotes, period int, value string) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	if err := validateValue(value, false); err != nil {
		return nil, err
	}
	source, err := q.Column(value)
	if err != nil {
		return nil, err
	}
	out, err := ma.Calculate(source, period, ma.SMA)
	if err != nil {
		return nil, err
	}
	return newResult().add("sma", out), nil
}

// EMA computes the exponential moving average seeded with the mean of the
// first period values. Output series: ema.
func EMA(q *quotes.Quotes, period int, value string) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	if err := validateValue(value, true); err != nil {
		return nil, err
	}
	source, err := q.Column(value)
	if err != nil {
		return nil, err
	}
	out, err := ma.Calculate(source, period, ma.EMA)
	if err != nil {
		return nil, err
	}
	return newResult().add("ema", out), nil
}

// MA computes a moving average of any supported policy.
// Output series: move_average.
func MA(q *quotes.Quotes, period int, value string, maType ma.Type) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	if err := validateValue(value, true); err != nil {
		return nil, err
	}
	source, err := q.Column(value)
	if err != nil {
		return nil, err
	}
	out, err := ma.Calculate(source, period, maType)
	if err != nil {
		return nil, err
	}
	return newResult().add("move_average", out), nil
}

// TEMA computes the triple exponential moving average
// 3*EMA1 - 3*EMA2 + EMA3, the cascaded passes running without their own
// warm-up so the lag compensation lines up. Output series: tema.
func TEMA(q *quotes.Quotes, period int, value string) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	if err := validateValue(value, false); err != nil {
		return nil, err
	}
	source, err := q.Column(value)
	if err != nil {
		return nil, err
	}
	ema1, err := ma.Calculate(source, period, ma.EMA)
	if err != nil {
		return nil, err
	}
	ema2, err := ma.Calculate(ema1, period, ma.EMA0)
	if err != nil {
		return nil, err
	}
	ema3, err := ma.Calculate(ema2, period, ma.EMA0)
	if err != nil {
		return nil, err
	}
	tema := make([]float64, len(source))
	for i := range tema {
		tema[i] = 3*ema1[i] - 3*ema2[i] + ema3[i]
	}
	return newResult().add("tema", tema), nil
}

// VWMA computes the volume weighted moving average over a rolling window.
// Output series: vwma.
func VWMA(q *quotes.Quotes, period int, value string) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	if err := validateValue(value, false); err != nil {
		return nil, err
	}
	source, err := q.Column(value)
	if err != nil {
		return nil, err
	}
	volume, err := q.Volume()
	if err != nil {
		return nil, err
	}
	vwma := make([]float64, len(source))
	for i := range vwma {
		if i < period-1 {
			vwma[i] = math.NaN()
			continue
		}
		volumeSum := 0.0
		weighted := 0.0
		for j := i - period + 1; j <= i; j++ {
			volumeSum += volume[j]
			weighted += source[j] * volume[j]
		}
		if volumeSum == 0 {
			vwma[i] = math.NaN()
			continue
		}
		vwma[i] = weighted / volumeSum
	}
	return newResult().add("vwma", vwma), nil
}

// MACD computes the moving average convergence/divergence of a price
// column. Output series: macd, signal, hist.
func MACD(q *quotes.Quotes, periodShort, periodLong, periodSignal int, maType, maTypeSignal ma.Type, value string) (*Result, error) {
	if err := validatePeriod("period_short", periodShort); err != nil {
		return nil, err
	}
	if err := validatePeriod("period_long", periodLong); err != nil {
		return nil, err
	}
	if err := validatePeriod("period_signal", periodSignal); err != nil {
		return nil, err
	}
	if periodLong <= periodShort {
		return nil, errPeriodOrder("period_long", periodLong, "period_short", periodShort)
	}
	if err := validateValue(value, false); err != nil {
		return nil, err
	}
	source, err := q.Column(value)
	if err != nil {
		return nil, err
	}
	maShort, err := ma.Calculate(source, periodShort, maType)
	if err != nil {
		return nil, err
	}
	maLong, err := ma.Calculate(source, periodLong, maType)
	if err != nil {
		return nil, err
	}
	macd := make([]float64, len(source))
	for i := range macd {
		macd[i] = maShort[i] - maLong[i]
	}
	signal, err := ma.Calculate(macd, periodSignal, maTypeSignal)
	if err != nil {
		return nil, err
	}
	hist := make([]float64, len(source))
	for i := range hist {
		hist[i] = macd[i] - signal[i]
	}
	return newResult().add("macd", macd).add("signal", signal).add("hist", hist), nil
}
