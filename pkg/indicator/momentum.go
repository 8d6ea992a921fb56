package indicator

import (
	"fmt"
	"math"

	"github.com/quantforge/ta/pkg/ma"
	"github.com/quantforge/ta/pkg/quotes"
)

func errPeriodOrder(longName string, long int, shortName string, short int) error {
	return fmt.Errorf("%w: %s (%d) must be greater than %s (%d)",
		ma.ErrInvalidParameter, longName, long, shortName, short)
}

// RSI computes the relative strength index: smoothed up-moves as a share of
// total smoothed movement, scaled to [0, 100]. A window without losses
// reads 100. Output series: rsi.
func RSI(q *quotes.Quotes, period int, maType ma.Type, value string) (*Result, error) {
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
	if len(source) == 0 {
		return newResult().add("rsi", []float64{}), nil
	}
	gains := make([]float64, len(source)-1)
	losses := make([]float64, len(source)-1)
	for i := 1; i < len(source); i++ {
		change := source[i] - source[i-1]
		switch {
		case math.IsNaN(change):
			gains[i-1] = math.NaN()
			losses[i-1] = math.NaN()
		case change > 0:
			gains[i-1] = change
		case change < 0:
			losses[i-1] = -change
		}
	}
	gainsSmooth, err := ma.Calculate(gains, period, maType)
	if err != nil {
		return nil, err
	}
	lossesSmooth, err := ma.Calculate(losses, period, maType)
	if err != nil {
		return nil, err
	}
	rsi := make([]float64, len(source))
	rsi[0] = math.NaN()
	for i := range gainsSmooth {
		divider := gainsSmooth[i] + lossesSmooth[i]
		if divider == 0 {
			rsi[i+1] = 100
			continue
		}
		rsi[i+1] = gainsSmooth[i] / divider * 100
	}
	return newResult().add("rsi", rsi), nil
}

// ROC computes the rate of change over period bars as a percentage, plus a
// smoothed copy. Output series: roc, smooth_roc.
func ROC(q *quotes.Quotes, period, maPeriod int, maType ma.Type, value string) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	if err := validatePeriod("ma_period", maPeriod); err != nil {
		return nil, err
	}
	if err := validateValue(value, true); err != nil {
		return nil, err
	}
	source, err := q.Column(value)
	if err != nil {
		return nil, err
	}
	n := len(source)
	raw := make([]float64, 0, n)
	if n > period {
		raw = make([]float64, n-period)
		for i := range raw {
			base := source[i]
			if base == 0 {
				raw[i] = 0
				continue
			}
			raw[i] = (source[i+period] - base) / base * 100
		}
	}
	smooth, err := ma.Calculate(raw, maPeriod, maType)
	if err != nil {
		return nil, err
	}
	roc := make([]float64, n)
	smoothROC := make([]float64, n)
	for i := 0; i < n && i < period; i++ {
		roc[i] = math.NaN()
		smoothROC[i] = math.NaN()
	}
	copy(roc[min(period, n):], raw)
	copy(smoothROC[min(period, n):], smooth)
	return newResult().add("roc", roc).add("smooth_roc", smoothROC), nil
}

// TRIX computes the one-bar percentage change of a triple smoothed EMA.
// Output series: trix.
func TRIX(q *quotes.Quotes, period int, value string) (*Result, error) {
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
	trix := make([]float64, len(source))
	if len(trix) > 0 {
		trix[0] = math.NaN()
	}
	for i := 1; i < len(trix); i++ {
		if ema3[i-1] == 0 {
			trix[i] = math.NaN()
			continue
		}
		trix[i] = (ema3[i] - ema3[i-1]) / ema3[i-1] * 100
	}
	return newResult().add("trix", trix), nil
}

// Awesome computes the awesome oscillator: fast minus slow moving average
// of the median price, optionally normalized by the median price.
// Output series: awesome.
func Awesome(q *quotes.Quotes, periodFast, periodSlow int, maTypeFast, maTypeSlow ma.Type, normalized bool) (*Result, error) {
	if err := validatePeriod("period_fast", periodFast); err != nil {
		return nil, err
	}
	if err := validatePeriod("period_slow", periodSlow); err != nil {
		return nil, err
	}
	if periodSlow <= periodFast {
		return nil, errPeriodOrder("period_slow", periodSlow, "period_fast", periodFast)
	}
	median := medianPrice(q.High(), q.Low())
	maFast, err := ma.Calculate(median, periodFast, maTypeFast)
	if err != nil {
		return nil, err
	}
	maSlow, err := ma.Calculate(median, periodSlow, maTypeSlow)
	if err != nil {
		return nil, err
	}
	awesome := make([]float64, len(median))
	for i := range awesome {
		awesome[i] = maFast[i] - maSlow[i]
		if normalized {
			if median[i] == 0 {
				awesome[i] = math.NaN()
				continue
			}
			awesome[i] /= median[i]
		}
	}
	return newResult().add("awesome", awesome), nil
}

// Stochastic computes the stochastic oscillator: the raw %K position of the
// close inside the rolling high-low range, a smoothed %K and the %D line.
// A flat window reads 0. Output series: oscillator, value_k, value_d.
func Stochastic(q *quotes.Quotes, period, periodD, smooth int, maType ma.Type) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	if err := validatePeriod("period_d", periodD); err != nil {
		return nil, err
	}
	if err := validatePeriod("smooth", smooth); err != nil {
		return nil, err
	}
	closev := q.Close()
	highest := rollingMax(q.High(), period)
	lowest := rollingMin(q.Low(), period)
	oscillator := make([]float64, len(closev))
	for i := range closev {
		if math.IsNaN(highest[i]) || math.IsNaN(lowest[i]) {
			oscillator[i] = math.NaN()
			continue
		}
		if highest[i] == lowest[i] {
			oscillator[i] = 0
			continue
		}
		oscillator[i] = (closev[i] - lowest[i]) / (highest[i] - lowest[i]) * 100
	}
	valueK, err := ma.Calculate(oscillator, smooth, maType)
	if err != nil {
		return nil, err
	}
	valueD, err := ma.Calculate(valueK, periodD, maType)
	if err != nil {
		return nil, err
	}
	return newResult().add("oscillator", oscillator).add("value_k", valueK).add("value_d", valueD), nil
}

// WilliamsR computes Williams %R: the close position relative to the
// rolling high, scaled to [-100, 0]. A flat window reads 0.
// Output series: williams_r.
func WilliamsR(q *quotes.Quotes, period int) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	closev := q.Close()
	highest := rollingMax(q.High(), period)
	lowest := rollingMin(q.Low(), period)
	williams := make([]float64, len(closev))
	for i := range closev {
		if math.IsNaN(highest[i]) || math.IsNaN(lowest[i]) {
			williams[i] = math.NaN()
			continue
		}
		if highest[i] == lowest[i] {
			williams[i] = 0
			continue
		}
		williams[i] = (closev[i] - highest[i]) / (highest[i] - lowest[i]) * 100
	}
	return newResult().add("williams_r", williams), nil
}

// CCI computes the commodity channel index: typical price deviation from
// its mean, normalized by 0.015 times the mean absolute deviation. A zero
// deviation window reads 0, which also covers the warm-up span.
// Output series: cci.
func CCI(q *quotes.Quotes, period int) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	tp := typicalPrice(q.High(), q.Low(), q.Close())
	smaTP, err := ma.Calculate(tp, period, ma.SMA)
	if err != nil {
		return nil, err
	}
	mad := meanAbsDev(tp, smaTP, period)
	cci := make([]float64, len(tp))
	for i := range cci {
		if math.IsNaN(mad[i]) {
			cci[i] = math.NaN()
			continue
		}
		if mad[i] == 0 {
			cci[i] = 0
			continue
		}
		cci[i] = (tp[i] - smaTP[i]) / mad[i] / 0.015
	}
	return newResult().add("cci", cci), nil
}

// MFI computes the money flow index: positive money flow as a share of
// total flow over the window, scaled to [0, 100]. The first period entries
// are NaN because the flow direction needs a prior bar.
// Output series: mfi.
func MFI(q *quotes.Quotes, period int) (*Result, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}
	volume, err := q.Volume()
	if err != nil {
		return nil, err
	}
	tp := typicalPrice(q.High(), q.Low(), q.Close())
	pos, neg := moneyFlows(tp, volume)
	mfi := make([]float64, len(tp))
	for i := range mfi {
		if i < period {
			mfi[i] = math.NaN()
			continue
		}
		sumPos := 0.0
		sumNeg := 0.0
		for j := i - period + 1; j <= i; j++ {
			sumPos += pos[j]
			sumNeg += neg[j]
		}
		total := sumPos + sumNeg
		if total == 0 {
			mfi[i] = 0
			continue
		}
		mfi[i] = 100 * sumPos / total
	}
	return newResult().add("mfi", mfi), nil
}
