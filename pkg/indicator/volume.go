package indicator

import (
	"math"

	"github.com/quantforge/ta/pkg/ma"
	"github.com/quantforge/ta/pkg/quotes"
)

// ADL computes the accumulation/distribution line: cumulative close location
// value times volume. Bars with a zero high-low range contribute nothing.
// With maPeriod > 0 a smoothed copy is added.
// Output series: adl[, adl_smooth].
func ADL(q *quotes.Quotes, maPeriod int, maType ma.Type) (*Result, error) {
	if maPeriod > 0 {
		if err := validatePeriod("ma_period", maPeriod); err != nil {
			return nil, err
		}
	}
	volume, err := q.Volume()
	if err != nil {
		return nil, err
	}
	high, low, closev := q.High(), q.Low(), q.Close()
	adl := make([]float64, len(closev))
	sum := 0.0
	for i := range adl {
		hl := high[i] - low[i]
		if hl != 0 {
			clv := ((closev[i] - low[i]) - (high[i] - closev[i])) / hl
			sum += clv * volume[i]
		}
		adl[i] = sum
	}
	result := newResult().add("adl", adl)
	if maPeriod > 0 {
		smooth, err := ma.Calculate(adl, maPeriod, maType)
		if err != nil {
			return nil, err
		}
		result.add("adl_smooth", smooth)
	}
	return result, nil
}

// OBV computes on-balance volume: volume added on up closes and subtracted
// on down closes. The first bar has no direction and contributes nothing.
// Output series: obv.
func OBV(q *quotes.Quotes) (*Result, error) {
	volume, err := q.Volume()
	if err != nil {
		return nil, err
	}
	closev := q.Close()
	obv := make([]float64, len(closev))
	sum := 0.0
	for i := range obv {
		if i > 0 {
			switch {
			case closev[i] > closev[i-1]:
				sum += volume[i]
			case closev[i] < closev[i-1]:
				sum -= volume[i]
			case math.IsNaN(closev[i]) || math.IsNaN(closev[i-1]):
				sum = math.NaN()
			}
		}
		obv[i] = sum
	}
	return newResult().add("obv", obv), nil
}

// VWAP computes the volume weighted average price: the running volume
// weighted mean of the typical price. A zero cumulative volume leaves the
// bar undefined. Output series: vwap.
func VWAP(q *quotes.Quotes) (*Result, error) {
	volume, err := q.Volume()
	if err != nil {
		return nil, err
	}
	tp := typicalPrice(q.High(), q.Low(), q.Close())
	vwap := make([]float64, len(tp))
	sumTPV := 0.0
	sumVolume := 0.0
	for i := range vwap {
		sumTPV += tp[i] * volume[i]
		sumVolume += volume[i]
		if sumVolume == 0 {
			vwap[i] = math.NaN()
			continue
		}
		vwap[i] = sumTPV / sumVolume
	}
	return newResult().add("vwap", vwap), nil
}

// VolumeOsc computes the volume oscillator: the short volume average minus
// the long one, as a percentage of the long. A zero long average leaves the
// bar undefined. Output series: osc.
func VolumeOsc(q *quotes.Quotes, periodShort, periodLong int, maType ma.Type) (*Result, error) {
	if err := validatePeriod("period_short", periodShort); err != nil {
		return nil, err
	}
	if err := validatePeriod("period_long", periodLong); err != nil {
		return nil, err
	}
	if periodLong <= periodShort {
		return nil, errPeriodOrder("period_long", periodLong, "period_short", periodShort)
	}
	volume, err := q.Volume()
	if err != nil {
		return nil, err
	}
	volShort, err := ma.Calculate(volume, periodShort, maType)
	if err != nil {
		return nil, err
	}
	volLong, err := ma.Calculate(volume, periodLong, maType)
	if err != nil {
		return nil, err
	}
	osc := make([]float64, len(volume))
	for i := range osc {
		if volLong[i] == 0 {
			osc[i] = math.NaN()
			continue
		}
		osc[i] = (volShort[i] - volLong[i]) / volLong[i] * 100
	}
	return newResult().add("osc", osc), nil
}
