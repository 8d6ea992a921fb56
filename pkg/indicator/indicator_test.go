package indicator

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/quantforge/ta/pkg/ma"
	"github.com/quantforge/ta/pkg/quotes"
)

func nan() float64 { return math.NaN() }

func assertSeries(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected length %d, got %d", name, len(want), len(got))
	}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(got[i]) {
				t.Errorf("%s index %d: expected NA, got %f", name, i, got[i])
			}
			continue
		}
		if math.IsNaN(got[i]) {
			t.Errorf("%s index %d: expected %f, got NA", name, i, want[i])
			continue
		}
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s index %d: expected %f, got %f", name, i, want[i], got[i])
		}
	}
}

// randomQuotes builds a deterministic random walk with volume.
func randomQuotes(t *testing.T, n int) *quotes.Quotes {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closev := make([]float64, n)
	volume := make([]float64, n)
	price := 100.0
	for i := 0; i < n; i++ {
		open[i] = price
		price += rng.Float64()*4 - 2
		closev[i] = price
		high[i] = math.Max(open[i], closev[i]) + rng.Float64()
		low[i] = math.Min(open[i], closev[i]) - rng.Float64()
		volume[i] = 1000 + rng.Float64()*500
	}
	q, err := quotes.New(open, high, low, closev, quotes.WithVolume(volume))
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func flatQuotes(t *testing.T, price float64, n int) *quotes.Quotes {
	t.Helper()
	series := make([]float64, n)
	volume := make([]float64, n)
	for i := range series {
		series[i] = price
		volume[i] = 100
	}
	q, err := quotes.New(series, series, series, series, quotes.WithVolume(volume))
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func seriesQuotes(t *testing.T, closev []float64) *quotes.Quotes {
	t.Helper()
	q, err := quotes.New(closev, closev, closev, closev)
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func output(t *testing.T, r *Result, name string) []float64 {
	t.Helper()
	series, ok := r.Get(name)
	if !ok {
		t.Fatalf("missing output %s, have %v", name, r.Names())
	}
	return series
}

func TestSMAPipeline(t *testing.T) {
	q := seriesQuotes(t, []float64{1, 2, 3, 4, 5})
	result, err := SMA(q, 3, "close")
	if err != nil {
		t.Fatal(err)
	}
	assertSeries(t, "sma", output(t, result, "sma"), []float64{nan(), nan(), 2, 3, 4})
}

func TestSMARejectsVolume(t *testing.T) {
	q := randomQuotes(t, 10)
	if _, err := SMA(q, 3, "volume"); !errors.Is(err, ma.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for volume selector, got %v", err)
	}
}

func TestValueSelectorErrorListsVolume(t *testing.T) {
	q := randomQuotes(t, 10)

	// ema accepts the volume column, so its error must offer it
	_, err := EMA(q, 3, "median")
	if !errors.Is(err, ma.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if !strings.Contains(err.Error(), "volume") {
		t.Errorf("expected the accepted set to list volume, got %q", err.Error())
	}

	// sma does not, and must not advertise it
	_, err = SMA(q, 3, "median")
	if !errors.Is(err, ma.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if strings.Contains(err.Error(), "volume") {
		t.Errorf("expected the accepted set to omit volume, got %q", err.Error())
	}
}

func TestMACDRelationship(t *testing.T) {
	q := randomQuotes(t, 120)
	result, err := MACD(q, 12, 26, 9, ma.EMA, ma.SMA, "close")
	if err != nil {
		t.Fatal(err)
	}
	macd := output(t, result, "macd")
	signal := output(t, result, "signal")
	hist := output(t, result, "hist")
	for i := range macd {
		if math.IsNaN(macd[i]) || math.IsNaN(signal[i]) {
			if !math.IsNaN(hist[i]) {
				t.Errorf("index %d: expected NA hist", i)
			}
			continue
		}
		if math.Abs(hist[i]-(macd[i]-signal[i])) > 1e-9 {
			t.Errorf("index %d: hist != macd-signal", i)
		}
	}

	if _, err := MACD(q, 26, 12, 9, ma.EMA, ma.SMA, "close"); !errors.Is(err, ma.ErrInvalidParameter) {
		t.Errorf("expected period order error, got %v", err)
	}
}

func TestRSIRange(t *testing.T) {
	q := randomQuotes(t, 200)
	result, err := RSI(q, 14, ma.MMA, "close")
	if err != nil {
		t.Fatal(err)
	}
	rsi := output(t, result, "rsi")
	if !math.IsNaN(rsi[0]) {
		t.Error("expected NA at index 0")
	}
	for i, v := range rsi {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Errorf("index %d: rsi %f out of range", i, v)
		}
	}
}

func TestRSIAllGains(t *testing.T) {
	q := seriesQuotes(t, []float64{1, 2, 3, 4, 5, 6})
	result, err := RSI(q, 3, ma.MMA, "close")
	if err != nil {
		t.Fatal(err)
	}
	rsi := output(t, result, "rsi")
	for i := 3; i < len(rsi); i++ {
		if rsi[i] != 100 {
			t.Errorf("index %d: expected 100 on monotone gains, got %f", i, rsi[i])
		}
	}
}

func TestRSIFlatReadsHundred(t *testing.T) {
	q := flatQuotes(t, 10, 8)
	result, err := RSI(q, 3, ma.MMA, "close")
	if err != nil {
		t.Fatal(err)
	}
	rsi := output(t, result, "rsi")
	// zero gains and zero losses: the divider convention reads 100
	for i := 3; i < len(rsi); i++ {
		if rsi[i] != 100 {
			t.Errorf("index %d: expected 100, got %f", i, rsi[i])
		}
	}
}

func TestStochasticRange(t *testing.T) {
	q := randomQuotes(t, 150)
	result, err := Stochastic(q, 5, 3, 3, ma.SMA)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"oscillator", "value_k", "value_d"} {
		for i, v := range output(t, result, name) {
			if math.IsNaN(v) {
				continue
			}
			if v < 0 || v > 100 {
				t.Errorf("%s index %d: %f out of range", name, i, v)
			}
		}
	}
}

func TestStochasticFlatWindow(t *testing.T) {
	q := flatQuotes(t, 50, 10)
	result, err := Stochastic(q, 3, 2, 2, ma.SMA)
	if err != nil {
		t.Fatal(err)
	}
	oscillator := output(t, result, "oscillator")
	for i := 2; i < len(oscillator); i++ {
		if oscillator[i] != 0 {
			t.Errorf("index %d: expected 0 on flat window, got %f", i, oscillator[i])
		}
	}
}

func TestStochasticNAWindow(t *testing.T) {
	q, err := quotes.New(
		[]float64{9.5, 10.5, 11.5, 12.5, 13.5, 14.5},
		[]float64{10, 11, nan(), 13, 14, 15},
		[]float64{9, 10, 11, 12, 13, 14},
		[]float64{9.5, 10.5, 11.5, 12.5, 13.5, 14.5},
	)
	if err != nil {
		t.Fatal(err)
	}
	result, err := Stochastic(q, 3, 1, 1, ma.SMA)
	if err != nil {
		t.Fatal(err)
	}
	// every window touching the NA high is NA
	assertSeries(t, "oscillator", output(t, result, "oscillator"),
		[]float64{nan(), nan(), nan(), nan(), nan(), 250.0 / 3})
}

func TestWilliamsRRange(t *testing.T) {
	q := randomQuotes(t, 100)
	result, err := WilliamsR(q, 14)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range output(t, result, "williams_r") {
		if math.IsNaN(v) {
			continue
		}
		if v < -100 || v > 0 {
			t.Errorf("index %d: williams_r %f out of range", i, v)
		}
	}
}

func TestWilliamsRNAWindow(t *testing.T) {
	q, err := quotes.New(
		[]float64{9.5, 10.5, 11.5, 12.5, 13.5, 14.5},
		[]float64{10, 11, nan(), 13, 14, 15},
		[]float64{9, 10, 11, 12, 13, 14},
		[]float64{9.5, 10.5, 11.5, 12.5, 13.5, 14.5},
	)
	if err != nil {
		t.Fatal(err)
	}
	result, err := WilliamsR(q, 3)
	if err != nil {
		t.Fatal(err)
	}
	assertSeries(t, "williams_r", output(t, result, "williams_r"),
		[]float64{nan(), nan(), nan(), nan(), nan(), -50.0 / 3})
}

func TestATRFlat(t *testing.T) {
	q := flatQuotes(t, 10, 6)
	result, err := ATR(q, 3, ma.MMA)
	if err != nil {
		t.Fatal(err)
	}
	assertSeries(t, "tr", output(t, result, "tr"), []float64{0, 0, 0, 0, 0, 0})
	assertSeries(t, "atr", output(t, result, "atr"), []float64{nan(), nan(), 0, 0, 0, 0})
	assertSeries(t, "atrp", output(t, result, "atrp"), []float64{nan(), nan(), 0, 0, 0, 0})
}

func TestATRTrueRange(t *testing.T) {
	open := []float64{10, 10, 10}
	high := []float64{12, 14, 11}
	low := []float64{9, 11, 8}
	closev := []float64{10, 13, 9}
	q, err := quotes.New(open, high, low, closev)
	if err != nil {
		t.Fatal(err)
	}
	result, err := ATR(q, 2, ma.SMA)
	if err != nil {
		t.Fatal(err)
	}
	// tr[0] = high-low; tr[1] = max(3, |14-10|, |11-10|) = 4
	// tr[2] = max(3, |11-13|, |8-13|) = 5
	assertSeries(t, "tr", output(t, result, "tr"), []float64{3, 4, 5})
}

func TestBollingerFlat(t *testing.T) {
	q := flatQuotes(t, 25, 8)
	result, err := Bollinger(q, 3, 2, 2, ma.SMA, "close")
	if err != nil {
		t.Fatal(err)
	}
	mid := output(t, result, "mid_line")
	up := output(t, result, "up_line")
	down := output(t, result, "down_line")
	zScore := output(t, result, "z_score")
	for i := 2; i < q.Len(); i++ {
		if mid[i] != 25 || up[i] != 25 || down[i] != 25 {
			t.Errorf("index %d: expected collapsed bands at 25", i)
		}
		if zScore[i] != 0 {
			t.Errorf("index %d: expected z-score 0 on flat window, got %f", i, zScore[i])
		}
	}
}

func TestBollingerBandOrder(t *testing.T) {
	q := randomQuotes(t, 80)
	result, err := Bollinger(q, 20, 2, 2, ma.SMA, "close")
	if err != nil {
		t.Fatal(err)
	}
	mid := output(t, result, "mid_line")
	up := output(t, result, "up_line")
	down := output(t, result, "down_line")
	for i := range mid {
		if math.IsNaN(mid[i]) {
			continue
		}
		if up[i] < mid[i] || down[i] > mid[i] {
			t.Errorf("index %d: bands out of order", i)
		}
	}
}

func TestCCIFlat(t *testing.T) {
	q := flatQuotes(t, 10, 8)
	result, err := CCI(q, 3)
	if err != nil {
		t.Fatal(err)
	}
	// zero deviation everywhere, including the warm-up span
	for i, v := range output(t, result, "cci") {
		if v != 0 {
			t.Errorf("index %d: expected 0, got %f", i, v)
		}
	}
}

func TestMFIRange(t *testing.T) {
	q := randomQuotes(t, 100)
	result, err := MFI(q, 14)
	if err != nil {
		t.Fatal(err)
	}
	mfi := output(t, result, "mfi")
	for i := 0; i < 14; i++ {
		if !math.IsNaN(mfi[i]) {
			t.Errorf("index %d: expected NA during warmup", i)
		}
	}
	for i, v := range mfi {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Errorf("index %d: mfi %f out of range", i, v)
		}
	}
}

func TestMFIRequiresVolume(t *testing.T) {
	q := seriesQuotes(t, []float64{1, 2, 3, 4, 5})
	if _, err := MFI(q, 3); !errors.Is(err, quotes.ErrColumnNotFound) {
		t.Errorf("expected ErrColumnNotFound without volume, got %v", err)
	}
}

func TestAroon(t *testing.T) {
	high := []float64{1, 2, 3, 2, 1}
	low := []float64{1, 2, 3, 2, 1}
	q, err := quotes.New(high, high, low, high)
	if err != nil {
		t.Fatal(err)
	}
	result, err := Aroon(q, 2)
	if err != nil {
		t.Fatal(err)
	}
	up := output(t, result, "up")
	down := output(t, result, "down")
	// rising stretch: the newest bar holds the high
	if up[2] != 100 {
		t.Errorf("expected up 100 at index 2, got %f", up[2])
	}
	if down[2] != 0 {
		t.Errorf("expected down 0 at index 2, got %f", down[2])
	}
	// falling stretch: the newest bar holds the low
	if up[4] != 0 {
		t.Errorf("expected up 0 at index 4, got %f", up[4])
	}
	if down[4] != 100 {
		t.Errorf("expected down 100 at index 4, got %f", down[4])
	}
	if !math.IsNaN(up[0]) || !math.IsNaN(up[1]) {
		t.Error("expected NA warmup for aroon")
	}
}

func TestADXRange(t *testing.T) {
	q := randomQuotes(t, 200)
	result, err := ADX(q, 14, 14, ma.MMA)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range output(t, result, "adx") {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Errorf("index %d: adx %f out of range", i, v)
		}
	}
}

func TestIchimokuFlat(t *testing.T) {
	q := flatQuotes(t, 10, 20)
	result, err := Ichimoku(q, 3, 5, 8, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	tenkan := output(t, result, "tenkan")
	senkouA := output(t, result, "senkou_a")
	chikou := output(t, result, "chikou")
	if !math.IsNaN(tenkan[1]) {
		t.Error("expected NA tenkan during warmup")
	}
	if tenkan[5] != 10 {
		t.Errorf("expected tenkan 10, got %f", tenkan[5])
	}
	// senkou is shifted ahead: warmup span covers seed + offset
	if !math.IsNaN(senkouA[7]) {
		t.Error("expected NA senkou_a before shifted warmup ends")
	}
	if senkouA[8] != 10 {
		t.Errorf("expected senkou_a 10 at index 8, got %f", senkouA[8])
	}
	// chikou is the close shifted back: the tail has no future close
	if chikou[0] != 10 {
		t.Errorf("expected chikou 10 at index 0, got %f", chikou[0])
	}
	if !math.IsNaN(chikou[len(chikou)-1]) {
		t.Error("expected NA chikou at the tail")
	}
}

func TestIchimokuNAWindow(t *testing.T) {
	n := 10
	high := make([]float64, n)
	low := make([]float64, n)
	closev := make([]float64, n)
	for i := 0; i < n; i++ {
		high[i] = 11
		low[i] = 9
		closev[i] = 10
	}
	high[4] = nan()
	q, err := quotes.New(closev, high, low, closev)
	if err != nil {
		t.Fatal(err)
	}
	result, err := Ichimoku(q, 3, 5, 8, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	assertSeries(t, "tenkan", output(t, result, "tenkan"),
		[]float64{nan(), nan(), 10, 10, nan(), nan(), nan(), 10, 10, 10})
}

func TestParabolicSARSignals(t *testing.T) {
	// rise then collapse forces at least one reversal
	n := 40
	high := make([]float64, n)
	low := make([]float64, n)
	for i := 0; i < n; i++ {
		price := 100 + float64(i)
		if i >= 20 {
			price = 100 + float64(40-i) - 20
		}
		high[i] = price + 1
		low[i] = price - 1
	}
	q, err := quotes.New(low, high, low, high)
	if err != nil {
		t.Fatal(err)
	}
	result, err := ParabolicSAR(q, 0.02, 0.2, 0.02)
	if err != nil {
		t.Fatal(err)
	}
	sar := output(t, result, "sar")
	signal := output(t, result, "signal")

	firstSignal := -1
	for i, v := range signal {
		if v != 0 && v != 1 && v != -1 {
			t.Fatalf("index %d: bad signal %f", i, v)
		}
		if v != 0 && firstSignal < 0 {
			firstSignal = i
		}
	}
	if firstSignal < 0 {
		t.Fatal("expected at least one reversal")
	}
	for i := 0; i < firstSignal; i++ {
		if !math.IsNaN(sar[i]) {
			t.Errorf("index %d: expected NA sar before the first reversal", i)
		}
	}
	if math.IsNaN(sar[firstSignal]) {
		t.Error("expected sar value at the first reversal")
	}
}

func TestZigZagPivots(t *testing.T) {
	closev := []float64{1, 2, 1.5, 3, 1}
	q := seriesQuotes(t, closev)
	result, err := ZigZag(q, 0.2, 1, "close", false)
	if err != nil {
		t.Fatal(err)
	}
	assertSeries(t, "pivots", output(t, result, "pivots"),
		[]float64{nan(), 2, 1.5, 3, nan()})
	assertSeries(t, "pivot_types", output(t, result, "pivot_types"),
		[]float64{0, 1, -1, 1, 0})
}

func TestZigZagBadType(t *testing.T) {
	q := seriesQuotes(t, []float64{1, 2, 3})
	if _, err := ZigZag(q, 0.2, 1, "median", false); !errors.Is(err, ma.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestOBV(t *testing.T) {
	closev := []float64{10, 11, 10, 10, 12}
	volume := []float64{1, 2, 3, 4, 5}
	q, err := quotes.New(closev, closev, closev, closev, quotes.WithVolume(volume))
	if err != nil {
		t.Fatal(err)
	}
	result, err := OBV(q)
	if err != nil {
		t.Fatal(err)
	}
	assertSeries(t, "obv", output(t, result, "obv"), []float64{0, 2, -1, -1, 4})
}

func TestADL(t *testing.T) {
	high := []float64{2, 2}
	low := []float64{0, 0}
	closev := []float64{2, 1}
	volume := []float64{5, 4}
	q, err := quotes.New(closev, high, low, closev, quotes.WithVolume(volume))
	if err != nil {
		t.Fatal(err)
	}
	result, err := ADL(q, 0, ma.SMA)
	if err != nil {
		t.Fatal(err)
	}
	// bar 0: clv=1 -> +5; bar 1: clv=0 -> unchanged
	assertSeries(t, "adl", output(t, result, "adl"), []float64{5, 5})
	if _, ok := result.Get("adl_smooth"); ok {
		t.Error("expected no adl_smooth without ma_period")
	}

	smoothed, err := ADL(q, 1, ma.SMA)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := smoothed.Get("adl_smooth"); !ok {
		t.Error("expected adl_smooth with ma_period set")
	}
}

func TestVWAP(t *testing.T) {
	closev := []float64{10, 20}
	volume := []float64{1, 3}
	q, err := quotes.New(closev, closev, closev, closev, quotes.WithVolume(volume))
	if err != nil {
		t.Fatal(err)
	}
	result, err := VWAP(q)
	if err != nil {
		t.Fatal(err)
	}
	assertSeries(t, "vwap", output(t, result, "vwap"), []float64{10, 17.5})
}

func TestVWAPZeroVolume(t *testing.T) {
	closev := []float64{10, 20}
	volume := []float64{0, 0}
	q, err := quotes.New(closev, closev, closev, closev, quotes.WithVolume(volume))
	if err != nil {
		t.Fatal(err)
	}
	result, err := VWAP(q)
	if err != nil {
		t.Fatal(err)
	}
	assertSeries(t, "vwap", output(t, result, "vwap"), []float64{nan(), nan()})
}

func TestVolumeOscPeriodOrder(t *testing.T) {
	q := randomQuotes(t, 50)
	if _, err := VolumeOsc(q, 10, 5, ma.EMA); !errors.Is(err, ma.ErrInvalidParameter) {
		t.Errorf("expected period order error, got %v", err)
	}
}

func TestSupertrendShortInput(t *testing.T) {
	q := randomQuotes(t, 5)
	result, err := Supertrend(q, 10, 3, ma.MMA)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range output(t, result, "supertrend") {
		if !math.IsNaN(v) {
			t.Errorf("index %d: expected all-NA on short input, got %f", i, v)
		}
	}
}

func TestChandelierWarmup(t *testing.T) {
	q := randomQuotes(t, 60)
	result, err := Chandelier(q, 22, 3, false)
	if err != nil {
		t.Fatal(err)
	}
	exitLong := output(t, result, "exit_long")
	exitShort := output(t, result, "exit_short")
	for i := 0; i < 21; i++ {
		if !math.IsNaN(exitLong[i]) || !math.IsNaN(exitShort[i]) {
			t.Errorf("index %d: expected NA during warmup", i)
		}
	}
	for i := 21; i < len(exitLong); i++ {
		if math.IsNaN(exitLong[i]) || math.IsNaN(exitShort[i]) {
			t.Errorf("index %d: expected values after warmup", i)
		}
	}
}

func TestChandelierNAWindow(t *testing.T) {
	n := 12
	high := make([]float64, n)
	low := make([]float64, n)
	closev := make([]float64, n)
	for i := 0; i < n; i++ {
		high[i] = 11
		low[i] = 9
		closev[i] = 10
	}
	high[5] = nan()
	q, err := quotes.New(closev, high, low, closev)
	if err != nil {
		t.Fatal(err)
	}
	result, err := Chandelier(q, 3, 3, false)
	if err != nil {
		t.Fatal(err)
	}
	// tr is 2 everywhere except the NA bar, so the ATR re-seeds at index 8
	// and the rolling extremes are NA while the NA high is in the window
	assertSeries(t, "exit_long", output(t, result, "exit_long"),
		[]float64{nan(), nan(), 5, 5, 5, nan(), nan(), nan(), 5, 5, 5, 5})
	assertSeries(t, "exit_short", output(t, result, "exit_short"),
		[]float64{nan(), nan(), 15, 15, 15, nan(), nan(), nan(), 15, 15, 15, 15})
}

func TestDeterminism(t *testing.T) {
	q := randomQuotes(t, 150)
	first, err := Compute("keltner", q, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Compute("keltner", q, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range first.Names() {
		assertSeries(t, name, output(t, second, name), output(t, first, name))
	}
}
