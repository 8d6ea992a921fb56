package indicator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/quantforge/ta/pkg/ma"
	"github.com/quantforge/ta/pkg/quotes"
)

// ErrUnknownIndicator reports a name the registry does not carry.
var ErrUnknownIndicator = errors.New("unknown indicator")

// ParamSpec describes one parameter of a registry entry. Default is nil for
// required parameters and for optional ones whose absence changes behavior.
type ParamSpec struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Default  any    `json:"default"`
	Required bool   `json:"required,omitempty"`
}

// Entry is the static catalogue record of one indicator.
type Entry struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Columns     []string    `json:"columns"`
	Params      []ParamSpec `json:"params"`
	Outputs     []string    `json:"outputs"`

	compute func(*quotes.Quotes, Params) (*Result, error)
}

var registry = map[string]Entry{}

func register(e Entry) {
	registry[e.Name] = e
}

// Names returns the registered indicator names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the catalogue entry for name.
func Lookup(name string) (Entry, error) {
	e, ok := registry[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownIndicator, name)
	}
	return e, nil
}

// Compute runs the named indicator over q. Unknown names, unknown parameter
// keys and missing required parameters are rejected before any computation.
func Compute(name string, q *quotes.Quotes, params Params) (*Result, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndicator, name)
	}
	if params == nil {
		params = Params{}
	}
	for key := range params {
		known := false
		for _, spec := range e.Params {
			if spec.Name == key {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("%w: %s does not accept parameter %s", ma.ErrInvalidParameter, name, key)
		}
	}
	for _, spec := range e.Params {
		if spec.Required {
			if _, ok := params[spec.Name]; !ok {
				return nil, fmt.Errorf("%w: %s requires parameter %s", ma.ErrInvalidParameter, name, spec.Name)
			}
		}
	}
	return e.compute(q, params)
}

func periodSpec(name string) ParamSpec {
	return ParamSpec{Name: name, Kind: "int", Required: true}
}

func intSpec(name string, def int) ParamSpec {
	return ParamSpec{Name: name, Kind: "int", Default: def}
}

func floatSpec(name string, def float64) ParamSpec {
	return ParamSpec{Name: name, Kind: "float", Default: def}
}

func stringSpec(name, def string) ParamSpec {
	return ParamSpec{Name: name, Kind: "string", Default: def}
}

func boolSpec(name string, def bool) ParamSpec {
	return ParamSpec{Name: name, Kind: "bool", Default: def}
}

func init() {
	register(Entry{
		Name:        "adl",
		Description: "Accumulation/distribution line with optional smoothing",
		Columns:     []string{"high", "low", "close", "volume"},
		Params: []ParamSpec{
			intSpec("ma_period", 0),
			stringSpec("ma_type", "sma"),
		},
		Outputs: []string{"adl", "adl_smooth"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			maPeriod, err := p.intValue("ma_period", 0)
			if err != nil {
				return nil, err
			}
			maType, err := p.maTypeValue("ma_type", ma.SMA)
			if err != nil {
				return nil, err
			}
			return ADL(q, maPeriod, maType)
		},
	})
	register(Entry{
		Name:        "adx",
		Description: "Average directional movement index with DI lines",
		Columns:     []string{"high", "low", "close"},
		Params: []ParamSpec{
			intSpec("period", 14),
			intSpec("smooth", 14),
			stringSpec("ma_type", "mma"),
		},
		Outputs: []string{"adx", "p_di", "m_di"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 14)
			if err != nil {
				return nil, err
			}
			smooth, err := p.intValue("smooth", 14)
			if err != nil {
				return nil, err
			}
			maType, err := p.maTypeValue("ma_type", ma.MMA)
			if err != nil {
				return nil, err
			}
			return ADX(q, period, smooth, maType)
		},
	})
	register(Entry{
		Name:        "aroon",
		Description: "Aroon up/down lines and oscillator",
		Columns:     []string{"high", "low"},
		Params:      []ParamSpec{intSpec("period", 14)},
		Outputs:     []string{"up", "down", "oscillator"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 14)
			if err != nil {
				return nil, err
			}
			return Aroon(q, period)
		},
	})
	register(Entry{
		Name:        "atr",
		Description: "Average true range with raw and percentage variants",
		Columns:     []string{"high", "low", "close"},
		Params: []ParamSpec{
			intSpec("smooth", 14),
			stringSpec("ma_type", "mma"),
		},
		Outputs: []string{"tr", "atr", "atrp"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			smooth, err := p.intValue("smooth", 14)
			if err != nil {
				return nil, err
			}
			maType, err := p.maTypeValue("ma_type", ma.MMA)
			if err != nil {
				return nil, err
			}
			return ATR(q, smooth, maType)
		},
	})
	register(Entry{
		Name:        "awesome",
		Description: "Awesome oscillator on the median price",
		Columns:     []string{"high", "low"},
		Params: []ParamSpec{
			intSpec("period_fast", 5),
			intSpec("period_slow", 34),
			stringSpec("ma_type_fast", "sma"),
			stringSpec("ma_type_slow", "sma"),
			boolSpec("normalized", false),
		},
		Outputs: []string{"awesome"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			periodFast, err := p.intValue("period_fast", 5)
			if err != nil {
				return nil, err
			}
			periodSlow, err := p.intValue("period_slow", 34)
			if err != nil {
				return nil, err
			}
			maTypeFast, err := p.maTypeValue("ma_type_fast", ma.SMA)
			if err != nil {
				return nil, err
			}
			maTypeSlow, err := p.maTypeValue("ma_type_slow", ma.SMA)
			if err != nil {
				return nil, err
			}
			normalized, err := p.boolValue("normalized", false)
			if err != nil {
				return nil, err
			}
			return Awesome(q, periodFast, periodSlow, maTypeFast, maTypeSlow, normalized)
		},
	})
	register(Entry{
		Name:        "bollinger_bands",
		Description: "Bollinger bands with independent band multipliers and z-score",
		Columns:     []string{"value"},
		Params: []ParamSpec{
			intSpec("period", 20),
			floatSpec("deviation", 2),
			{Name: "deviation_up", Kind: "float"},
			{Name: "deviation_down", Kind: "float"},
			stringSpec("ma_type", "sma"),
			stringSpec("value", "close"),
		},
		Outputs: []string{"mid_line", "up_line", "down_line", "z_score"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 20)
			if err != nil {
				return nil, err
			}
			deviation, err := p.floatValue("deviation", 2)
			if err != nil {
				return nil, err
			}
			deviationUp, err := p.floatValue("deviation_up", deviation)
			if err != nil {
				return nil, err
			}
			deviationDown, err := p.floatValue("deviation_down", deviation)
			if err != nil {
				return nil, err
			}
			maType, err := p.maTypeValue("ma_type", ma.SMA)
			if err != nil {
				return nil, err
			}
			value, err := p.stringValue("value", "close")
			if err != nil {
				return nil, err
			}
			return Bollinger(q, period, deviationUp, deviationDown, maType, value)
		},
	})
	register(Entry{
		Name:        "cci",
		Description: "Commodity channel index",
		Columns:     []string{"high", "low", "close"},
		Params:      []ParamSpec{intSpec("period", 20)},
		Outputs:     []string{"cci"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 20)
			if err != nil {
				return nil, err
			}
			return CCI(q, period)
		},
	})
	register(Entry{
		Name:        "chandelier",
		Description: "Chandelier exit levels",
		Columns:     []string{"high", "low", "close"},
		Params: []ParamSpec{
			intSpec("period", 22),
			floatSpec("multiplier", 3),
			boolSpec("use_close", false),
		},
		Outputs: []string{"exit_long", "exit_short"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 22)
			if err != nil {
				return nil, err
			}
			multiplier, err := p.floatValue("multiplier", 3)
			if err != nil {
				return nil, err
			}
			useClose, err := p.boolValue("use_close", false)
			if err != nil {
				return nil, err
			}
			return Chandelier(q, period, multiplier, useClose)
		},
	})
	register(Entry{
		Name:        "ema",
		Description: "Exponential moving average",
		Columns:     []string{"value"},
		Params: []ParamSpec{
			periodSpec("period"),
			stringSpec("value", "close"),
		},
		Outputs: []string{"ema"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 0)
			if err != nil {
				return nil, err
			}
			value, err := p.stringValue("value", "close")
			if err != nil {
				return nil, err
			}
			return EMA(q, period, value)
		},
	})
	register(Entry{
		Name:        "ichimoku",
		Description: "Ichimoku cloud lines",
		Columns:     []string{"high", "low", "close"},
		Params: []ParamSpec{
			intSpec("period_short", 9),
			intSpec("period_mid", 26),
			intSpec("period_long", 52),
			intSpec("offset_senkou", 26),
			intSpec("offset_chikou", 26),
		},
		Outputs: []string{"tenkan", "kijun", "senkou_a", "senkou_b", "chikou"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			periodShort, err := p.intValue("period_short", 9)
			if err != nil {
				return nil, err
			}
			periodMid, err := p.intValue("period_mid", 26)
			if err != nil {
				return nil, err
			}
			periodLong, err := p.intValue("period_long", 52)
			if err != nil {
				return nil, err
			}
			offsetSenkou, err := p.intValue("offset_senkou", 26)
			if err != nil {
				return nil, err
			}
			offsetChikou, err := p.intValue("offset_chikou", 26)
			if err != nil {
				return nil, err
			}
			return Ichimoku(q, periodShort, periodMid, periodLong, offsetSenkou, offsetChikou)
		},
	})
	register(Entry{
		Name:        "keltner",
		Description: "Keltner channel",
		Columns:     []string{"high", "low", "close"},
		Params: []ParamSpec{
			intSpec("period", 10),
			floatSpec("multiplier", 1),
			intSpec("period_atr", 10),
			stringSpec("ma_type", "ema"),
			stringSpec("ma_type_atr", "mma"),
		},
		Outputs: []string{"mid_line", "up_line", "down_line", "width"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 10)
			if err != nil {
				return nil, err
			}
			multiplier, err := p.floatValue("multiplier", 1)
			if err != nil {
				return nil, err
			}
			periodATR, err := p.intValue("period_atr", 10)
			if err != nil {
				return nil, err
			}
			maType, err := p.maTypeValue("ma_type", ma.EMA)
			if err != nil {
				return nil, err
			}
			maTypeATR, err := p.maTypeValue("ma_type_atr", ma.MMA)
			if err != nil {
				return nil, err
			}
			return Keltner(q, period, multiplier, periodATR, maType, maTypeATR)
		},
	})
	register(Entry{
		Name:        "ma",
		Description: "Moving average of any supported policy",
		Columns:     []string{"value"},
		Params: []ParamSpec{
			periodSpec("period"),
			stringSpec("value", "close"),
			stringSpec("ma_type", "sma"),
		},
		Outputs: []string{"move_average"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 0)
			if err != nil {
				return nil, err
			}
			value, err := p.stringValue("value", "close")
			if err != nil {
				return nil, err
			}
			maType, err := p.maTypeValue("ma_type", ma.SMA)
			if err != nil {
				return nil, err
			}
			return MA(q, period, value, maType)
		},
	})
	register(Entry{
		Name:        "macd",
		Description: "Moving average convergence/divergence",
		Columns:     []string{"value"},
		Params: []ParamSpec{
			periodSpec("period_short"),
			periodSpec("period_long"),
			periodSpec("period_signal"),
			stringSpec("ma_type", "ema"),
			stringSpec("ma_type_signal", "sma"),
			stringSpec("value", "close"),
		},
		Outputs: []string{"macd", "signal", "hist"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			periodShort, err := p.intValue("period_short", 0)
			if err != nil {
				return nil, err
			}
			periodLong, err := p.intValue("period_long", 0)
			if err != nil {
				return nil, err
			}
			periodSignal, err := p.intValue("period_signal", 0)
			if err != nil {
				return nil, err
			}
			maType, err := p.maTypeValue("ma_type", ma.EMA)
			if err != nil {
				return nil, err
			}
			maTypeSignal, err := p.maTypeValue("ma_type_signal", ma.SMA)
			if err != nil {
				return nil, err
			}
			value, err := p.stringValue("value", "close")
			if err != nil {
				return nil, err
			}
			return MACD(q, periodShort, periodLong, periodSignal, maType, maTypeSignal, value)
		},
	})
	register(Entry{
		Name:        "mfi",
		Description: "Money flow index",
		Columns:     []string{"high", "low", "close", "volume"},
		Params:      []ParamSpec{intSpec("period", 14)},
		Outputs:     []string{"mfi"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 14)
			if err != nil {
				return nil, err
			}
			return MFI(q, period)
		},
	})
	register(Entry{
		Name:        "obv",
		Description: "On-balance volume",
		Columns:     []string{"close", "volume"},
		Params:      []ParamSpec{},
		Outputs:     []string{"obv"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			return OBV(q)
		},
	})
	register(Entry{
		Name:        "parabolic_sar",
		Description: "Parabolic stop-and-reverse",
		Columns:     []string{"high", "low"},
		Params: []ParamSpec{
			floatSpec("start", 0.02),
			floatSpec("maximum", 0.2),
			floatSpec("increment", 0.02),
		},
		Outputs: []string{"sar", "signal"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			start, err := p.floatValue("start", 0.02)
			if err != nil {
				return nil, err
			}
			maximum, err := p.floatValue("maximum", 0.2)
			if err != nil {
				return nil, err
			}
			increment, err := p.floatValue("increment", 0.02)
			if err != nil {
				return nil, err
			}
			return ParabolicSAR(q, start, maximum, increment)
		},
	})
	register(Entry{
		Name:        "roc",
		Description: "Rate of change with smoothed copy",
		Columns:     []string{"value"},
		Params: []ParamSpec{
			intSpec("period", 14),
			intSpec("ma_period", 14),
			stringSpec("ma_type", "sma"),
			stringSpec("value", "close"),
		},
		Outputs: []string{"roc", "smooth_roc"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 14)
			if err != nil {
				return nil, err
			}
			maPeriod, err := p.intValue("ma_period", 14)
			if err != nil {
				return nil, err
			}
			maType, err := p.maTypeValue("ma_type", ma.SMA)
			if err != nil {
				return nil, err
			}
			value, err := p.stringValue("value", "close")
			if err != nil {
				return nil, err
			}
			return ROC(q, period, maPeriod, maType, value)
		},
	})
	register(Entry{
		Name:        "rsi",
		Description: "Relative strength index",
		Columns:     []string{"value"},
		Params: []ParamSpec{
			periodSpec("period"),
			stringSpec("ma_type", "mma"),
			stringSpec("value", "close"),
		},
		Outputs: []string{"rsi"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 0)
			if err != nil {
				return nil, err
			}
			maType, err := p.maTypeValue("ma_type", ma.MMA)
			if err != nil {
				return nil, err
			}
			value, err := p.stringValue("value", "close")
			if err != nil {
				return nil, err
			}
			return RSI(q, period, maType, value)
		},
	})
	register(Entry{
		Name:        "sma",
		Description: "Simple moving average",
		Columns:     []string{"value"},
		Params: []ParamSpec{
			periodSpec("period"),
			stringSpec("value", "close"),
		},
		Outputs: []string{"sma"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 0)
			if err != nil {
				return nil, err
			}
			value, err := p.stringValue("value", "close")
			if err != nil {
				return nil, err
			}
			return SMA(q, period, value)
		},
	})
	register(Entry{
		Name:        "stochastic",
		Description: "Stochastic oscillator with %K and %D lines",
		Columns:     []string{"high", "low", "close"},
		Params: []ParamSpec{
			intSpec("period", 5),
			intSpec("period_d", 3),
			intSpec("smooth", 3),
			stringSpec("ma_type", "sma"),
		},
		Outputs: []string{"oscillator", "value_k", "value_d"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 5)
			if err != nil {
				return nil, err
			}
			periodD, err := p.intValue("period_d", 3)
			if err != nil {
				return nil, err
			}
			smooth, err := p.intValue("smooth", 3)
			if err != nil {
				return nil, err
			}
			maType, err := p.maTypeValue("ma_type", ma.SMA)
			if err != nil {
				return nil, err
			}
			return Stochastic(q, period, periodD, smooth, maType)
		},
	})
	register(Entry{
		Name:        "supertrend",
		Description: "Supertrend line with bar midpoints",
		Columns:     []string{"high", "low", "close"},
		Params: []ParamSpec{
			intSpec("period", 10),
			floatSpec("multiplier", 3),
			stringSpec("ma_type", "mma"),
		},
		Outputs: []string{"supertrend", "supertrend_mid"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 10)
			if err != nil {
				return nil, err
			}
			multiplier, err := p.floatValue("multiplier", 3)
			if err != nil {
				return nil, err
			}
			maType, err := p.maTypeValue("ma_type", ma.MMA)
			if err != nil {
				return nil, err
			}
			return Supertrend(q, period, multiplier, maType)
		},
	})
	register(Entry{
		Name:        "tema",
		Description: "Triple exponential moving average",
		Columns:     []string{"value"},
		Params: []ParamSpec{
			periodSpec("period"),
			stringSpec("value", "close"),
		},
		Outputs: []string{"tema"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 0)
			if err != nil {
				return nil, err
			}
			value, err := p.stringValue("value", "close")
			if err != nil {
				return nil, err
			}
			return TEMA(q, period, value)
		},
	})
	register(Entry{
		Name:        "trix",
		Description: "Triple smoothed EMA rate of change",
		Columns:     []string{"value"},
		Params: []ParamSpec{
			periodSpec("period"),
			stringSpec("value", "close"),
		},
		Outputs: []string{"trix"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 0)
			if err != nil {
				return nil, err
			}
			value, err := p.stringValue("value", "close")
			if err != nil {
				return nil, err
			}
			return TRIX(q, period, value)
		},
	})
	register(Entry{
		Name:        "volume_osc",
		Description: "Volume oscillator",
		Columns:     []string{"volume"},
		Params: []ParamSpec{
			intSpec("period_short", 5),
			intSpec("period_long", 10),
			stringSpec("ma_type", "ema"),
		},
		Outputs: []string{"osc"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			periodShort, err := p.intValue("period_short", 5)
			if err != nil {
				return nil, err
			}
			periodLong, err := p.intValue("period_long", 10)
			if err != nil {
				return nil, err
			}
			maType, err := p.maTypeValue("ma_type", ma.EMA)
			if err != nil {
				return nil, err
			}
			return VolumeOsc(q, periodShort, periodLong, maType)
		},
	})
	register(Entry{
		Name:        "vwap",
		Description: "Volume weighted average price",
		Columns:     []string{"high", "low", "close", "volume"},
		Params:      []ParamSpec{},
		Outputs:     []string{"vwap"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			return VWAP(q)
		},
	})
	register(Entry{
		Name:        "vwma",
		Description: "Volume weighted moving average",
		Columns:     []string{"value", "volume"},
		Params: []ParamSpec{
			periodSpec("period"),
			stringSpec("value", "close"),
		},
		Outputs: []string{"vwma"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 0)
			if err != nil {
				return nil, err
			}
			value, err := p.stringValue("value", "close")
			if err != nil {
				return nil, err
			}
			return VWMA(q, period, value)
		},
	})
	register(Entry{
		Name:        "williams_r",
		Description: "Williams %R",
		Columns:     []string{"high", "low", "close"},
		Params:      []ParamSpec{intSpec("period", 14)},
		Outputs:     []string{"williams_r"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			period, err := p.intValue("period", 14)
			if err != nil {
				return nil, err
			}
			return WilliamsR(q, period)
		},
	})
	register(Entry{
		Name:        "zigzag",
		Description: "Zig-zag pivot points",
		Columns:     []string{"high", "low"},
		Params: []ParamSpec{
			floatSpec("delta", 0.02),
			intSpec("depth", 1),
			stringSpec("type", "high_low"),
			boolSpec("end_points", false),
		},
		Outputs: []string{"pivots", "pivot_types"},
		compute: func(q *quotes.Quotes, p Params) (*Result, error) {
			delta, err := p.floatValue("delta", 0.02)
			if err != nil {
				return nil, err
			}
			depth, err := p.intValue("depth", 1)
			if err != nil {
				return nil, err
			}
			priceType, err := p.stringValue("type", "high_low")
			if err != nil {
				return nil, err
			}
			endPoints, err := p.boolValue("end_points", false)
			if err != nil {
				return nil, err
			}
			return ZigZag(q, delta, depth, priceType, endPoints)
		},
	})
}
