package indicator

import (
	"errors"
	"testing"

	"github.com/quantforge/ta/pkg/ma"
)

var catalogue = []string{
	"adl", "adx", "aroon", "atr", "awesome", "bollinger_bands", "cci",
	"chandelier", "ema", "ichimoku", "keltner", "ma", "macd", "mfi", "obv",
	"parabolic_sar", "roc", "rsi", "sma", "stochastic", "supertrend", "tema",
	"trix", "volume_osc", "vwap", "vwma", "williams_r", "zigzag",
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(catalogue) {
		t.Fatalf("expected %d indicators, got %d: %v", len(catalogue), len(names), names)
	}
	for i, want := range catalogue {
		if names[i] != want {
			t.Errorf("index %d: expected %s, got %s", i, want, names[i])
		}
	}
}

func TestLookup(t *testing.T) {
	entry, err := Lookup("rsi")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Name != "rsi" {
		t.Errorf("expected name rsi, got %s", entry.Name)
	}
	if len(entry.Outputs) != 1 || entry.Outputs[0] != "rsi" {
		t.Errorf("expected outputs [rsi], got %v", entry.Outputs)
	}

	if _, err := Lookup("nope"); !errors.Is(err, ErrUnknownIndicator) {
		t.Errorf("expected ErrUnknownIndicator, got %v", err)
	}
}

func TestEntryMetadata(t *testing.T) {
	for _, name := range Names() {
		entry, err := Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		if entry.Description == "" {
			t.Errorf("%s: missing description", name)
		}
		if len(entry.Outputs) == 0 {
			t.Errorf("%s: missing outputs", name)
		}
		if len(entry.Columns) == 0 {
			t.Errorf("%s: missing columns", name)
		}
	}
}

func TestComputeDefaults(t *testing.T) {
	q := randomQuotes(t, 120)
	for _, name := range Names() {
		entry, err := Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		params := Params{}
		for _, spec := range entry.Params {
			if spec.Required {
				// the MA family requires an explicit period
				params[spec.Name] = 14
				if spec.Kind == "string" {
					params[spec.Name] = "close"
				}
			}
		}
		if name == "macd" {
			params = Params{"period_short": 12, "period_long": 26, "period_signal": 9}
		}
		result, err := Compute(name, q, params)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		for _, output := range entry.Outputs {
			if name == "adl" && output == "adl_smooth" {
				continue // only present with ma_period
			}
			series, ok := result.Get(output)
			if !ok {
				t.Errorf("%s: missing output %s", name, output)
				continue
			}
			if len(series) != q.Len() {
				t.Errorf("%s.%s: expected length %d, got %d", name, output, q.Len(), len(series))
			}
		}
	}
}

func TestComputeUnknownIndicator(t *testing.T) {
	q := randomQuotes(t, 10)
	if _, err := Compute("nope", q, nil); !errors.Is(err, ErrUnknownIndicator) {
		t.Errorf("expected ErrUnknownIndicator, got %v", err)
	}
}

func TestComputeUnknownParameter(t *testing.T) {
	q := randomQuotes(t, 10)
	if _, err := Compute("atr", q, Params{"window": 5}); !errors.Is(err, ma.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for unknown key, got %v", err)
	}
}

func TestComputeMissingRequired(t *testing.T) {
	q := randomQuotes(t, 10)
	if _, err := Compute("rsi", q, nil); !errors.Is(err, ma.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for missing period, got %v", err)
	}
}

func TestComputeParamTypes(t *testing.T) {
	q := randomQuotes(t, 30)

	t.Run("json numbers act as integers", func(t *testing.T) {
		if _, err := Compute("rsi", q, Params{"period": float64(14)}); err != nil {
			t.Errorf("expected whole float to be accepted, got %v", err)
		}
	})

	t.Run("fractional period is rejected", func(t *testing.T) {
		if _, err := Compute("rsi", q, Params{"period": 14.5}); !errors.Is(err, ma.ErrInvalidParameter) {
			t.Errorf("expected ErrInvalidParameter, got %v", err)
		}
	})

	t.Run("bad ma_type is rejected", func(t *testing.T) {
		if _, err := Compute("atr", q, Params{"ma_type": "wma"}); !errors.Is(err, ma.ErrInvalidParameter) {
			t.Errorf("expected ErrInvalidParameter, got %v", err)
		}
	})

	t.Run("wrong type is rejected", func(t *testing.T) {
		if _, err := Compute("atr", q, Params{"smooth": "fast"}); !errors.Is(err, ma.ErrInvalidParameter) {
			t.Errorf("expected ErrInvalidParameter, got %v", err)
		}
	})
}

func TestBollingerDeviationFallback(t *testing.T) {
	q := randomQuotes(t, 60)
	symmetric, err := Compute("bollinger_bands", q, Params{"deviation": 3.0})
	if err != nil {
		t.Fatal(err)
	}
	explicit, err := Compute("bollinger_bands", q, Params{"deviation_up": 3.0, "deviation_down": 3.0})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range symmetric.Names() {
		assertSeries(t, name, output(t, explicit, name), output(t, symmetric, name))
	}
}
