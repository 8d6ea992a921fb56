package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/quantforge/ta/pkg/indicator"
	"github.com/quantforge/ta/pkg/quotes"
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute indicators over a CSV file or a stored symbol",
	Example: `  ta compute --csv candles.csv --indicator rsi --param period=14
  ta compute --symbol BTCUSD --timeframe 1h --indicator macd --param period_short=12,period_long=26,period_signal=9`,
	RunE: func(cmd *cobra.Command, args []string) error {
		csvPath, _ := cmd.Flags().GetString("csv")
		symbol, _ := cmd.Flags().GetString("symbol")
		timeframe, _ := cmd.Flags().GetString("timeframe")
		limit, _ := cmd.Flags().GetInt("limit")
		names, _ := cmd.Flags().GetStringArray("indicator")
		rawParams, _ := cmd.Flags().GetStringArray("param")
		asJSON, _ := cmd.Flags().GetBool("json")
		tail, _ := cmd.Flags().GetInt("tail")

		if len(names) == 0 {
			return fmt.Errorf("at least one --indicator is required")
		}

		q, err := loadQuotes(cmd.Context(), csvPath, symbol, timeframe, limit)
		if err != nil {
			return err
		}

		params, err := parseParams(rawParams)
		if err != nil {
			return err
		}

		// compute every requested indicator concurrently
		var mu sync.Mutex
		results := make(map[string]*indicator.Result, len(names))
		g, _ := errgroup.WithContext(cmd.Context())
		for _, name := range names {
			name := name
			g.Go(func() error {
				result, err := indicator.Compute(name, q, params)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				mu.Lock()
				results[name] = result
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if asJSON {
			return printJSON(names, results)
		}
		printTable(names, results, q.Len(), tail)
		return nil
	},
}

func init() {
	computeCmd.Flags().String("csv", "", "CSV file with OHLCV columns")
	computeCmd.Flags().String("symbol", "", "stored symbol to load")
	computeCmd.Flags().String("timeframe", "1d", "stored timeframe")
	computeCmd.Flags().Int("limit", 0, "max bars to load from the store (0 = all)")
	computeCmd.Flags().StringArray("indicator", nil, "indicator to compute (repeatable)")
	computeCmd.Flags().StringArray("param", nil, "parameter key=value, comma separated (repeatable)")
	computeCmd.Flags().Bool("json", false, "emit JSON instead of a table")
	computeCmd.Flags().Int("tail", 10, "table rows to show, counted from the end")
}

func loadQuotes(ctx context.Context, csvPath, symbol, timeframe string, limit int) (*quotes.Quotes, error) {
	if csvPath != "" {
		return readCSVQuotes(csvPath)
	}
	if symbol == "" {
		return nil, fmt.Errorf("either --csv or --symbol is required")
	}
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.Candles(ctx, symbol, timeframe, limit)
}

// parseParams turns key=value pairs into typed parameters, trying bool,
// integer and float before falling back to string.
func parseParams(raw []string) (indicator.Params, error) {
	params := indicator.Params{}
	for _, entry := range raw {
		for _, pair := range strings.Split(entry, ",") {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("invalid --param %q, want key=value", pair)
			}
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
			switch {
			case value == "true" || value == "false":
				params[key] = value == "true"
			default:
				if n, err := strconv.ParseInt(value, 10, 64); err == nil {
					params[key] = n
				} else if f, err := strconv.ParseFloat(value, 64); err == nil {
					params[key] = f
				} else {
					params[key] = value
				}
			}
		}
	}
	return params, nil
}

func printJSON(names []string, results map[string]*indicator.Result) error {
	out := map[string]map[string][]*float64{}
	for _, name := range names {
		result := results[name]
		outputs := map[string][]*float64{}
		for _, output := range result.Names() {
			series, _ := result.Get(output)
			jsonSeries := make([]*float64, len(series))
			for i := range series {
				if math.IsNaN(series[i]) {
					continue
				}
				v := series[i]
				jsonSeries[i] = &v
			}
			outputs[output] = jsonSeries
		}
		out[name] = outputs
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func printTable(names []string, results map[string]*indicator.Result, length, tail int) {
	type column struct {
		header string
		series []float64
	}
	columns := []column{}
	for _, name := range names {
		result := results[name]
		for _, output := range result.Names() {
			series, _ := result.Get(output)
			header := output
			if len(names) > 1 {
				header = name + "." + output
			}
			columns = append(columns, column{header: header, series: series})
		}
	}

	start := 0
	if tail > 0 && length > tail {
		start = length - tail
	}

	fmt.Printf("%-6s", "bar")
	for _, c := range columns {
		fmt.Printf(" %16s", c.header)
	}
	fmt.Println()
	for i := start; i < length; i++ {
		fmt.Printf("%-6d", i)
		for _, c := range columns {
			if math.IsNaN(c.series[i]) {
				fmt.Printf(" %16s", "NA")
				continue
			}
			fmt.Printf(" %16.6f", c.series[i])
		}
		fmt.Println()
	}
}
