package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quantforge/ta/internal/screener"
)

var (
	matchColor = color.New(color.FgGreen, color.Bold).SprintfFunc()
	missColor  = color.New(color.FgRed).SprintfFunc()
)

var screenCmd = &cobra.Command{
	Use:   "screen [expression]",
	Short: "Evaluate a Starlark screening expression",
	Long: `Evaluates a Starlark expression against one or more candle series.
The expression sees the OHLCV columns as lists and can call
indicator(name, **params) and last(series).`,
	Example: `  ta screen 'last(indicator("rsi", period=14)["rsi"]) < 30' --csv candles.csv
  ta screen 'last(close) > last(indicator("sma", period=200)["sma"])' --timeframe 1h`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		expr := args[0]
		csvPath, _ := cmd.Flags().GetString("csv")
		symbols, _ := cmd.Flags().GetStringArray("symbol")
		timeframe, _ := cmd.Flags().GetString("timeframe")
		limit, _ := cmd.Flags().GetInt("limit")

		engine := screener.New(logger)

		// a CSV file screens a single series and prints the raw value
		if csvPath != "" {
			q, err := readCSVQuotes(csvPath)
			if err != nil {
				return err
			}
			value, err := engine.Eval(csvPath, expr, q)
			if err != nil {
				return err
			}
			fmt.Println(value.String())
			return nil
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if len(symbols) == 0 {
			stored, err := db.Symbols(cmd.Context())
			if err != nil {
				return err
			}
			for symbol := range stored {
				symbols = append(symbols, symbol)
			}
		}
		if len(symbols) == 0 {
			return fmt.Errorf("no symbols in the store; use import or --csv")
		}

		matches := 0
		for _, symbol := range symbols {
			q, err := db.Candles(cmd.Context(), symbol, timeframe, limit)
			if err != nil {
				return err
			}
			if q.Len() == 0 {
				continue
			}
			ok, err := engine.Matches(symbol, expr, q)
			if err != nil {
				return fmt.Errorf("%s: %w", symbol, err)
			}
			if ok {
				matches++
				fmt.Printf("%s %s\n", matchColor("match"), symbol)
			} else {
				fmt.Printf("%s  %s\n", missColor("miss"), symbol)
			}
		}
		logger.Info().Int("symbols", len(symbols)).Int("matches", matches).Msg("Screen finished")
		return nil
	},
}

func init() {
	screenCmd.Flags().String("csv", "", "CSV file with OHLCV columns")
	screenCmd.Flags().StringArray("symbol", nil, "stored symbol to screen (repeatable, default all)")
	screenCmd.Flags().String("timeframe", "1d", "stored timeframe")
	screenCmd.Flags().Int("limit", 0, "max bars to load per symbol (0 = all)")
}
