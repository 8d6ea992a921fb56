package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [symbol] [timeframe] [csv-file]",
	Short: "Import a CSV candle file into the store",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol, timeframe, path := args[0], args[1], args[2]

		q, err := readCSVQuotes(path)
		if err != nil {
			return err
		}

		candles, err := candlesFromQuotes(q, symbol, timeframe)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SaveCandles(cmd.Context(), candles); err != nil {
			return err
		}

		logger.Info().
			Str("symbol", symbol).
			Str("timeframe", timeframe).
			Int("bars", len(candles)).
			Msg("Candles imported")
		fmt.Printf("imported %d bars for %s %s\n", len(candles), symbol, timeframe)
		return nil
	},
}
