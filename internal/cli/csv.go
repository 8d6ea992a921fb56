package cli

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/quantforge/ta/pkg/database"
	"github.com/quantforge/ta/pkg/quotes"
)

// readCSVQuotes loads an OHLCV series from a CSV file with a header row.
// Column names are matched case-insensitively; empty cells become NA.
func readCSVQuotes(path string) (*quotes.Quotes, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%w: %s has no header row", quotes.ErrBadInput, path)
	}

	columns := records[0]
	for i, name := range columns {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "ts", "timestamp", "date":
			columns[i] = "time"
		}
	}
	rows := make([][]float64, len(records)-1)
	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, cell := range record {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				row[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s row %d column %s: %v",
					quotes.ErrBadInput, path, i+2, columns[j], err)
			}
			row[j] = v
		}
		rows[i] = row
	}

	return quotes.FromFrame(columns, rows)
}

// candlesFromQuotes converts a quote series into store rows.
func candlesFromQuotes(q *quotes.Quotes, symbol, timeframe string) ([]database.Candle, error) {
	volume := make([]float64, q.Len())
	if q.HasVolume() {
		v, err := q.Volume()
		if err != nil {
			return nil, err
		}
		volume = v
	}

	open, high, low, closev := q.Open(), q.High(), q.Low(), q.Close()
	candles := make([]database.Candle, q.Len())
	for i := range candles {
		ts := time.UnixMilli(int64(i))
		if q.HasTime() {
			ts = q.Time()[i]
		}
		candles[i] = database.Candle{
			Symbol:    symbol,
			Timeframe: timeframe,
			TS:        ts,
			Open:      open[i],
			High:      high[i],
			Low:       low[i],
			Close:     closev[i],
			Volume:    volume[i],
		}
	}
	return candles, nil
}
