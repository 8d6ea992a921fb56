// Package quotes holds the canonical columnar OHLCV series that every
// indicator computes over. A Quotes is built once from caller data and is
// read-only afterwards; all columns share the same length and index i of
// every column refers to the same bar.
package quotes

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrShapeMismatch is returned when input columns have unequal lengths.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrColumnNotFound is returned when a required column is absent.
	ErrColumnNotFound = errors.New("column not found")
	// ErrBadInput is returned when input data cannot form a valid series.
	ErrBadInput = errors.New("bad series data")
)

// Quotes is an immutable columnar view of aligned OHLCV data.
// Volume and Time are optional; when present they have the same length
// as the price columns.
type Quotes struct {
	open   []float64
	high   []float64
	low    []float64
	closev []float64
	volume []float64
	time   []time.Time
}

// Option configures optional columns on New.
type Option func(*Quotes)

// WithVolume attaches a volume column.
func WithVolume(volume []float64) Option {
	return func(q *Quotes) { q.volume = cloneFloats(volume) }
}

// WithTime attaches a time column.
func WithTime(ts []time.Time) Option {
	return func(q *Quotes) {
		q.time = make([]time.Time, len(ts))
		copy(q.time, ts)
	}
}

// New builds a Quotes from raw price arrays. Input slices are copied.
func New(open, high, low, closev []float64, opts ...Option) (*Quotes, error) {
	q := &Quotes{
		open:   cloneFloats(open),
		high:   cloneFloats(high),
		low:    cloneFloats(low),
		closev: cloneFloats(closev),
	}
	for _, opt := range opts {
		opt(q)
	}
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// FromMap builds a Quotes from a column-name keyed map. Recognized keys are
// open, high, low, close, volume and time (unix milliseconds); anything else
// is rejected.
func FromMap(columns map[string][]float64) (*Quotes, error) {
	q := &Quotes{}
	for name, values := range columns {
		switch strings.ToLower(name) {
		case "open":
			q.open = cloneFloats(values)
		case "high":
			q.high = cloneFloats(values)
		case "low":
			q.low = cloneFloats(values)
		case "close":
			q.closev = cloneFloats(values)
		case "volume":
			q.volume = cloneFloats(values)
		case "time":
			q.time = make([]time.Time, len(values))
			for i, ms := range values {
				q.time[i] = time.UnixMilli(int64(ms)).UTC()
			}
		default:
			return nil, fmt.Errorf("%w: unknown column %q", ErrBadInput, name)
		}
	}
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// FromFrame builds a Quotes from tabular data: a header of column names and
// one row per bar. Column matching is case-insensitive; unknown columns are
// ignored the way a wider dataframe would be.
func FromFrame(columns []string, rows [][]float64) (*Quotes, error) {
	picked := map[string][]float64{}
	for ci, name := range columns {
		key := strings.ToLower(name)
		switch key {
		case "open", "high", "low", "close", "volume", "time":
		default:
			continue
		}
		col := make([]float64, len(rows))
		for ri, row := range rows {
			if ci >= len(row) {
				return nil, fmt.Errorf("%w: row %d has %d values, column %q is at %d",
					ErrBadInput, ri, len(row), name, ci)
			}
			col[ri] = row[ci]
		}
		picked[key] = col
	}
	return FromMap(picked)
}

// FromRows builds a Quotes from exchange-style OHLCV rows, one bar per row:
// [timestamp_ms, open, high, low, close] with an optional trailing volume.
func FromRows(rows [][]float64) (*Quotes, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty OHLCV row list", ErrBadInput)
	}
	n := len(rows)
	q := &Quotes{
		open:   make([]float64, n),
		high:   make([]float64, n),
		low:    make([]float64, n),
		closev: make([]float64, n),
		time:   make([]time.Time, n),
	}
	hasVolume := len(rows[0]) >= 6
	if hasVolume {
		q.volume = make([]float64, n)
	}
	for i, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("%w: row %d has %d values, want at least 5", ErrBadInput, i, len(row))
		}
		q.time[i] = time.UnixMilli(int64(row[0])).UTC()
		q.open[i] = row[1]
		q.high[i] = row[2]
		q.low[i] = row[3]
		q.closev[i] = row[4]
		if hasVolume {
			if len(row) < 6 {
				return nil, fmt.Errorf("%w: row %d is missing volume", ErrBadInput, i)
			}
			q.volume[i] = row[5]
		}
	}
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Quotes) validate() error {
	if q.open == nil || q.high == nil || q.low == nil || q.closev == nil {
		return fmt.Errorf("%w: open, high, low and close are required", ErrBadInput)
	}
	n := len(q.closev)
	check := func(name string, got int) error {
		if got != n {
			return fmt.Errorf("%w: %s has length %d, close has %d", ErrShapeMismatch, name, got, n)
		}
		return nil
	}
	if err := check("open", len(q.open)); err != nil {
		return err
	}
	if err := check("high", len(q.high)); err != nil {
		return err
	}
	if err := check("low", len(q.low)); err != nil {
		return err
	}
	if q.volume != nil {
		if err := check("volume", len(q.volume)); err != nil {
			return err
		}
	}
	if q.time != nil {
		if err := check("time", len(q.time)); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of bars.
func (q *Quotes) Len() int { return len(q.closev) }

// Open returns the open column. The slice must not be modified.
func (q *Quotes) Open() []float64 { return q.open }

// High returns the high column. The slice must not be modified.
func (q *Quotes) High() []float64 { return q.high }

// Low returns the low column. The slice must not be modified.
func (q *Quotes) Low() []float64 { return q.low }

// Close returns the close column. The slice must not be modified.
func (q *Quotes) Close() []float64 { return q.closev }

// HasVolume reports whether a volume column is present.
func (q *Quotes) HasVolume() bool { return q.volume != nil }

// HasTime reports whether a time column is present.
func (q *Quotes) HasTime() bool { return q.time != nil }

// Volume returns the volume column or ErrColumnNotFound.
func (q *Quotes) Volume() ([]float64, error) {
	if q.volume == nil {
		return nil, fmt.Errorf("%w: volume", ErrColumnNotFound)
	}
	return q.volume, nil
}

// Time returns the time column, or nil when absent.
func (q *Quotes) Time() []time.Time { return q.time }

// Column resolves a value selector name to its column.
func (q *Quotes) Column(name string) ([]float64, error) {
	switch strings.ToLower(name) {
	case "open":
		return q.open, nil
	case "high":
		return q.high, nil
	case "low":
		return q.low, nil
	case "close":
		return q.closev, nil
	case "volume":
		return q.Volume()
	}
	return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
}

// Slice returns a copy of the bars in [from, to).
func (q *Quotes) Slice(from, to int) (*Quotes, error) {
	n := q.Len()
	if from < 0 || to > n || from > to {
		return nil, fmt.Errorf("%w: slice [%d:%d] of %d bars", ErrBadInput, from, to, n)
	}
	out := &Quotes{
		open:   cloneFloats(q.open[from:to]),
		high:   cloneFloats(q.high[from:to]),
		low:    cloneFloats(q.low[from:to]),
		closev: cloneFloats(q.closev[from:to]),
	}
	if q.volume != nil {
		out.volume = cloneFloats(q.volume[from:to])
	}
	if q.time != nil {
		out.time = make([]time.Time, to-from)
		copy(out.time, q.time[from:to])
	}
	return out, nil
}

func cloneFloats(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	return out
}
