package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/quantforge/ta/pkg/quotes"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Candle is one stored OHLCV bar.
type Candle struct {
	Symbol    string
	Timeframe string
	TS        time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// DB represents the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and runs migrations
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_fk=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// migrate runs database migrations
func (db *DB) migrate() error {
	driver, err := sqlite3.WithInstance(db.conn, &sqlite3.Config{})
	if err != nil {
		return err
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// SaveCandles upserts candles in a single transaction. Bars that already
// exist for (symbol, timeframe, ts) are overwritten.
func (db *DB) SaveCandles(ctx context.Context, candles []Candle) error {
	if len(candles) == 0 {
		return nil
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candles (symbol, timeframe, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, timeframe, ts) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		_, err := stmt.ExecContext(ctx, c.Symbol, c.Timeframe, c.TS.UnixMilli(),
			c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			return fmt.Errorf("failed to save candle: %w", err)
		}
	}

	return tx.Commit()
}

// Candles returns the most recent limit bars for the symbol and timeframe in
// chronological order, as a quotes series. limit <= 0 returns all bars.
func (db *DB) Candles(ctx context.Context, symbol, timeframe string, limit int) (*quotes.Quotes, error) {
	query := `
		SELECT ts, open, high, low, close, volume FROM candles
		WHERE symbol = ? AND timeframe = ?
		ORDER BY ts DESC`
	args := []any{symbol, timeframe}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var (
		ts                      []int64
		open, high, low, closev []float64
		volume                  []float64
	)
	for rows.Next() {
		var t int64
		var o, h, l, c, v float64
		if err := rows.Scan(&t, &o, &h, &l, &c, &v); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		ts = append(ts, t)
		open = append(open, o)
		high = append(high, h)
		low = append(low, l)
		closev = append(closev, c)
		volume = append(volume, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candles: %w", err)
	}

	// rows arrive newest first; flip to chronological order
	n := len(ts)
	times := make([]time.Time, n)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		ts[i], ts[j] = ts[j], ts[i]
		open[i], open[j] = open[j], open[i]
		high[i], high[j] = high[j], high[i]
		low[i], low[j] = low[j], low[i]
		closev[i], closev[j] = closev[j], closev[i]
		volume[i], volume[j] = volume[j], volume[i]
	}
	for i, t := range ts {
		times[i] = time.UnixMilli(t)
	}

	return quotes.New(open, high, low, closev,
		quotes.WithVolume(volume), quotes.WithTime(times))
}

// Symbols lists the distinct symbol/timeframe pairs in the store.
func (db *DB) Symbols(ctx context.Context) (map[string][]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT symbol, timeframe FROM candles ORDER BY symbol, timeframe`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var symbol, timeframe string
		if err := rows.Scan(&symbol, &timeframe); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		out[symbol] = append(out[symbol], timeframe)
	}
	return out, rows.Err()
}
