package market

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// tsLayout is the timestamp format stored in the price database. It sorts
// lexicographically, so ORDER BY timestamp is chronological.
const tsLayout = "2006-01-02 15:04:05"

const priceSchema = `
CREATE TABLE IF NOT EXISTS stocks (
	timestamp TEXT NOT NULL,
	stock_ticker TEXT NOT NULL,
	price REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stocks_timestamp ON stocks(timestamp);
`

// PriceDB is the shared price store the observer sampler writes and the
// observer PriceSource reads. Each ticker gets one SQLite file per month so
// files stay small and old months can be archived wholesale.
//
// One writer per file; readers open their own connections.
type PriceDB struct {
	dir string
}

func NewPriceDB(dir string) *PriceDB {
	return &PriceDB{dir: dir}
}

// Path returns the database file for a ticker in the month containing t.
func (d *PriceDB) Path(ticker string, t time.Time) string {
	return filepath.Join(d.dir, fmt.Sprintf("stocks_%s_%s.db", ticker, t.Format("2006_01")))
}

func (d *PriceDB) open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("price db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open price db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(priceSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate price db: %w", err)
	}
	return db, nil
}

// Write appends one sampled price for ticker at ts.
func (d *PriceDB) Write(ticker string, price float64, ts time.Time) error {
	db, err := d.open(d.Path(ticker, ts))
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("INSERT INTO stocks VALUES (?, ?, ?)", ts.Format(tsLayout), ticker, price)
	if err != nil {
		return fmt.Errorf("write price %s: %w", ticker, err)
	}
	return nil
}

// Latest returns the most recently sampled price for ticker from the current
// month's file. A missing file or empty table means the observer is not
// running (or has not sampled this ticker yet) and reports ErrPriceUnavailable.
func (d *PriceDB) Latest(ticker string) (float64, error) {
	path := d.Path(ticker, time.Now())
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("no observer data for %s: %w", ticker, ErrPriceUnavailable)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return 0, fmt.Errorf("open price db: %w", err)
	}
	defer db.Close()

	var price float64
	row := db.QueryRow("SELECT price FROM stocks ORDER BY timestamp DESC LIMIT 1")
	if err := row.Scan(&price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("no observer rows for %s: %w", ticker, ErrPriceUnavailable)
		}
		return 0, fmt.Errorf("read price %s: %w", ticker, err)
	}
	return price, nil
}
