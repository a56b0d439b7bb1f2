package market

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// ReplaySource feeds previously recorded prices in sequence, so strategies
// can be run against existing data sets. Each GetPrice call consumes the
// next recorded price for that ticker; once a ticker's series is exhausted
// further reads fail with ErrPriceUnavailable.
type ReplaySource struct {
	mu     sync.Mutex
	series map[string][]float64
	cursor map[string]int
}

func NewReplaySource(series map[string][]float64) *ReplaySource {
	return &ReplaySource{
		series: series,
		cursor: make(map[string]int),
	}
}

// NewReplayFromCSV loads a recorded price file with one "ticker,price" row
// per sample, in chronological order.
func NewReplayFromCSV(path string) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read replay file: %w", err)
	}

	series := make(map[string][]float64)
	for i, row := range rows {
		if len(row) != 2 {
			return nil, fmt.Errorf("replay file row %d: want 2 fields, got %d", i+1, len(row))
		}
		price, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("replay file row %d: bad price %q: %w", i+1, row[1], err)
		}
		series[row[0]] = append(series[row[0]], price)
	}
	return NewReplaySource(series), nil
}

func (s *ReplaySource) GetPrice(ctx context.Context, ticker string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq, ok := s.series[ticker]
	if !ok {
		return 0, fmt.Errorf("no replay data for %s: %w", ticker, ErrPriceUnavailable)
	}
	i := s.cursor[ticker]
	if i >= len(seq) {
		return 0, fmt.Errorf("replay exhausted for %s: %w", ticker, ErrPriceUnavailable)
	}
	s.cursor[ticker] = i + 1
	return seq[i], nil
}

// Remaining reports how many recorded prices are left for ticker.
func (s *ReplaySource) Remaining(ticker string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.series[ticker]) - s.cursor[ticker]
}
