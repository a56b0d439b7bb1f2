package market

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaySourceSequence(t *testing.T) {
	t.Parallel()

	src := NewReplaySource(map[string][]float64{
		"AAPL": {100, 95, 90},
	})

	ctx := context.Background()
	for _, want := range []float64{100, 95, 90} {
		p, err := src.GetPrice(ctx, "AAPL")
		assert.NoError(t, err)
		assert.Equal(t, want, p)
	}

	_, err := src.GetPrice(ctx, "AAPL")
	assert.ErrorIs(t, err, ErrPriceUnavailable)
	assert.Equal(t, 0, src.Remaining("AAPL"))
}

func TestReplaySourceUnknownTicker(t *testing.T) {
	t.Parallel()

	src := NewReplaySource(map[string][]float64{})
	_, err := src.GetPrice(context.Background(), "MSFT")
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestNewReplayFromCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "replay.csv")
	data := "AAPL,100.5\nAAPL,101\nMSFT,300\n"
	assert.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	src, err := NewReplayFromCSV(path)
	assert.NoError(t, err)

	ctx := context.Background()
	p, err := src.GetPrice(ctx, "AAPL")
	assert.NoError(t, err)
	assert.Equal(t, 100.5, p)

	p, err = src.GetPrice(ctx, "MSFT")
	assert.NoError(t, err)
	assert.Equal(t, 300.0, p)

	assert.Equal(t, 1, src.Remaining("AAPL"))
}

func TestNewReplayFromCSVBadRow(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "replay.csv")
	assert.NoError(t, os.WriteFile(path, []byte("AAPL,not-a-price\n"), 0o644))

	_, err := NewReplayFromCSV(path)
	assert.Error(t, err)
}
