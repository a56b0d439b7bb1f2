package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyPriceTrend(t *testing.T) {
	t.Parallel()

	pos := NewPosition("AAPL", 100)

	pos.ApplyPrice(101)
	assert.Equal(t, TrendUp, pos.Trend)
	assert.Equal(t, 101.0, pos.LastPrice)

	pos.ApplyPrice(99)
	assert.Equal(t, TrendDown, pos.Trend)

	// Equal to the prior reading counts as up.
	pos.ApplyPrice(99)
	assert.Equal(t, TrendUp, pos.Trend)
}

func TestApplyPriceRecentHighLow(t *testing.T) {
	t.Parallel()

	pos := NewPosition("AAPL", 100)

	// Rising prices keep raising the recent high.
	pos.ApplyPrice(101)
	pos.ApplyPrice(103)
	assert.Equal(t, 103.0, pos.RecentHigh)

	// A pullback below the high starts tracking the valley.
	pos.ApplyPrice(98)
	assert.Equal(t, TrendDown, pos.Trend)
	assert.Equal(t, 98.0, pos.RecentLow)
	pos.ApplyPrice(96)
	assert.Equal(t, 96.0, pos.RecentLow)

	// Recovery above the prior high restarts the high.
	pos.ApplyPrice(104)
	assert.Equal(t, 104.0, pos.RecentHigh)
}

func TestApplyPriceDailyExtremes(t *testing.T) {
	t.Parallel()

	pos := NewPosition("AAPL", 100)
	for _, p := range []float64{101, 95, 103, 97} {
		pos.ApplyPrice(p)
	}
	assert.Equal(t, 103.0, pos.DailyHigh)
	assert.Equal(t, 95.0, pos.DailyLow)
	assert.Equal(t, 103.0, pos.AllTimePeak)

	// Session reset re-seeds both extremes to the latest price.
	pos.ResetSession()
	assert.Equal(t, 97.0, pos.DailyHigh)
	assert.Equal(t, 97.0, pos.DailyLow)
}

func TestBreakoutAnchorsFlatThenHolding(t *testing.T) {
	t.Parallel()

	// Flat: BreakoutLow is the running minimum, BreakoutHigh shadows the
	// current price.
	pos := NewPosition("AAPL", 100)
	for _, p := range []float64{100, 95, 90} {
		pos.ApplyPrice(p)
	}
	assert.Equal(t, 90.0, pos.BreakoutLow)
	assert.Equal(t, 90.0, pos.BreakoutHigh)

	// Holding: BreakoutHigh is the running maximum, BreakoutLow shadows the
	// current price.
	pos.Quantity = 10
	for _, p := range []float64{92, 98, 105} {
		pos.ApplyPrice(p)
	}
	assert.Equal(t, 105.0, pos.BreakoutHigh)
	assert.Equal(t, 105.0, pos.BreakoutLow)
}

func TestMarketValue(t *testing.T) {
	t.Parallel()

	pos := NewPosition("AAPL", 100)
	assert.Equal(t, 0.0, pos.MarketValue())

	pos.Quantity = 2.5
	pos.ApplyPrice(110)
	assert.Equal(t, 275.0, pos.MarketValue())
}
