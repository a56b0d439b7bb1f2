package strategies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelyuhas/papertrader/account"
	"github.com/joelyuhas/papertrader/market"
)

func newAccount(t *testing.T, src market.PriceSource, cash float64) *account.Account {
	t.Helper()
	a := account.New("1", t.TempDir(), src)
	_, err := a.CreateIfAbsent()
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	if cash > 0 {
		_, err = a.Deposit(cash)
		require.NoError(t, err)
	}
	return a
}

type fixedSource float64

func (s fixedSource) GetPrice(ctx context.Context, ticker string) (float64, error) {
	return float64(s), nil
}

func TestBuyIfRiseTriggers(t *testing.T) {
	t.Parallel()

	a := newAccount(t, fixedSource(103), 1000)
	pos := account.NewPosition("AAPL", 103)
	a.Positions["AAPL"] = pos

	// 3% above an anchor of 100 clears a 2% threshold.
	bought, err := BuyIfRise(context.Background(), a, pos, 2, 100)
	require.NoError(t, err)
	assert.True(t, bought)
	assert.Equal(t, 0.0, a.Cash)
	assert.InDelta(t, 1000.0/103, pos.Quantity, 1e-9)
}

func TestBuyIfRiseBelowThreshold(t *testing.T) {
	t.Parallel()

	a := newAccount(t, fixedSource(101), 1000)
	pos := account.NewPosition("AAPL", 101)
	a.Positions["AAPL"] = pos

	// 1% above the anchor does not clear a 2% threshold.
	bought, err := BuyIfRise(context.Background(), a, pos, 2, 100)
	require.NoError(t, err)
	assert.False(t, bought)
	assert.Equal(t, 1000.0, a.Cash)
}

func TestBuyIfRiseSkipsWhenNoCash(t *testing.T) {
	t.Parallel()

	a := newAccount(t, fixedSource(200), 0)
	pos := account.NewPosition("AAPL", 200)
	a.Positions["AAPL"] = pos

	bought, err := BuyIfRise(context.Background(), a, pos, 2, 100)
	require.NoError(t, err)
	assert.False(t, bought)
}

func TestSellIfFallTriggers(t *testing.T) {
	t.Parallel()

	src := market.NewReplaySource(map[string][]float64{
		"AAPL": {100, 95},
	})
	a := newAccount(t, src, 1000)

	ctx := context.Background()
	_, err := a.Buy(ctx, "AAPL", 1000, 0) // fills at 100, fully invested
	require.NoError(t, err)
	pos := a.Positions["AAPL"]
	pos.ApplyPrice(95)

	// 5% below an anchor of 100 clears a 4% threshold; the sell fills at 95.
	sold, err := SellIfFall(ctx, a, pos, 4, 100)
	require.NoError(t, err)
	assert.True(t, sold)
	assert.Equal(t, 0.0, pos.Quantity)
	assert.InDelta(t, 950.0, a.Cash, 1e-9)
}

func TestSellIfFallSkipsWhenHoldingCash(t *testing.T) {
	t.Parallel()

	a := newAccount(t, fixedSource(90), 50)
	pos := account.NewPosition("AAPL", 90)
	pos.Quantity = 10
	a.Positions["AAPL"] = pos

	sold, err := SellIfFall(context.Background(), a, pos, 4, 100)
	require.NoError(t, err)
	assert.False(t, sold)
	assert.Equal(t, 10.0, pos.Quantity)
}

func TestRiseFallFullCycle(t *testing.T) {
	t.Parallel()

	// Flat through a dip to 90, rise to 95 (>3% above the 90 valley: buy),
	// climb to 105, then drop to 100 (>4% below the 105 peak: sell).
	src := market.NewReplaySource(map[string][]float64{
		"AAPL": {
			100, // seed read
			95, 90,
			95, 95, // rise trigger reads: refresh, then buy fill
			105,
			100, 100, // fall trigger reads: refresh, then sell fill
		},
	})
	a := newAccount(t, src, 1000)
	rf := &RiseFall{Account: a, Ticker: "AAPL", RisePercent: 3, FallPercent: 4}

	ctx := context.Background()

	// Seeding step installs the tracking position without trading.
	acted, err := rf.Step(ctx)
	require.NoError(t, err)
	assert.False(t, acted)
	require.Contains(t, a.Positions, "AAPL")

	// Falling prices: anchors track the valley, no action.
	for i := 0; i < 2; i++ {
		acted, err = rf.Step(ctx)
		require.NoError(t, err)
		assert.False(t, acted)
	}
	assert.Equal(t, 90.0, a.Positions["AAPL"].BreakoutLow)

	// Recovery past the threshold buys with all cash at 95.
	acted, err = rf.Step(ctx)
	require.NoError(t, err)
	assert.True(t, acted)
	assert.Equal(t, 0.0, a.Cash)
	qty := a.Positions["AAPL"].Quantity
	assert.InDelta(t, 1000.0/95, qty, 1e-9)

	// New high while holding.
	acted, err = rf.Step(ctx)
	require.NoError(t, err)
	assert.False(t, acted)
	assert.Equal(t, 105.0, a.Positions["AAPL"].BreakoutHigh)

	// Drop past the threshold sells everything at 100.
	acted, err = rf.Step(ctx)
	require.NoError(t, err)
	assert.True(t, acted)
	assert.Equal(t, 0.0, a.Positions["AAPL"].Quantity)
	assert.InDelta(t, qty*100, a.Cash, 1e-9)
}
