// Package strategies holds the decision layer: pure threshold rules over an
// account and one of its positions. The rules only read position tracking
// state the account maintains; all execution goes back through the account
// so every action is audited and snapshotted.
package strategies

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/joelyuhas/papertrader/account"
)

// BuyIfRise buys with 100% of available cash once the price has risen more
// than risePercent above anchorLow. Only evaluated while the account holds
// cash; a fully invested account has nothing to buy with. Returns whether a
// buy was executed. A successful buy persists an account snapshot.
func BuyIfRise(ctx context.Context, acct *account.Account, pos *account.Position, risePercent float64, anchorLow float64) (bool, error) {
	if acct.Cash <= 0 {
		return false, nil
	}
	if pos.LastPrice <= anchorLow {
		return false, nil
	}

	diff := pos.LastPrice - anchorLow
	threshold := anchorLow * (risePercent / 100)
	if diff <= threshold {
		return false, nil
	}

	if _, err := acct.Buy(ctx, pos.Ticker, acct.Cash, 0); err != nil {
		return false, fmt.Errorf("buy on rise %s: %w", pos.Ticker, err)
	}
	if err := acct.PersistSnapshot(false); err != nil {
		return true, err
	}
	return true, nil
}

// SellIfFall sells the full held quantity once the price has fallen more
// than fallPercent below anchorHigh. Only evaluated while the account is
// fully invested (zero cash). Returns whether a sell was executed. A
// successful sell persists an account snapshot.
func SellIfFall(ctx context.Context, acct *account.Account, pos *account.Position, fallPercent float64, anchorHigh float64) (bool, error) {
	if acct.Cash != 0 {
		return false, nil
	}
	if pos.LastPrice >= anchorHigh {
		return false, nil
	}

	diff := anchorHigh - pos.LastPrice
	threshold := anchorHigh * (fallPercent / 100)
	if diff <= threshold {
		return false, nil
	}

	if _, err := acct.Sell(ctx, pos.Ticker, 0, pos.Quantity); err != nil {
		return false, fmt.Errorf("sell on fall %s: %w", pos.Ticker, err)
	}
	if err := acct.PersistSnapshot(false); err != nil {
		return true, err
	}
	return true, nil
}

// RiseFall drives both rules for one ticker, using the position's breakout
// anchors: the running low while flat feeds the rise trigger, the running
// high while holding feeds the fall trigger.
type RiseFall struct {
	Account     *account.Account
	Ticker      string
	RisePercent float64
	FallPercent float64
	Log         zerolog.Logger
}

// Step refreshes all positions then evaluates the sell rule before the buy
// rule, so a fall exit is never starved by a same-cycle entry. It reports
// whether either rule acted.
func (s *RiseFall) Step(ctx context.Context) (bool, error) {
	if err := s.Account.RefreshAll(ctx); err != nil {
		return false, err
	}

	pos, ok := s.Account.Positions[s.Ticker]
	if !ok {
		// Nothing held yet: seed a tracking position with one price read
		// so the breakout anchors have something to work from.
		price, err := s.Account.PriceOf(ctx, s.Ticker)
		if err != nil {
			return false, err
		}
		pos = account.NewPosition(s.Ticker, price)
		s.Account.Positions[s.Ticker] = pos
		return false, nil
	}

	sold, err := SellIfFall(ctx, s.Account, pos, s.FallPercent, pos.BreakoutHigh)
	if err != nil {
		return false, err
	}
	if sold {
		s.Log.Info().Str("ticker", s.Ticker).Float64("price", pos.LastPrice).Float64("anchor", pos.BreakoutHigh).Msg("fall trigger sold")
		return true, nil
	}

	bought, err := BuyIfRise(ctx, s.Account, pos, s.RisePercent, pos.BreakoutLow)
	if err != nil {
		return false, err
	}
	if bought {
		s.Log.Info().Str("ticker", s.Ticker).Float64("price", pos.LastPrice).Float64("anchor", pos.BreakoutLow).Msg("rise trigger bought")
	}
	return bought, nil
}
