package account

// Trend is the direction of the most recent price move.
type Trend string

const (
	TrendUp   Trend = "UP"
	TrendDown Trend = "DOWN"
)

// Position is one ticker's holding record plus the peak/valley tracking the
// trading policy reads. A position stays in the account after a full sell;
// quantity zero just means its monetary value is zero.
type Position struct {
	Ticker    string
	Quantity  float64
	BuyPrice  float64 // price at most recent buy, 0 if never bought
	SellPrice float64 // price at most recent sell, 0 if never sold
	LastPrice float64
	Trend     Trend

	// RecentHigh/RecentLow track the most recent local peak and valley,
	// restarting on trend reversal.
	RecentHigh float64
	RecentLow  float64

	// DailyHigh/DailyLow are session extremes. They only reset when
	// ResetSession is called; left alone they span the whole run.
	DailyHigh float64
	DailyLow  float64

	// BreakoutHigh/BreakoutLow are the moving anchors the policy compares
	// against. While holding, BreakoutHigh is the running max since the
	// position went long; while flat, BreakoutLow is the running min since
	// it went flat. The opposite side tracks the current price so it is
	// fresh when the position flips.
	BreakoutHigh float64
	BreakoutLow  float64

	AllTimePeak float64

	// prevPrice is the price before LastPrice, used for trend detection.
	// Not persisted; reload seeds it from LastPrice.
	prevPrice float64
}

// NewPosition returns a flat position seeded from the current price.
func NewPosition(ticker string, price float64) *Position {
	return &Position{
		Ticker:       ticker,
		LastPrice:    price,
		DailyHigh:    price,
		DailyLow:     price,
		BreakoutHigh: price,
		BreakoutLow:  price,
		AllTimePeak:  price,
		prevPrice:    price,
	}
}

// MarketValue is quantity times the last refreshed price.
func (p *Position) MarketValue() float64 {
	return p.Quantity * p.LastPrice
}

// ApplyPrice folds one new price reading into the tracking state. Callers
// perform exactly one price read per refresh and pass it here.
func (p *Position) ApplyPrice(price float64) {
	p.prevPrice = p.LastPrice
	p.LastPrice = price

	if price >= p.prevPrice {
		p.Trend = TrendUp
	} else {
		p.Trend = TrendDown
	}

	// Local peak/valley; only the first matching branch fires.
	switch {
	case price > p.RecentHigh:
		p.RecentHigh = price
	case price < p.RecentLow:
		p.RecentLow = price
	case p.Trend == TrendUp:
		// Crossed back above a prior reference; restart the high.
		p.RecentHigh = price
	default:
		p.RecentLow = price
	}

	if price > p.DailyHigh {
		p.DailyHigh = price
	}
	if price < p.DailyLow {
		p.DailyLow = price
	}
	if price > p.AllTimePeak {
		p.AllTimePeak = price
	}

	// Breakout anchors. The reset side keeps tracking the current price so
	// the anchor is current the moment the position flips sides.
	if p.Quantity > 0 {
		if price > p.BreakoutHigh {
			p.BreakoutHigh = price
		}
		p.BreakoutLow = price
	} else {
		if price < p.BreakoutLow {
			p.BreakoutLow = price
		}
		p.BreakoutHigh = price
	}
}

// ResetSession re-seeds the session extremes at a trading-day boundary.
// Whether the runner calls this is a policy decision; historically the
// extremes were never reset.
func (p *Position) ResetSession() {
	p.DailyHigh = p.LastPrice
	p.DailyLow = p.LastPrice
}
