package market

import "context"

// ObserverSource reads the latest sampled price from the shared store.
// The sampling itself is done by a separate observer process; this side is
// read-only.
type ObserverSource struct {
	db *PriceDB
}

func NewObserverSource(db *PriceDB) *ObserverSource {
	return &ObserverSource{db: db}
}

func (s *ObserverSource) GetPrice(ctx context.Context, ticker string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.db.Latest(ticker)
}
