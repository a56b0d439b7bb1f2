package account

import (
	"encoding/json"
	"fmt"
	"sort"
)

// schemaVersion tags the snapshot state blob so the format can evolve.
// Version 0 (no field) is the original dict layout, which decodes the same.
const schemaVersion = 1

// accountState is the JSON blob stored in the snapshot log's account_dict
// column. Field names are fixed by the on-disk format.
type accountState struct {
	SchemaVersion   int             `json:"schema_version"`
	AccountNumber   string          `json:"account_number"`
	Money           float64         `json:"money"`
	AccountPath     string          `json:"account_path"`
	TransactionFile string          `json:"transaction_file"`
	AccountFile     string          `json:"account_file"`
	Stocks          []positionState `json:"stocks"`
}

type positionState struct {
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	BuyPrice        float64 `json:"buy_price"`
	SellPrice       float64 `json:"sell_price"`
	AllTimePeak     float64 `json:"all_time_peak"`
	LastHigh        float64 `json:"last_high"`
	LastLow         float64 `json:"last_low"`
	Trend           string  `json:"trend"`
	LastPrice       float64 `json:"last_price"`
	TransactionFile string  `json:"transaction_file"`
	AccountFile     string  `json:"account_file"`
	NewHigh         float64 `json:"new_high"`
	NewLow          float64 `json:"new_low"`
}

func (a *Account) marshalState() (json.RawMessage, error) {
	state := accountState{
		SchemaVersion:   schemaVersion,
		AccountNumber:   a.Number,
		Money:           a.Cash,
		AccountPath:     a.dir,
		TransactionFile: a.AuditPath(),
		AccountFile:     a.SnapshotPath(),
	}

	// Sorted for deterministic snapshots.
	tickers := make([]string, 0, len(a.Positions))
	for ticker := range a.Positions {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		pos := a.Positions[ticker]
		state.Stocks = append(state.Stocks, positionState{
			Name:            pos.Ticker,
			Quantity:        pos.Quantity,
			BuyPrice:        pos.BuyPrice,
			SellPrice:       pos.SellPrice,
			AllTimePeak:     pos.AllTimePeak,
			LastHigh:        pos.RecentHigh,
			LastLow:         pos.RecentLow,
			Trend:           string(pos.Trend),
			LastPrice:       pos.LastPrice,
			TransactionFile: a.AuditPath(),
			AccountFile:     a.SnapshotPath(),
			NewHigh:         pos.BreakoutHigh,
			NewLow:          pos.BreakoutLow,
		})
	}

	blob, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshal account state: %w", err)
	}
	return blob, nil
}

func (a *Account) unmarshalState(blob json.RawMessage) error {
	var state accountState
	if err := json.Unmarshal(blob, &state); err != nil {
		return fmt.Errorf("unmarshal account state: %w", err)
	}
	if state.SchemaVersion > schemaVersion {
		return fmt.Errorf("account state schema v%d is newer than supported v%d", state.SchemaVersion, schemaVersion)
	}

	a.Cash = state.Money
	a.Positions = make(map[string]*Position, len(state.Stocks))
	for _, s := range state.Stocks {
		pos := NewPosition(s.Name, s.LastPrice)
		pos.Quantity = s.Quantity
		pos.BuyPrice = s.BuyPrice
		pos.SellPrice = s.SellPrice
		pos.AllTimePeak = s.AllTimePeak
		pos.RecentHigh = s.LastHigh
		pos.RecentLow = s.LastLow
		pos.Trend = Trend(s.Trend)
		pos.BreakoutHigh = s.NewHigh
		pos.BreakoutLow = s.NewLow
		a.Positions[s.Name] = pos
	}
	return nil
}
