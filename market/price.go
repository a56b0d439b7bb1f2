package market

import (
	"context"
	"errors"
	"fmt"
)

// ErrPriceUnavailable is returned when a source has no data for a ticker.
// No price means no valid trading decision can be made, so callers must
// treat this as a hard stop for the current cycle.
var ErrPriceUnavailable = errors.New("price unavailable")

// PriceSource supplies the latest price for a ticker.
//
// Three implementations exist: DirectSource queries a live feed,
// ObserverSource reads the latest value written to a shared store by a
// separate sampling process, and ReplaySource feeds recorded prices in
// sequence. The variant is selected by configuration at construction time.
type PriceSource interface {
	GetPrice(ctx context.Context, ticker string) (float64, error)
}

// SourceConfig selects and parameterizes a PriceSource.
type SourceConfig struct {
	Type       string `json:"type" yaml:"type"` // "direct", "observer" or "replay"
	DBDir      string `json:"db_dir,omitempty" yaml:"db_dir,omitempty"`
	ReplayFile string `json:"replay_file,omitempty" yaml:"replay_file,omitempty"`
}

// NewSource builds the configured PriceSource variant.
func NewSource(cfg SourceConfig) (PriceSource, error) {
	switch cfg.Type {
	case "direct":
		return NewDirectSource(), nil
	case "observer":
		if cfg.DBDir == "" {
			return nil, fmt.Errorf("observer source: db_dir is required")
		}
		return NewObserverSource(NewPriceDB(cfg.DBDir)), nil
	case "replay":
		if cfg.ReplayFile == "" {
			return nil, fmt.Errorf("replay source: replay_file is required")
		}
		return NewReplayFromCSV(cfg.ReplayFile)
	default:
		return nil, fmt.Errorf("unknown price source type %q", cfg.Type)
	}
}
