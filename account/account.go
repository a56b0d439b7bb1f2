package account

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/joelyuhas/papertrader/internal/id"
	"github.com/joelyuhas/papertrader/journal"
	"github.com/joelyuhas/papertrader/market"
)

// StrictWithdraw documents the withdraw precondition: cash must strictly
// exceed the requested amount, so withdrawing the exact full balance is
// rejected. This mirrors long-standing behavior and is deliberate, not an
// off-by-one.
const StrictWithdraw = true

// Account owns the cash balance, the per-ticker positions, and the
// transaction history, and persists itself to two per-account files: an
// append-only CSV snapshot log and a plain-text audit trail.
//
// Single process, single writer per account. Operations are sequential and
// synchronous.
type Account struct {
	Number    string
	Cash      float64
	Positions map[string]*Position
	History   []*Transaction

	dir       string
	src       market.PriceSource
	snapshots *journal.SnapshotLog
	audit     *journal.AuditLog
	log       zerolog.Logger
}

// Option adjusts Account construction.
type Option func(*Account)

func WithLogger(log zerolog.Logger) Option {
	return func(a *Account) { a.log = log }
}

// WithEndOfDayHour overrides the hour end-of-day saves are matched at.
func WithEndOfDayHour(hour int) Option {
	return func(a *Account) { a.snapshots.EndOfDayHour = hour }
}

// New builds an account rooted at dir. It touches no files; call
// CreateIfAbsent to initialize storage, and Reload to pick up prior state.
func New(number, dir string, src market.PriceSource, opts ...Option) *Account {
	a := &Account{
		Number:    number,
		Positions: make(map[string]*Position),
		dir:       dir,
		src:       src,
		snapshots: journal.NewSnapshotLog(filepath.Join(dir, fmt.Sprintf("account_%s.csv", number))),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SnapshotPath returns the snapshot CSV location.
func (a *Account) SnapshotPath() string { return a.snapshots.Path }

// AuditPath returns the audit trail location.
func (a *Account) AuditPath() string {
	return filepath.Join(a.dir, fmt.Sprintf("transaction_%s.txt", a.Number))
}

// CreateIfAbsent ensures the storage directory and both log files exist.
// If the snapshot log had to be created, an initial empty snapshot is
// written and true is returned: the caller is looking at a new account.
// Otherwise the prior file is left alone (use Reload) and false is returned.
func (a *Account) CreateIfAbsent() (bool, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return false, fmt.Errorf("create account dir: %w", err)
	}

	if a.audit == nil {
		audit, err := journal.OpenAudit(a.AuditPath())
		if err != nil {
			return false, err
		}
		a.audit = audit
	}

	if a.snapshots.Exists() {
		a.log.Debug().Str("path", a.snapshots.Path).Msg("account already exists")
		return false, nil
	}

	a.log.Info().Str("account", a.Number).Str("dir", a.dir).Msg("initializing new account")
	if err := a.PersistSnapshot(false); err != nil {
		return false, err
	}
	return true, nil
}

// Close releases the audit log handle.
func (a *Account) Close() error {
	if a.audit == nil {
		return nil
	}
	err := a.audit.Close()
	a.audit = nil
	return err
}

func (a *Account) appendAudit(line string) error {
	if a.audit == nil {
		audit, err := journal.OpenAudit(a.AuditPath())
		if err != nil {
			return err
		}
		a.audit = audit
	}
	return a.audit.Append(line)
}

// Valuation is cash plus the market value of every position at its last
// refreshed price. Pure; callers wanting accuracy refresh first.
func (a *Account) Valuation() float64 {
	total := a.Cash
	for _, pos := range a.Positions {
		total += pos.MarketValue()
	}
	return total
}

// RefreshAll performs exactly one price read per held ticker and folds the
// reading into that position. A failed read aborts the refresh: no price
// means no valid decision can be made downstream.
func (a *Account) RefreshAll(ctx context.Context) error {
	for ticker, pos := range a.Positions {
		price, err := a.src.GetPrice(ctx, ticker)
		if err != nil {
			return fmt.Errorf("refresh %s: %w", ticker, err)
		}
		pos.ApplyPrice(price)
		a.log.Debug().Str("ticker", ticker).Float64("price", price).Str("trend", string(pos.Trend)).Msg("refreshed")
	}
	return nil
}

// PriceOf performs a single price source read for ticker. Callers that need
// tracking state before any purchase (a policy watching an unseen ticker)
// use this to seed a position.
func (a *Account) PriceOf(ctx context.Context, ticker string) (float64, error) {
	return a.src.GetPrice(ctx, ticker)
}

// reject audits a failed transaction and surfaces err. The account state is
// untouched; the attempt still goes on the record.
func (a *Account) reject(tx *Transaction, err error) error {
	if wErr := a.appendAudit(tx.auditLine(a.Number, a.Cash)); wErr != nil {
		return fmt.Errorf("audit rejected transaction: %v: %w", wErr, err)
	}
	a.log.Warn().Str("kind", string(tx.Kind)).Str("err", tx.Err).Msg("transaction rejected")
	return err
}

// commit audits a successful transaction and appends it to the history.
func (a *Account) commit(tx *Transaction) error {
	if err := a.appendAudit(tx.auditLine(a.Number, a.Cash)); err != nil {
		return err
	}
	a.History = append(a.History, tx)
	return nil
}

// Deposit adds cash to the balance.
func (a *Account) Deposit(amount float64) (*Transaction, error) {
	tx := &Transaction{ID: id.New(), Kind: KindDeposit, Dollars: amount, Time: time.Now()}

	a.Cash += amount
	a.log.Info().Float64("amount", amount).Float64("cash", a.Cash).Msg("deposit")
	return tx, a.commit(tx)
}

// Withdraw removes cash from the balance. The strict precondition means the
// balance must exceed the amount; see StrictWithdraw.
func (a *Account) Withdraw(amount float64) (*Transaction, error) {
	tx := &Transaction{ID: id.New(), Kind: KindWithdraw, Dollars: amount, Time: time.Now()}

	if !(a.Cash > amount) {
		tx.Err = fmt.Sprintf("ERROR#1: Not-enough-funds-to-withdraw: Funds %v Request %v", a.Cash, amount)
		return tx, a.reject(tx, fmt.Errorf("withdraw %v with cash %v: %w", amount, a.Cash, ErrInsufficientFunds))
	}

	a.Cash -= amount
	a.log.Info().Float64("amount", amount).Float64("cash", a.Cash).Msg("withdraw")
	return tx, a.commit(tx)
}

// Buy purchases ticker for either a dollar amount or a share count (exactly
// one non-zero; the other is derived from a single price read).
func (a *Account) Buy(ctx context.Context, ticker string, dollars, shares float64) (*Transaction, error) {
	price, err := a.src.GetPrice(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("buy %s: %w", ticker, err)
	}

	tx := &Transaction{ID: id.New(), Kind: KindBuy, Ticker: ticker, Shares: shares, Dollars: dollars, Price: price, Time: time.Now()}

	if err := tx.resolveAmounts(); err != nil {
		tx.Err = err.Error()
		return tx, a.reject(tx, err)
	}

	if tx.Dollars > a.Cash {
		tx.Err = fmt.Sprintf("ERROR#2: Not-enough-funds-to-buy %s: Funds %v Request: %v", ticker, a.Cash, tx.Dollars)
		return tx, a.reject(tx, fmt.Errorf("buy %s for %v with cash %v: %w", ticker, tx.Dollars, a.Cash, ErrInsufficientFunds))
	}

	a.Cash -= tx.Dollars
	if pos, ok := a.Positions[ticker]; ok {
		pos.Quantity += tx.Shares
		pos.LastPrice = price
	} else {
		pos = NewPosition(ticker, price)
		pos.Quantity = tx.Shares
		pos.BuyPrice = price
		pos.BreakoutHigh = price
		a.Positions[ticker] = pos
	}

	a.log.Info().Str("ticker", ticker).Float64("shares", tx.Shares).Float64("price", price).Float64("cash", a.Cash).Msg("buy")
	return tx, a.commit(tx)
}

// Sell disposes of ticker for either a dollar amount or a share count.
// Selling a ticker the account never bought, or more shares than held, is
// rejected. A fully sold position stays in the map at quantity zero.
func (a *Account) Sell(ctx context.Context, ticker string, dollars, shares float64) (*Transaction, error) {
	price, err := a.src.GetPrice(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("sell %s: %w", ticker, err)
	}

	tx := &Transaction{ID: id.New(), Kind: KindSell, Ticker: ticker, Shares: shares, Dollars: dollars, Price: price, Time: time.Now()}

	if err := tx.resolveAmounts(); err != nil {
		tx.Err = err.Error()
		return tx, a.reject(tx, err)
	}

	pos, ok := a.Positions[ticker]
	if !ok {
		tx.Err = fmt.Sprintf("ERROR#3: Stock %s not-owned", ticker)
		return tx, a.reject(tx, fmt.Errorf("sell %s: %w", ticker, ErrUnknownTicker))
	}

	if pos.Quantity < tx.Shares {
		tx.Err = fmt.Sprintf("ERROR#4: Not-enough-stock %s to-sell, Have: %v, Requested %v", ticker, pos.Quantity, tx.Shares)
		return tx, a.reject(tx, fmt.Errorf("sell %v of %s holding %v: %w", tx.Shares, ticker, pos.Quantity, ErrInsufficientShares))
	}

	a.Cash += tx.Dollars
	pos.Quantity -= tx.Shares
	pos.LastPrice = price
	pos.SellPrice = price
	pos.BreakoutLow = price

	a.log.Info().Str("ticker", ticker).Float64("shares", tx.Shares).Float64("price", price).Float64("cash", a.Cash).Msg("sell")
	return tx, a.commit(tx)
}

// PersistSnapshot appends one row of serialized account state to the
// snapshot log, healing the header first if needed. endOfDay flags the final
// save of a trading session for later day-over-day lookups.
func (a *Account) PersistSnapshot(endOfDay bool) error {
	state, err := a.marshalState()
	if err != nil {
		return err
	}
	return a.snapshots.Append(journal.Snapshot{
		Time:       time.Now(),
		State:      state,
		TotalValue: a.Valuation(),
		EndOfDay:   endOfDay,
	})
}

// Reload replaces cash and positions from the most recent snapshot row.
// Last write wins; concurrent writers are not supported.
func (a *Account) Reload() error {
	s, err := a.snapshots.Last()
	if err != nil {
		return fmt.Errorf("reload account %s: %w", a.Number, err)
	}
	if err := a.unmarshalState(s.State); err != nil {
		return fmt.Errorf("reload account %s: %w", a.Number, err)
	}
	a.log.Info().Str("account", a.Number).Float64("cash", a.Cash).Int("positions", len(a.Positions)).Msg("reloaded from snapshot")
	return nil
}

// ValueAsOf returns the valuation recorded by the end-of-day save daysBack
// days ago, scanning the snapshot log backward within a bounded window.
func (a *Account) ValueAsOf(daysBack int, allowRetry bool) (float64, time.Time, error) {
	return a.snapshots.ValueAsOf(daysBack, allowRetry)
}
