package account

import (
	"fmt"
	"time"

	"github.com/joelyuhas/papertrader/journal"
)

// Kind is the transaction variant.
type Kind string

const (
	KindDeposit  Kind = "DEPOSIT"
	KindWithdraw Kind = "WITHDRAW"
	KindBuy      Kind = "BUY"
	KindSell     Kind = "SELL"
)

// Transaction is one attempted account operation. The execution price is
// captured once at construction, so the derived amount and the audit line
// come from a single price read. A transaction with Err set was rejected and
// never applied; it still gets an audit line.
type Transaction struct {
	ID      string
	Kind    Kind
	Ticker  string
	Shares  float64
	Dollars float64
	Price   float64
	Time    time.Time
	Err     string
}

// resolveAmounts fills in whichever of Shares/Dollars the caller omitted.
// Exactly one must be non-zero.
func (t *Transaction) resolveAmounts() error {
	switch {
	case t.Shares != 0 && t.Dollars != 0:
		return fmt.Errorf("%s %s: shares=%v dollars=%v: %w", t.Kind, t.Ticker, t.Shares, t.Dollars, ErrAmountConflict)
	case t.Shares == 0 && t.Dollars == 0:
		return fmt.Errorf("%s %s: %w", t.Kind, t.Ticker, ErrNoAmount)
	case t.Shares != 0:
		t.Dollars = t.Shares * t.Price
	default:
		t.Shares = t.Dollars / t.Price
	}
	return nil
}

// auditLine renders the trail entry for this transaction. cash is the
// account balance after the transaction was applied (or left unchanged, for
// a rejected one). The trailing id ties the line back to the in-memory
// history entry.
func (t *Transaction) auditLine(accountNumber string, cash float64) string {
	ts := t.Time.Format(journal.AuditTimeLayout)

	if t.Err != "" {
		return fmt.Sprintf("%s account: %s : %s id: %s", ts, accountNumber, t.Err, t.ID)
	}

	switch t.Kind {
	case KindDeposit:
		return fmt.Sprintf("%s account: %s : DEPOSIT  -> %v total: %v id: %s", ts, accountNumber, t.Dollars, cash, t.ID)
	case KindWithdraw:
		return fmt.Sprintf("%s account: %s : WITHDRAW -> %v total: %v id: %s", ts, accountNumber, t.Dollars, cash, t.ID)
	default:
		return fmt.Sprintf("%s account: %s : %s      -> %v %s at $%v total: $%v balance: %v id: %s",
			ts, accountNumber, t.Kind, t.Shares, t.Ticker, t.Price, t.Shares*t.Price, cash, t.ID)
	}
}
