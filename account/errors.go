package account

import "errors"

// Validation errors: the caller misused the API. These abort the operation
// loudly and should not be retried.
var (
	// ErrAmountConflict means both a share amount and a dollar amount were
	// supplied for a buy or sell. Exactly one is primary; the other is
	// always derived from the execution price.
	ErrAmountConflict = errors.New("both share and dollar amounts supplied")

	// ErrNoAmount means neither amount was supplied.
	ErrNoAmount = errors.New("neither share nor dollar amount supplied")
)

// Insufficient-resource errors: expected business conditions. They are
// recorded to the audit log before surfacing and a caller may catch them and
// decide to retry or skip.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrUnknownTicker      = errors.New("ticker not owned")
)
