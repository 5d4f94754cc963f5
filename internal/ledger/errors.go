package ledger

import "errors"

var (
	// ErrNoAccount occurs when the referenced owner has no sub-account.
	ErrNoAccount = errors.New("user has no subaccount")

	// ErrAccountExists indicates an open request for an owner that already
	// holds a sub-account. Open is rejecting, not idempotent: the caller is
	// told rather than silently ignored.
	ErrAccountExists = errors.New("subaccount already exists")

	// ErrInsufficientFunds occurs when a withdrawal exceeds the available
	// balance.
	ErrInsufficientFunds = errors.New("insufficient funds available")

	// ErrNonZeroBalance indicates a close attempt while funds remain.
	ErrNonZeroBalance = errors.New("balance must be zero to close account")

	// ErrInvalidQuantity indicates a malformed, foreign-currency, or
	// non-positive amount.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrMemoTooLong indicates the memo exceeds the 256-byte bound.
	ErrMemoTooLong = errors.New("memo has more than 256 bytes")
)
