package ledger

import "context"

// Store persists balance records keyed by owner. Implementations provide the
// per-operation atomicity the service relies on: Credit, Debit, and Erase each
// run their check and mutation as one unit, and Debit additionally runs the
// caller's follow-up inside the same unit so the decrement and the outbound
// transfer instruction commit or roll back together.
type Store interface {
	// Find returns the record for owner, or ErrNoAccount.
	Find(ctx context.Context, owner string) (BalanceRecord, error)

	// Insert creates the record, or returns ErrAccountExists if the owner
	// already holds one.
	Insert(ctx context.Context, rec BalanceRecord) error

	// Credit increases the owner's funds by amount minor units and returns
	// the updated record, or ErrNoAccount.
	Credit(ctx context.Context, owner string, amount int64) (BalanceRecord, error)

	// Debit decreases the owner's funds by amount minor units, then invokes
	// then with the post-debit record while the record is still locked. An
	// error from then discards the debit. Returns ErrNoAccount or
	// ErrInsufficientFunds.
	Debit(ctx context.Context, owner string, amount int64, then func(BalanceRecord) error) (BalanceRecord, error)

	// Erase deletes the owner's record. Returns ErrNoAccount if absent and
	// ErrNonZeroBalance if funds remain.
	Erase(ctx context.Context, owner string) error
}
