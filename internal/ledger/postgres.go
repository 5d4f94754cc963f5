package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blockrepublic/subledger/internal/asset"
)

// PostgresStore persists balance records in PostgreSQL. Row locks give each
// operation the single-writer semantics the service expects.
type PostgresStore struct {
	db        *pgxpool.Pool
	symbol    string
	precision uint8
}

// NewPostgresStore constructs a Postgres-backed store. The symbol and
// precision come from ledger configuration; only the integer quantity is
// persisted.
func NewPostgresStore(db *pgxpool.Pool, symbol string, precision uint8) *PostgresStore {
	return &PostgresStore{db: db, symbol: symbol, precision: precision}
}

// Find returns the record for owner.
func (s *PostgresStore) Find(ctx context.Context, owner string) (BalanceRecord, error) {
	const query = `SELECT funds, payer, created_at FROM sub_accounts WHERE owner = $1`
	return s.scanRecord(s.db.QueryRow(ctx, query, owner), owner)
}

// Insert creates the record, rejecting a duplicate owner.
func (s *PostgresStore) Insert(ctx context.Context, rec BalanceRecord) error {
	const query = `INSERT INTO sub_accounts (owner, funds, payer, created_at)
        VALUES ($1, $2, $3, $4) ON CONFLICT (owner) DO NOTHING`
	tag, err := s.db.Exec(ctx, query, rec.Owner, rec.Funds.Amount, rec.Payer, rec.CreatedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountExists
	}
	return nil
}

// Credit increases the owner's funds by amount minor units.
func (s *PostgresStore) Credit(ctx context.Context, owner string, amount int64) (BalanceRecord, error) {
	const query = `UPDATE sub_accounts SET funds = funds + $2 WHERE owner = $1
        RETURNING funds, payer, created_at`
	return s.scanRecord(s.db.QueryRow(ctx, query, owner, amount), owner)
}

// Debit decreases the owner's funds by amount minor units and runs then
// inside the same transaction, so the decrement only commits if the follow-up
// succeeds.
func (s *PostgresStore) Debit(ctx context.Context, owner string, amount int64, then func(BalanceRecord) error) (BalanceRecord, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return BalanceRecord{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	const lockQuery = `SELECT funds, payer, created_at FROM sub_accounts WHERE owner = $1 FOR UPDATE`
	rec, err := s.scanRecord(tx.QueryRow(ctx, lockQuery, owner), owner)
	if err != nil {
		return BalanceRecord{}, err
	}
	if rec.Funds.Amount < amount {
		return BalanceRecord{}, ErrInsufficientFunds
	}

	rec.Funds.Amount -= amount
	if _, err := tx.Exec(ctx, `UPDATE sub_accounts SET funds = $2 WHERE owner = $1`, owner, rec.Funds.Amount); err != nil {
		return BalanceRecord{}, err
	}

	if then != nil {
		if err := then(rec); err != nil {
			return BalanceRecord{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return BalanceRecord{}, err
	}
	return rec, nil
}

// Erase deletes the owner's record if its balance is zero.
func (s *PostgresStore) Erase(ctx context.Context, owner string) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	const lockQuery = `SELECT funds FROM sub_accounts WHERE owner = $1 FOR UPDATE`
	var funds int64
	if err := tx.QueryRow(ctx, lockQuery, owner).Scan(&funds); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoAccount
		}
		return err
	}
	if funds != 0 {
		return ErrNonZeroBalance
	}

	if _, err := tx.Exec(ctx, `DELETE FROM sub_accounts WHERE owner = $1`, owner); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) scanRecord(row pgx.Row, owner string) (BalanceRecord, error) {
	var funds int64
	var payer string
	var createdAt time.Time
	if err := row.Scan(&funds, &payer, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BalanceRecord{}, ErrNoAccount
		}
		return BalanceRecord{}, err
	}
	return BalanceRecord{
		Owner:     owner,
		Funds:     asset.New(funds, s.symbol, s.precision),
		Payer:     payer,
		CreatedAt: createdAt.UTC(),
	}, nil
}
