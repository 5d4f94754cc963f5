package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blockrepublic/subledger/internal/asset"
	"github.com/blockrepublic/subledger/internal/authz"
	"github.com/blockrepublic/subledger/internal/transfer"
)

const (
	maxMemoBytes = 256

	refundMemo = "Refund, please create an account first."
)

// Currency fixes the single symbol and precision every record is held in.
type Currency struct {
	Symbol    string
	Precision uint8
}

// Service is the sub-account ledger: it owns the balance records and is the
// only legal path for creating, mutating, or deleting them.
type Service struct {
	store      Store
	gateway    transfer.Gateway
	authorizer authz.Authorizer
	logger     *slog.Logger

	// account is the principal the ledger itself holds funds under; outbound
	// transfers are sent from it and its own payments are ignored on notify.
	account  string
	currency Currency
}

// NewService builds the ledger around its store and collaborators.
func NewService(store Store, gateway transfer.Gateway, authorizer authz.Authorizer, account string, currency Currency, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		gateway:    gateway,
		authorizer: authorizer,
		logger:     logger,
		account:    account,
		currency:   currency,
	}
}

// Currency returns the ledger's configured currency.
func (s *Service) Currency() Currency {
	return s.currency
}

// Open creates a zero-balance record for owner, billing its storage to payer.
// The caller must hold payer's authority. A second open for the same owner is
// rejected with ErrAccountExists.
func (s *Service) Open(ctx context.Context, owner, payer string) (BalanceRecord, error) {
	if err := s.authorizer.RequireAuth(ctx, payer); err != nil {
		return BalanceRecord{}, err
	}
	if owner == "" {
		return BalanceRecord{}, fmt.Errorf("%w: empty owner", ErrInvalidQuantity)
	}

	rec := BalanceRecord{
		Owner:     owner,
		Funds:     asset.New(0, s.currency.Symbol, s.currency.Precision),
		Payer:     payer,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return BalanceRecord{}, err
	}

	s.logger.Info("subaccount opened", "owner", owner, "payer", payer)
	return rec, nil
}

// Withdraw debits owner's record and instructs the transfer service to pay
// the quantity out to owner. The debit and the payout instruction commit as
// one unit; any precondition failure leaves the record untouched.
func (s *Service) Withdraw(ctx context.Context, owner string, quantity asset.Asset, memo string) (BalanceRecord, error) {
	if err := s.authorizer.RequireAuth(ctx, owner); err != nil {
		return BalanceRecord{}, err
	}
	if !quantity.IsValid() || !s.ledgerCurrency(quantity) {
		return BalanceRecord{}, fmt.Errorf("%w: %s", ErrInvalidQuantity, quantity.Symbol)
	}
	if quantity.Amount <= 0 {
		return BalanceRecord{}, fmt.Errorf("%w: cannot withdraw negative or zero quantity", ErrInvalidQuantity)
	}
	if len(memo) > maxMemoBytes {
		return BalanceRecord{}, ErrMemoTooLong
	}

	rec, err := s.store.Debit(ctx, owner, quantity.Amount, func(BalanceRecord) error {
		_, err := s.gateway.Send(ctx, transfer.Request{
			From:     s.account,
			To:       owner,
			Quantity: quantity,
			Memo:     memo,
		})
		return err
	})
	if err != nil {
		return BalanceRecord{}, err
	}

	s.logger.Info("withdrawal", "owner", owner, "quantity", quantity.String(), "balance", rec.Funds.String())
	return rec, nil
}

// OnIncomingTransfer reconciles a transfer reported by the asset transfer
// service. The ledger's own outbound payments are ignored; a known sender is
// credited; an unknown sender is refunded in full so no funds are silently
// absorbed. The transfer service vouches the movement happened, so no further
// authorization applies.
func (s *Service) OnIncomingTransfer(ctx context.Context, from, to string, quantity asset.Asset, memo string) error {
	if from == s.account {
		// Our own payout echoing back; the withdraw already accounted for it.
		return nil
	}
	if to != s.account {
		s.logger.Debug("ignoring transfer not addressed to ledger", "from", from, "to", to)
		return nil
	}
	if quantity.Amount <= 0 {
		return fmt.Errorf("%w: non-positive transfer", ErrInvalidQuantity)
	}

	if !s.ledgerCurrency(quantity) {
		// Foreign-currency deposits have no record to land in.
		return s.refund(ctx, from, quantity)
	}

	rec, err := s.store.Credit(ctx, from, quantity.Amount)
	switch {
	case err == nil:
		s.logger.Info("deposit credited", "owner", from, "quantity", quantity.String(), "balance", rec.Funds.String())
		return nil
	case errors.Is(err, ErrNoAccount):
		return s.refund(ctx, from, quantity)
	default:
		return err
	}
}

// Close deletes owner's record. The balance must be exactly zero and the
// caller must hold owner's authority; closing a missing account reports
// ErrNoAccount rather than proceeding blindly.
func (s *Service) Close(ctx context.Context, owner string) error {
	if err := s.authorizer.RequireAuth(ctx, owner); err != nil {
		return err
	}
	if err := s.store.Erase(ctx, owner); err != nil {
		return err
	}
	s.logger.Info("subaccount closed", "owner", owner)
	return nil
}

// Balance returns owner's current record.
func (s *Service) Balance(ctx context.Context, owner string) (BalanceRecord, error) {
	return s.store.Find(ctx, owner)
}

func (s *Service) refund(ctx context.Context, to string, quantity asset.Asset) error {
	_, err := s.gateway.Send(ctx, transfer.Request{
		From:     s.account,
		To:       to,
		Quantity: quantity,
		Memo:     refundMemo,
	})
	if err != nil {
		return fmt.Errorf("refund to %s: %w", to, err)
	}
	s.logger.Info("deposit refunded", "sender", to, "quantity", quantity.String())
	return nil
}

func (s *Service) ledgerCurrency(a asset.Asset) bool {
	return a.Symbol == s.currency.Symbol && a.Precision == s.currency.Precision
}
