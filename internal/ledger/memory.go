package ledger

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu      sync.Mutex
	records map[string]BalanceRecord
}

// NewMemoryStore creates a concurrency-safe in-memory store used in tests and
// database-less development mode.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[string]BalanceRecord)}
}

func (s *memoryStore) Find(_ context.Context, owner string) (BalanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[owner]
	if !ok {
		return BalanceRecord{}, ErrNoAccount
	}
	return rec, nil
}

func (s *memoryStore) Insert(_ context.Context, rec BalanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.Owner]; exists {
		return ErrAccountExists
	}
	s.records[rec.Owner] = rec
	return nil
}

func (s *memoryStore) Credit(_ context.Context, owner string, amount int64) (BalanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[owner]
	if !ok {
		return BalanceRecord{}, ErrNoAccount
	}
	rec.Funds.Amount += amount
	s.records[owner] = rec
	return rec, nil
}

func (s *memoryStore) Debit(_ context.Context, owner string, amount int64, then func(BalanceRecord) error) (BalanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[owner]
	if !ok {
		return BalanceRecord{}, ErrNoAccount
	}
	if rec.Funds.Amount < amount {
		return BalanceRecord{}, ErrInsufficientFunds
	}
	rec.Funds.Amount -= amount
	if then != nil {
		// The map is untouched until then succeeds, so a failure leaves the
		// stored record exactly as it was.
		if err := then(rec); err != nil {
			return BalanceRecord{}, err
		}
	}
	s.records[owner] = rec
	return rec, nil
}

func (s *memoryStore) Erase(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[owner]
	if !ok {
		return ErrNoAccount
	}
	if rec.Funds.Amount != 0 {
		return ErrNonZeroBalance
	}
	delete(s.records, owner)
	return nil
}
