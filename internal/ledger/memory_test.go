package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blockrepublic/subledger/internal/asset"
)

func seedRecord(t *testing.T, store Store, owner string, amount int64) {
	t.Helper()
	err := store.Insert(context.Background(), BalanceRecord{
		Owner:     owner,
		Funds:     asset.New(amount, "SYS", 4),
		Payer:     owner,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed %s: %v", owner, err)
	}
}

func TestMemoryStoreDebitKeepsBalanceNonNegative(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedRecord(t, store, "alice", 10_000)

	// More debit attempts than the balance can satisfy; the surplus must fail
	// with ErrInsufficientFunds and the balance must never cross zero.
	const workers = 30
	const amount = int64(500)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Debit(ctx, "alice", amount, nil); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 20 {
		t.Fatalf("expected exactly 20 debits to succeed, got %d", succeeded)
	}
	rec, err := store.Find(ctx, "alice")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if rec.Funds.Amount != 0 {
		t.Fatalf("expected zero balance, got %d", rec.Funds.Amount)
	}
}

func TestMemoryStoreDebitDiscardedWhenFollowUpFails(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedRecord(t, store, "alice", 1_000)

	boom := errors.New("boom")
	if _, err := store.Debit(ctx, "alice", 400, func(BalanceRecord) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected follow-up error, got %v", err)
	}

	rec, err := store.Find(ctx, "alice")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if rec.Funds.Amount != 1_000 {
		t.Fatalf("debit leaked: %d", rec.Funds.Amount)
	}
}

func TestMemoryStoreEraseGuards(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedRecord(t, store, "alice", 1)

	if err := store.Erase(ctx, "alice"); !errors.Is(err, ErrNonZeroBalance) {
		t.Fatalf("expected ErrNonZeroBalance, got %v", err)
	}
	if _, err := store.Debit(ctx, "alice", 1, nil); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if err := store.Erase(ctx, "alice"); err != nil {
		t.Fatalf("erase at zero: %v", err)
	}
	if err := store.Erase(ctx, "alice"); !errors.Is(err, ErrNoAccount) {
		t.Fatalf("expected ErrNoAccount, got %v", err)
	}
}

func TestMemoryStoreInsertRejectsDuplicate(t *testing.T) {
	store := NewMemoryStore()
	seedRecord(t, store, "alice", 0)

	err := store.Insert(context.Background(), BalanceRecord{Owner: "alice", Funds: asset.New(0, "SYS", 4)})
	if !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}
