package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func seedLedger(t *testing.T, wallets map[string]int64) Ledger {
	t.Helper()
	l := NewInMemory()
	ctx := context.Background()
	for id, balance := range wallets {
		if err := l.LoadWallet(ctx, id, balance); err != nil {
			t.Fatalf("load wallet %s: %v", id, err)
		}
	}
	return l
}

// totalValue sums wallet balances and pending order amounts, which must be
// conserved by every reservation and confirmation.
func totalValue(t *testing.T, l Ledger) int64 {
	t.Helper()
	mem := l.(*memoryLedger)
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	var total int64
	for _, balance := range mem.wallets {
		total += balance
	}
	for _, amount := range mem.orders {
		total += amount
	}
	return total
}

func TestReserveDebitsWalletAndAllocatesSequentialIDs(t *testing.T) {
	l := seedLedger(t, map[string]int64{"alice": 100})
	ctx := context.Background()

	first, err := l.Reserve(ctx, "alice", 30)
	if err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	if first != 1 {
		t.Fatalf("expected first order id 1, got %d", first)
	}

	second, err := l.Reserve(ctx, "alice", 20)
	if err != nil {
		t.Fatalf("second reserve: %v", err)
	}
	if second != 2 {
		t.Fatalf("expected second order id 2, got %d", second)
	}

	balance, err := l.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 50 {
		t.Fatalf("expected balance 50 after reservations, got %d", balance)
	}
	if total := totalValue(t, l); total != 100 {
		t.Fatalf("value not conserved, total=%d", total)
	}
}

func TestReserveUnknownWallet(t *testing.T) {
	l := seedLedger(t, nil)
	if _, err := l.Reserve(context.Background(), "ghost", 10); !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected wallet not found, got %v", err)
	}
}

func TestReserveRejectsOverdraft(t *testing.T) {
	l := seedLedger(t, map[string]int64{"alice": 40})
	ctx := context.Background()

	if _, err := l.Reserve(ctx, "alice", 41); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	balance, err := l.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 40 {
		t.Fatalf("rejected reservation mutated balance: %d", balance)
	}
	if pending, _ := l.PendingOrders(ctx); pending != 0 {
		t.Fatalf("rejected reservation left %d pending orders", pending)
	}
}

func TestConfirmMovesFundsAndRetiresOrder(t *testing.T) {
	l := seedLedger(t, map[string]int64{"alice": 100, "bob": 0})
	ctx := context.Background()

	orderID, err := l.Reserve(ctx, "alice", 30)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if err := l.Confirm(ctx, orderID, 30, "bob"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	bob, _ := l.Balance(ctx, "bob")
	if bob != 30 {
		t.Fatalf("expected bob balance 30, got %d", bob)
	}
	if pending, _ := l.PendingOrders(ctx); pending != 0 {
		t.Fatalf("order not retired, %d pending", pending)
	}
	if total := totalValue(t, l); total != 100 {
		t.Fatalf("value not conserved, total=%d", total)
	}
}

func TestConfirmOnce(t *testing.T) {
	l := seedLedger(t, map[string]int64{"alice": 100, "bob": 0})
	ctx := context.Background()

	orderID, _ := l.Reserve(ctx, "alice", 30)
	if err := l.Confirm(ctx, orderID, 30, "bob"); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if err := l.Confirm(ctx, orderID, 30, "bob"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found on second confirm, got %v", err)
	}
	if bob, _ := l.Balance(ctx, "bob"); bob != 30 {
		t.Fatalf("double confirmation mutated balance: %d", bob)
	}
}

func TestConfirmAmountMismatchLeavesOrderPending(t *testing.T) {
	l := seedLedger(t, map[string]int64{"alice": 50, "bob": 0})
	ctx := context.Background()

	orderID, _ := l.Reserve(ctx, "alice", 50)

	if err := l.Confirm(ctx, orderID, 49, "bob"); !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("expected amount mismatch, got %v", err)
	}
	if alice, _ := l.Balance(ctx, "alice"); alice != 0 {
		t.Fatalf("expected alice balance 0, got %d", alice)
	}
	if pending, _ := l.PendingOrders(ctx); pending != 1 {
		t.Fatalf("expected order still pending, got %d", pending)
	}

	// A retry with the correct amount still succeeds.
	if err := l.Confirm(ctx, orderID, 50, "bob"); err != nil {
		t.Fatalf("confirm after mismatch: %v", err)
	}
	if bob, _ := l.Balance(ctx, "bob"); bob != 50 {
		t.Fatalf("expected bob balance 50, got %d", bob)
	}
}

func TestConfirmUnknownDestinationLeavesOrderPending(t *testing.T) {
	l := seedLedger(t, map[string]int64{"alice": 50})
	ctx := context.Background()

	orderID, _ := l.Reserve(ctx, "alice", 20)

	if err := l.Confirm(ctx, orderID, 20, "ghost"); !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected wallet not found, got %v", err)
	}
	if pending, _ := l.PendingOrders(ctx); pending != 1 {
		t.Fatalf("expected order still pending, got %d", pending)
	}
	if total := totalValue(t, l); total != 50 {
		t.Fatalf("value not conserved, total=%d", total)
	}
}

func TestConfirmUnknownOrder(t *testing.T) {
	l := seedLedger(t, map[string]int64{"bob": 0})
	if err := l.Confirm(context.Background(), 42, 10, "bob"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
}

func TestBalanceUnknownWallet(t *testing.T) {
	l := seedLedger(t, nil)
	if _, err := l.Balance(context.Background(), "ghost"); !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected wallet not found, got %v", err)
	}
}

func TestConcurrentReservationsAllocateUniqueIDs(t *testing.T) {
	const workers = 50
	const amount = int64(10)

	l := seedLedger(t, map[string]int64{"alice": workers * amount})
	ctx := context.Background()

	ids := make([]int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			orderID, err := l.Reserve(ctx, "alice", amount)
			if err != nil {
				t.Errorf("reserve %d: %v", i, err)
				return
			}
			ids[i] = orderID
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, workers)
	for _, id := range ids {
		if id < 1 || id > workers {
			t.Fatalf("order id %d outside the monotonic sequence", id)
		}
		if seen[id] {
			t.Fatalf("duplicate order id %d", id)
		}
		seen[id] = true
	}

	if balance, _ := l.Balance(ctx, "alice"); balance != 0 {
		t.Fatalf("expected alice drained to 0, got %d", balance)
	}
	if total := totalValue(t, l); total != workers*amount {
		t.Fatalf("value not conserved under concurrency, total=%d", total)
	}
}

func TestConcurrentReservationsObserveEachOthersDebit(t *testing.T) {
	// 10 workers fight over funds that only cover 4 reservations.
	l := seedLedger(t, map[string]int64{"alice": 100})
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Reserve(ctx, "alice", 25)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrInsufficientFunds) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 4 {
		t.Fatalf("expected exactly 4 admitted reservations, got %d", succeeded)
	}
	if balance, _ := l.Balance(ctx, "alice"); balance != 0 {
		t.Fatalf("expected balance 0, got %d", balance)
	}
}

func TestSnapshotCopiesBalances(t *testing.T) {
	l := seedLedger(t, map[string]int64{"alice": 5, "bob": 7})
	snapshot, err := l.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot) != 2 || snapshot["alice"] != 5 || snapshot["bob"] != 7 {
		t.Fatalf("unexpected snapshot: %v", snapshot)
	}

	snapshot["alice"] = 999
	if balance, _ := l.Balance(context.Background(), "alice"); balance != 5 {
		t.Fatalf("snapshot aliases ledger state, balance=%d", balance)
	}
}
