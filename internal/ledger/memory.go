package ledger

import (
	"context"
	"sync"
)

// memoryLedger keeps all state behind a single mutex. Balance checks and the
// debits/credits that follow them happen inside one critical section, so
// concurrent reservations against the same wallet always observe each
// other's debit.
type memoryLedger struct {
	mu          sync.RWMutex
	wallets     map[string]int64
	orders      map[int64]int64
	nextOrderID int64
}

// NewInMemory creates a concurrency-safe in-memory ledger. Order ids start
// at 1 and are handed out pre-increment under the same lock as the
// reservation itself.
func NewInMemory() Ledger {
	return &memoryLedger{
		wallets:     make(map[string]int64),
		orders:      make(map[int64]int64),
		nextOrderID: 1,
	}
}

func (l *memoryLedger) Balance(_ context.Context, walletID string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	balance, ok := l.wallets[walletID]
	if !ok {
		return 0, ErrWalletNotFound
	}
	return balance, nil
}

func (l *memoryLedger) Reserve(_ context.Context, walletID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInsufficientFunds
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.wallets[walletID]
	if !ok {
		return 0, ErrWalletNotFound
	}
	if balance < amount {
		return 0, ErrInsufficientFunds
	}

	orderID := l.nextOrderID
	l.nextOrderID++

	l.orders[orderID] = amount
	l.wallets[walletID] = balance - amount

	return orderID, nil
}

func (l *memoryLedger) Confirm(_ context.Context, orderID, amount int64, walletID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	reserved, ok := l.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	if reserved != amount {
		return ErrAmountMismatch
	}
	if _, ok := l.wallets[walletID]; !ok {
		return ErrWalletNotFound
	}

	l.wallets[walletID] += amount
	delete(l.orders, orderID)

	return nil
}

func (l *memoryLedger) PendingOrders(_ context.Context) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.orders)), nil
}

func (l *memoryLedger) LoadWallet(_ context.Context, walletID string, balance int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.wallets[walletID] = balance
	return nil
}

func (l *memoryLedger) Snapshot(_ context.Context) (map[string]int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	wallets := make(map[string]int64, len(l.wallets))
	for id, balance := range l.wallets {
		wallets[id] = balance
	}
	return wallets, nil
}
