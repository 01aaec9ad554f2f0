package ledger

import (
	"context"
	"errors"
)

var (
	// ErrWalletNotFound occurs when a referenced wallet does not exist.
	// Wallets are created only by the bulk load at startup, never by a request.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInsufficientFunds occurs when a reservation exceeds the source
	// wallet's current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrOrderNotFound occurs when a transfer references an order id that is
	// not currently pending, including an order that was already confirmed.
	ErrOrderNotFound = errors.New("payment order not found")

	// ErrAmountMismatch occurs when the confirmation amount differs from the
	// amount reserved under the order. The order stays pending.
	ErrAmountMismatch = errors.New("confirmation amount mismatch")
)

// Ledger defines the contract implemented by ledger backends (in-memory,
// Postgres). Every mutating operation is an atomic check-then-mutate: on any
// error the ledger state is left untouched, so the sum of wallet balances
// plus pending order amounts never changes after the initial load.
type Ledger interface {
	// Balance returns the current balance of a wallet.
	Balance(ctx context.Context, walletID string) (int64, error)

	// Reserve debits the wallet by amount and records a pending payment
	// order for the same amount, returning the freshly allocated order id.
	// Order ids are unique and strictly increasing for the ledger lifetime.
	Reserve(ctx context.Context, walletID string, amount int64) (int64, error)

	// Confirm credits the destination wallet with the confirmed amount and
	// retires the order. The amount must exactly match the reserved amount,
	// and the destination wallet must already exist.
	Confirm(ctx context.Context, orderID, amount int64, walletID string) error

	// PendingOrders reports how many orders are reserved but not confirmed.
	PendingOrders(ctx context.Context) (int64, error)

	// LoadWallet installs a wallet with the given balance. Used by the bulk
	// initial-state load; overwrites any previous balance for the wallet.
	LoadWallet(ctx context.Context, walletID string, balance int64) error

	// Snapshot returns a copy of all wallet balances.
	Snapshot(ctx context.Context) (map[string]int64, error)
}
