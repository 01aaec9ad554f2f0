// Package bank hosts the wallet ledger behind the settlement protocol's
// bank API: balance lookup, payment-order reservation, confirmation
// transfer and end-of-execution.
package bank

import (
	"context"
	"log/slog"

	"github.com/lukasa-pay/lukasa/internal/ledger"
	"github.com/lukasa-pay/lukasa/internal/lifecycle"
)

// Service exposes ledger operations and owns the bank's lifecycle.
type Service struct {
	ledger ledger.Ledger
	logger *slog.Logger
	life   *lifecycle.Lifecycle
}

// NewService builds a bank service over the given ledger backend.
func NewService(l ledger.Ledger, logger *slog.Logger) *Service {
	return &Service{ledger: l, logger: logger, life: lifecycle.New()}
}

// Balance returns the current balance of a wallet.
func (s *Service) Balance(ctx context.Context, walletID string) (int64, error) {
	return s.ledger.Balance(ctx, walletID)
}

// CreateOrder reserves amount from the wallet and returns the order id.
func (s *Service) CreateOrder(ctx context.Context, walletID string, amount int64) (int64, error) {
	return s.ledger.Reserve(ctx, walletID, amount)
}

// Transfer confirms a pending order into the destination wallet.
func (s *Service) Transfer(ctx context.Context, orderID, amount int64, walletID string) error {
	return s.ledger.Confirm(ctx, orderID, amount, walletID)
}

// EndExecution reports the number of still-pending orders, logs the final
// wallet balances, and signals the run loop to stop. Pending orders are
// reserved-but-stranded funds: a diagnostic, not an error.
func (s *Service) EndExecution(ctx context.Context) (int64, error) {
	pending, err := s.ledger.PendingOrders(ctx)
	if err != nil {
		return 0, err
	}

	if wallets, err := s.ledger.Snapshot(ctx); err != nil {
		s.logger.Warn("final balance snapshot failed", "error", err)
	} else {
		for walletID, balance := range wallets {
			s.logger.Info("final balance", "wallet", walletID, "balance", balance)
		}
	}

	s.life.Stop()
	return pending, nil
}

// Done is closed once EndExecution has been served.
func (s *Service) Done() <-chan struct{} {
	return s.life.Done()
}
