// Package store implements the storefront: a fixed catalog price, a seller
// wallet at the bank, and sales settled through the bank's
// reserve-then-confirm protocol.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lukasa-pay/lukasa/internal/lifecycle"
)

// Gateway is the store's view of the bank. Implementations return
// ledger package errors for protocol rejections and bank.ErrUnreachable
// wrapped errors for transport failures.
type Gateway interface {
	Balance(ctx context.Context, walletID string) (int64, error)
	CreateOrder(ctx context.Context, walletID string, amount int64) (int64, error)
	Transfer(ctx context.Context, orderID, amount int64, walletID string) error
	EndExecution(ctx context.Context) (int64, error)
}

// Service orchestrates purchases against the bank. The seller balance is a
// local running total of confirmed sale proceeds, separate from the seller
// wallet's own ledger balance.
type Service struct {
	price        int64
	sellerWallet string
	bank         Gateway
	logger       *slog.Logger
	life         *lifecycle.Lifecycle

	mu            sync.Mutex
	sellerBalance int64
}

// NewService builds the storefront. It establishes the initial seller
// balance from the bank; if the bank is unreachable or the seller wallet
// does not exist, the store must not start serving, so this fails.
func NewService(ctx context.Context, price int64, sellerWallet string, bank Gateway, logger *slog.Logger) (*Service, error) {
	if price <= 0 {
		return nil, fmt.Errorf("price must be positive, got %d", price)
	}
	if sellerWallet == "" {
		return nil, fmt.Errorf("seller wallet is required")
	}

	balance, err := bank.Balance(ctx, sellerWallet)
	if err != nil {
		return nil, fmt.Errorf("establish seller balance for %s: %w", sellerWallet, err)
	}

	return &Service{
		price:         price,
		sellerWallet:  sellerWallet,
		bank:          bank,
		logger:        logger,
		life:          lifecycle.New(),
		sellerBalance: balance,
	}, nil
}

// Price returns the fixed catalog price.
func (s *Service) Price() int64 {
	return s.price
}

// SellerBalance returns the locally tracked seller balance.
func (s *Service) SellerBalance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sellerBalance
}

// Sale confirms an already-reserved order into the seller wallet and returns
// the amount received. On any failure nothing is received and, if the order
// existed, it stays pending at the bank.
func (s *Service) Sale(ctx context.Context, orderID int64) (int64, error) {
	if err := s.bank.Transfer(ctx, orderID, s.price, s.sellerWallet); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.sellerBalance += s.price
	s.mu.Unlock()

	return s.price, nil
}

// Purchase reserves the price from the buyer wallet and, only if the
// reservation yields an order, confirms it into the seller wallet. There is
// no compensating release: a reservation whose confirmation fails is left
// stranded as a pending order at the bank.
func (s *Service) Purchase(ctx context.Context, buyerWallet string) (orderID, received int64, err error) {
	orderID, err = s.bank.CreateOrder(ctx, buyerWallet, s.price)
	if err != nil {
		return 0, 0, err
	}

	received, err = s.Sale(ctx, orderID)
	if err != nil {
		s.logger.Warn("confirmation failed after reservation, order stranded",
			"order_id", orderID, "buyer", buyerWallet, "error", err)
		return orderID, 0, err
	}
	return orderID, received, nil
}

// EndExecution asks the bank to stop, then stops the store. Returns the
// local seller balance and the bank's pending-order count, or bankDown=true
// when the bank call failed.
func (s *Service) EndExecution(ctx context.Context) (sellerBalance, bankPending int64, bankDown bool) {
	pending, err := s.bank.EndExecution(ctx)
	if err != nil {
		s.logger.Warn("bank end execution failed", "error", err)
		bankDown = true
	} else {
		bankPending = pending
	}

	s.life.Stop()
	return s.SellerBalance(), bankPending, bankDown
}

// Done is closed once EndExecution has been served.
func (s *Service) Done() <-chan struct{} {
	return s.life.Done()
}
