package bank

import (
	"errors"

	"github.com/lukasa-pay/lukasa/internal/ledger"
	"github.com/lukasa-pay/lukasa/internal/wire"
)

// ReserveStatus encodes a reservation outcome into the wire contract: the
// positive order id on success, a negative code otherwise. The second return
// is false for errors outside the protocol (backend failures).
func ReserveStatus(orderID int64, err error) (int64, bool) {
	switch {
	case err == nil:
		return orderID, true
	case errors.Is(err, ledger.ErrWalletNotFound):
		return wire.NotFound, true
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return wire.InvalidBalance, true
	}
	return 0, false
}

// TransferStatus encodes a confirmation outcome into the wire contract.
func TransferStatus(err error) (int64, bool) {
	switch {
	case err == nil:
		return wire.OK, true
	case errors.Is(err, ledger.ErrOrderNotFound):
		return wire.NotFound, true
	case errors.Is(err, ledger.ErrAmountMismatch):
		return wire.InvalidBalance, true
	case errors.Is(err, ledger.ErrWalletNotFound):
		return wire.InvalidWallet, true
	}
	return 0, false
}
