package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lukasa-pay/lukasa/internal/ledger"
	"github.com/lukasa-pay/lukasa/internal/wire"
)

// ErrUnreachable indicates the bank could not be reached or answered outside
// the protocol. Distinct from every application-level rejection: the caller
// must treat ledger state as unknown.
var ErrUnreachable = errors.New("bank unreachable")

// Client talks to a remote bank service, decoding wire sentinels back into
// the ledger package's errors so callers never reason about signs.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a bank client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Balance fetches a wallet balance. Returns ledger.ErrWalletNotFound for an
// unknown wallet.
func (c *Client) Balance(ctx context.Context, walletID string) (int64, error) {
	var resp struct {
		Balance int64 `json:"balance"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/balance/"+walletID, nil, &resp); err != nil {
		return 0, err
	}
	if resp.Balance == wire.NotFound {
		return 0, ledger.ErrWalletNotFound
	}
	return resp.Balance, nil
}

// CreateOrder reserves amount from the wallet and returns the order id.
func (c *Client) CreateOrder(ctx context.Context, walletID string, amount int64) (int64, error) {
	body := map[string]any{"wallet_id": walletID, "amount": amount}
	var resp struct {
		Status int64 `json:"status"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/orders", body, &resp); err != nil {
		return 0, err
	}
	switch {
	case resp.Status > 0:
		return resp.Status, nil
	case resp.Status == wire.NotFound:
		return 0, ledger.ErrWalletNotFound
	case resp.Status == wire.InvalidBalance:
		return 0, ledger.ErrInsufficientFunds
	}
	return 0, fmt.Errorf("%w: unexpected order status %d", ErrUnreachable, resp.Status)
}

// Transfer confirms a pending order into the destination wallet.
func (c *Client) Transfer(ctx context.Context, orderID, amount int64, walletID string) error {
	body := map[string]any{"order_id": orderID, "confirmation_amount": amount, "wallet_id": walletID}
	var resp struct {
		Status int64 `json:"status"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/transfer", body, &resp); err != nil {
		return err
	}
	switch resp.Status {
	case wire.OK:
		return nil
	case wire.NotFound:
		return ledger.ErrOrderNotFound
	case wire.InvalidBalance:
		return ledger.ErrAmountMismatch
	case wire.InvalidWallet:
		return ledger.ErrWalletNotFound
	}
	return fmt.Errorf("%w: unexpected transfer status %d", ErrUnreachable, resp.Status)
}

// EndExecution asks the bank to stop and returns its pending-order count.
func (c *Client) EndExecution(ctx context.Context) (int64, error) {
	var resp struct {
		PendingOrders int64 `json:"pending_orders"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/end", map[string]any{}, &resp); err != nil {
		return 0, err
	}
	return resp.PendingOrders, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: http %d", ErrUnreachable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnreachable, err)
	}
	return nil
}
