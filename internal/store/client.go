package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrUnreachable indicates the store could not be reached.
var ErrUnreachable = errors.New("store unreachable")

// SaleResult is the wire-shaped outcome of a sale or purchase. Status uses
// the raw sentinel codes because the interactive client prints them as-is.
type SaleResult struct {
	Status         int64 `json:"status"`
	AmountReceived int64 `json:"amount_received"`
	OrderID        int64 `json:"order_id"`
}

// EndResult is the wire-shaped outcome of ending the store's execution.
type EndResult struct {
	SellerBalance    int64 `json:"seller_balance"`
	BankServerStatus int64 `json:"bank_server_status"`
}

// Client talks to a remote store service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a store client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Price fetches the fixed catalog price.
func (c *Client) Price(ctx context.Context) (int64, error) {
	var resp struct {
		Price int64 `json:"price"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/price", nil, "", &resp); err != nil {
		return 0, err
	}
	return resp.Price, nil
}

// Sale asks the store to settle an already-reserved order. The idempotency
// key lets the store replay the response if the request is retried.
func (c *Client) Sale(ctx context.Context, orderID int64, idempotencyKey string) (SaleResult, error) {
	var resp SaleResult
	body := map[string]any{"order_id": orderID}
	if err := c.do(ctx, http.MethodPost, "/v1/sale", body, idempotencyKey, &resp); err != nil {
		return SaleResult{}, err
	}
	return resp, nil
}

// Purchase asks the store to reserve and settle a purchase for the buyer.
func (c *Client) Purchase(ctx context.Context, buyerWallet, idempotencyKey string) (SaleResult, error) {
	var resp SaleResult
	body := map[string]any{"wallet_id": buyerWallet}
	if err := c.do(ctx, http.MethodPost, "/v1/purchase", body, idempotencyKey, &resp); err != nil {
		return SaleResult{}, err
	}
	return resp, nil
}

// EndExecution asks the store to stop, which in turn stops the bank.
func (c *Client) EndExecution(ctx context.Context) (EndResult, error) {
	var resp EndResult
	if err := c.do(ctx, http.MethodPost, "/v1/end", map[string]any{}, "", &resp); err != nil {
		return EndResult{}, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, idempotencyKey string, out any) error {
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
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
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
