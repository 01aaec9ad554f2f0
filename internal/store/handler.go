package store

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lukasa-pay/lukasa/internal/bank"
	"github.com/lukasa-pay/lukasa/internal/ledger"
	"github.com/lukasa-pay/lukasa/internal/wire"
)

// Handler exposes the storefront over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a store handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the store endpoints.
func RegisterRoutes(r fiber.Router, h *Handler) {
	r.Get("/v1/price", h.Price)
	r.Post("/v1/sale", h.Sale)
	r.Post("/v1/purchase", h.Purchase)
	r.Post("/v1/end", h.EndExecution)
}

type saleRequest struct {
	OrderID int64 `json:"order_id"`
}

type purchaseRequest struct {
	WalletID string `json:"wallet_id"`
}

// Price returns the fixed catalog price.
func (h *Handler) Price(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"price": h.service.Price()})
}

// Sale confirms an already-reserved order into the seller wallet.
func (h *Handler) Sale(c *fiber.Ctx) error {
	var req saleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	received, err := h.service.Sale(c.UserContext(), req.OrderID)
	status, ok := saleStatus(err)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"status": status, "amount_received": received})
}

// Purchase reserves the price from the buyer wallet and confirms the sale.
func (h *Handler) Purchase(c *fiber.Ctx) error {
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	orderID, received, err := h.service.Purchase(c.UserContext(), req.WalletID)
	status, ok := purchaseStatus(orderID, err)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"status": status, "amount_received": received, "order_id": orderID})
}

// EndExecution stops the bank and then the store, reporting the seller
// balance and the bank's pending-order count.
func (h *Handler) EndExecution(c *fiber.Ctx) error {
	sellerBalance, bankPending, bankDown := h.service.EndExecution(c.UserContext())
	bankStatus := bankPending
	if bankDown {
		bankStatus = wire.NotFound
	}
	return c.JSON(fiber.Map{"seller_balance": sellerBalance, "bank_server_status": bankStatus})
}

// saleStatus encodes a sale or purchase outcome into the wire contract.
// Reservation and confirmation rejections share the code space; a transport
// failure toward the bank maps to the distinguished unreachable code.
func saleStatus(err error) (int64, bool) {
	switch {
	case err == nil:
		return wire.OK, true
	case errors.Is(err, bank.ErrUnreachable):
		return wire.Unreachable, true
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return wire.InvalidBalance, true
	}
	return bank.TransferStatus(err)
}

// purchaseStatus encodes a purchase outcome. An orderID of zero means the
// reservation itself failed, where an unknown buyer wallet is reported as
// not-found rather than as the transfer's invalid-destination code.
func purchaseStatus(orderID int64, err error) (int64, bool) {
	if err == nil {
		return wire.OK, true
	}
	if orderID == 0 && errors.Is(err, ledger.ErrWalletNotFound) {
		return wire.NotFound, true
	}
	return saleStatus(err)
}
