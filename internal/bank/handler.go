package bank

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lukasa-pay/lukasa/internal/ledger"
	"github.com/lukasa-pay/lukasa/internal/wire"
)

// Handler exposes the bank service over HTTP. Application-level failures
// always travel as status codes inside a 200 response, never as transport
// faults; only backend breakage surfaces as a 5xx.
type Handler struct {
	service *Service
}

// NewHandler constructs a bank handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the bank endpoints.
func RegisterRoutes(r fiber.Router, h *Handler) {
	r.Get("/v1/balance/:wallet_id", h.Balance)
	r.Post("/v1/orders", h.CreateOrder)
	r.Post("/v1/transfer", h.Transfer)
	r.Post("/v1/end", h.EndExecution)
}

type orderRequest struct {
	WalletID string `json:"wallet_id"`
	Amount   int64  `json:"amount"`
}

type transferRequest struct {
	OrderID            int64  `json:"order_id"`
	ConfirmationAmount int64  `json:"confirmation_amount"`
	WalletID           string `json:"wallet_id"`
}

// Balance returns a wallet balance, or the not-found sentinel for an
// unknown wallet.
func (h *Handler) Balance(c *fiber.Ctx) error {
	balance, err := h.service.Balance(c.UserContext(), c.Params("wallet_id"))
	if err != nil {
		if !errors.Is(err, ledger.ErrWalletNotFound) {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		balance = wire.NotFound
	}
	return c.JSON(fiber.Map{"balance": balance})
}

// CreateOrder reserves funds and reports the order id or a failure code.
func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	orderID, err := h.service.CreateOrder(c.UserContext(), req.WalletID, req.Amount)
	status, ok := ReserveStatus(orderID, err)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"status": status})
}

// Transfer confirms a pending order into the destination wallet.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err := h.service.Transfer(c.UserContext(), req.OrderID, req.ConfirmationAmount, req.WalletID)
	status, ok := TransferStatus(err)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"status": status})
}

// EndExecution reports the pending-order count and stops the bank.
func (h *Handler) EndExecution(c *fiber.Ctx) error {
	pending, err := h.service.EndExecution(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"pending_orders": pending})
}
