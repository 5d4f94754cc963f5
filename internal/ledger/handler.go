package ledger

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/blockrepublic/subledger/internal/asset"
	"github.com/blockrepublic/subledger/internal/authz"
)

// Handler exposes the ledger's HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a ledger HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type openRequest struct {
	Owner string `json:"owner"`
	Payer string `json:"payer"`
}

type withdrawRequest struct {
	Owner    string `json:"owner"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

type notifyRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

type accountResponse struct {
	Owner   string `json:"owner"`
	Balance string `json:"balance"`
	Payer   string `json:"payer"`
}

// Open creates a sub-account for the requested owner. The payer defaults to
// the owner and must match the authenticated principal.
func (h *Handler) Open(c *fiber.Ctx) error {
	var req openRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Payer == "" {
		req.Payer = req.Owner
	}
	rec, err := h.service.Open(c.UserContext(), req.Owner, req.Payer)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(accountResponse{
		Owner:   rec.Owner,
		Balance: rec.Funds.String(),
		Payer:   rec.Payer,
	})
}

// Withdraw debits the owner's sub-account and pays the quantity out.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req withdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	quantity, err := asset.Parse(req.Quantity)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.service.Withdraw(c.UserContext(), req.Owner, quantity, req.Memo)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(accountResponse{
		Owner:   rec.Owner,
		Balance: rec.Funds.String(),
		Payer:   rec.Payer,
	})
}

// Close deletes the owner's sub-account once its balance reaches zero.
func (h *Handler) Close(c *fiber.Ctx) error {
	owner := c.Params("owner")
	if err := h.service.Close(c.UserContext(), owner); err != nil {
		return mapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Balance reports the owner's current holdings.
func (h *Handler) Balance(c *fiber.Ctx) error {
	owner := c.Params("owner")
	rec, err := h.service.Balance(c.UserContext(), owner)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(accountResponse{
		Owner:   rec.Owner,
		Balance: rec.Funds.String(),
		Payer:   rec.Payer,
	})
}

// Notify is the inbound callback from the asset transfer service, delivered
// through the trusted issuer's forwarding shim. Transfers not addressed to
// the ledger are acknowledged and dropped.
func (h *Handler) Notify(c *fiber.Ctx) error {
	var req notifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	quantity, err := asset.Parse(req.Quantity)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.OnIncomingTransfer(c.UserContext(), req.From, req.To, quantity, req.Memo); err != nil {
		return mapError(err)
	}
	return c.SendStatus(http.StatusAccepted)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, authz.ErrUnauthorized):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNoAccount):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAccountExists), errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrNonZeroBalance):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrMemoTooLong), errors.Is(err, asset.ErrInvalid):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
