package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/blockrepublic/subledger/internal/ledger"
)

// RegisterLedgerRoutes wires the sub-account endpoints.
func RegisterLedgerRoutes(r fiber.Router, h *ledger.Handler) {
	r.Post("/accounts", h.Open)
	r.Get("/accounts/:owner/balance", h.Balance)
	r.Delete("/accounts/:owner", h.Close)
	r.Post("/withdrawals", h.Withdraw)
}
