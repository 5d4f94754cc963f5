package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

const issuerTokenHeader = "X-Issuer-Token"

// IssuerToken guards the transfer-notification shim: only the trusted asset
// issuer, holding the shared token, may report transfers.
func IssuerToken(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		presented := c.Get(issuerTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			return fiber.NewError(http.StatusUnauthorized, "unknown issuer")
		}
		return c.Next()
	}
}
