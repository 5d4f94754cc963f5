package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/blockrepublic/subledger/internal/authz"
)

// Principal returns a middleware that validates the bearer token and stamps
// the principal it acts for onto the request context, where the
// authorization oracle picks it up.
func Principal(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(header[len("Bearer "):])

		principal, err := authz.ParseToken(tokenStr, jwtSecret)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals("principal", principal)
		c.SetUserContext(authz.WithPrincipal(c.UserContext(), principal))
		return c.Next()
	}
}
