package middleware

import (
	"airledger-backend/internal/domain"
	"airledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// IdentityHeader carries the signer identity asserted by the execution substrate.
const IdentityHeader = "X-Caller-Identity"

const identityLocal = "caller_identity"

// RequireIdentity rejects requests without a well-formed caller identity and
// stores it for handlers. Signatures are not re-verified here.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(IdentityHeader)
		if raw == "" {
			return response.Unauthorized(c, "Missing "+IdentityHeader+" header")
		}
		id, err := domain.ParseIdentity(raw)
		if err != nil {
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		}
		c.Locals(identityLocal, id)
		return c.Next()
	}
}

// GetIdentity returns the caller identity set by RequireIdentity (zero if absent).
func GetIdentity(c *fiber.Ctx) domain.Identity {
	id, _ := c.Locals(identityLocal).(domain.Identity)
	return id
}
