package middleware

import (
	"crypto/subtle"
	"log"

	"github.com/gofiber/fiber/v2"
)

// gatewayIdentity trusts X-User-ID / X-User-Roles only when the request
// carries the shared gateway token in X-Service-Token.
func gatewayIdentity(c *fiber.Ctx, expected string) (Identity, bool) {
	if expected == "" {
		return Identity{}, false
	}
	got := c.Get("X-Service-Token")
	if got == "" {
		return Identity{}, false
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
		log.Printf("❌ [GATEWAY_AUTH] Invalid service token for %s (got prefix: %.4s...)", c.Path(), got)
		return Identity{}, false
	}
	userID := c.Get("X-User-ID")
	if userID == "" {
		log.Printf("❌ [GATEWAY_AUTH] X-User-ID missing on gateway request: %s", c.Path())
		return Identity{}, false
	}
	return Identity{
		UserID:   userID,
		Username: c.Get("X-User-Name"),
		Roles:    splitRoles(c.Get("X-User-Roles")),
	}, true
}
