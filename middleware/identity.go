// middleware/identity.go
package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// Identity reports whether a user is signed in for this client.
type Identity interface {
	Identified() bool
}

// RequireIdentity rejects user-scoped mutations while nobody is signed in.
// A pointer identity must tolerate a nil receiver, as services.Session does.
func RequireIdentity(identity Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identity == nil || !identity.Identified() {
			log.Printf("❌ [USER_CTX] no signed-in user for %s %s", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "sign in required",
			})
		}
		return c.Next()
	}
}
