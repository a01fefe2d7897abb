// middleware/local_auth.go
package middleware

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LocalAPIAuth validates the Bearer token callers of the local API must present.
// An empty expected token leaves the API open, which is only meant for loopback use.
func LocalAPIAuth(expectedToken string) fiber.Handler {
	if expectedToken == "" {
		log.Println("⚠️  [LOCAL_AUTH] LOCAL_API_TOKEN not set, local API is unauthenticated")
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			log.Printf("🚫 [LOCAL_AUTH] Missing Authorization header for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "local API token missing",
			})
		}

		// raw tokens are accepted too
		token := strings.TrimPrefix(authHeader, "Bearer ")

		if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
			log.Printf("❌ [LOCAL_AUTH] Invalid token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid local API token",
			})
		}

		return c.Next()
	}
}
