// handlers/session.go
package handlers

import (
	"strings"

	"game-catalog-sync/services"

	"github.com/gofiber/fiber/v2"
)

// SetupSessionRoutes lets the sign-in flow hand over (or revoke) the user's token.
// Signing out drops the user-scoped review cache.
func SetupSessionRoutes(app *fiber.App, session *services.Session, reviews *services.ReviewService) {
	view := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"identified": session.Identified(),
			"user_id":    session.UserID(),
		})
	}

	app.Get("/session", view)

	app.Put("/session", func(c *fiber.Ctx) error {
		var input struct {
			Token  string `json:"token"`
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if strings.TrimSpace(input.Token) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "token is required"})
		}
		session.Set(input.Token, input.UserID)
		return view(c)
	})

	app.Delete("/session", func(c *fiber.Ctx) error {
		session.Clear()
		reviews.ClearAllReviews()
		return c.SendStatus(fiber.StatusNoContent)
	})
}
