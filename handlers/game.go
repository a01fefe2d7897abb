// handlers/game.go
package handlers

import (
	"errors"

	"game-catalog-sync/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGameRoutes(app *fiber.App, catalog *services.CatalogService) {
	app.Delete("/games/cache", func(c *fiber.Ctx) error {
		catalog.Purge()
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Get("/games/:id", func(c *fiber.Ctx) error {
		gameID, err := int64Param(c, "id")
		if err != nil {
			return badRequest(c, err)
		}
		if c.QueryBool("refresh") {
			catalog.Invalidate(gameID)
		}

		game, err := catalog.GetGameDetails(c.UserContext(), gameID)
		if err != nil {
			if errors.Is(err, services.ErrInvalidGameRecord) {
				return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
			}
			return remoteFailure(c, err)
		}
		return c.JSON(game)
	})
}
