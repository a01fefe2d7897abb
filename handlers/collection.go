// handlers/collection.go
package handlers

import (
	"game-catalog-sync/middleware"
	"game-catalog-sync/models"
	"game-catalog-sync/services"

	"github.com/gofiber/fiber/v2"
)

type collectionHandler struct {
	collection *services.CollectionService
}

// SetupCollectionRoutes exposes the collection cache. Mutations answer with the
// resulting snapshot; a remote failure shows up in its "error" field, never as an HTTP error.
func SetupCollectionRoutes(app *fiber.App, collection *services.CollectionService, identity middleware.Identity) {
	h := &collectionHandler{collection: collection}
	requireUser := middleware.RequireIdentity(identity)

	app.Get("/collection", h.snapshot)
	app.Get("/collection/games", h.query)
	app.Get("/collection/:id/status", h.status)

	app.Post("/collection/refresh", requireUser, h.refresh)
	app.Post("/collection", requireUser, h.add)
	app.Patch("/collection/:id", requireUser, h.updateStatus)
	app.Delete("/collection/:id", requireUser, h.remove)
}

func (h *collectionHandler) snapshot(c *fiber.Ctx) error {
	return c.JSON(h.collection.Snapshot())
}

func (h *collectionHandler) refresh(c *fiber.Ctx) error {
	h.collection.FetchCollection(c.UserContext())
	return c.JSON(h.collection.Snapshot())
}

func (h *collectionHandler) add(c *fiber.Ctx) error {
	var input struct {
		GameID int64  `json:"game_id"`
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if input.GameID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "game_id is required"})
	}
	status, err := models.ParseStatus(input.Status)
	if err != nil {
		return badRequest(c, err)
	}

	h.collection.AddGame(c.UserContext(), input.GameID, status)
	return c.JSON(h.collection.Snapshot())
}

func (h *collectionHandler) updateStatus(c *fiber.Ctx) error {
	gameID, err := int64Param(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	status, err := models.ParseStatus(input.Status)
	if err != nil {
		return badRequest(c, err)
	}

	h.collection.UpdateStatus(c.UserContext(), gameID, status)
	return c.JSON(h.collection.Snapshot())
}

func (h *collectionHandler) remove(c *fiber.Ctx) error {
	gameID, err := int64Param(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	h.collection.RemoveGame(c.UserContext(), gameID)
	return c.JSON(h.collection.Snapshot())
}

func (h *collectionHandler) status(c *fiber.Ctx) error {
	gameID, err := int64Param(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	status, ok := h.collection.GetGameStatus(gameID)
	return c.JSON(fiber.Map{
		"game_id":       gameID,
		"in_collection": ok,
		"status":        status,
		"loading":       h.collection.IsGameLoading(gameID),
	})
}

// query filters and sorts the cached collection: ?status=&genres=a,b&platforms=&min_rating=&sort=-rating
func (h *collectionHandler) query(c *fiber.Ctx) error {
	var status models.Status
	if raw := c.Query("status"); raw != "" {
		s, err := models.ParseStatus(raw)
		if err != nil {
			return badRequest(c, err)
		}
		status = s
	}
	spec, sortBy, err := filterFromQuery(c)
	if err != nil {
		return badRequest(c, err)
	}

	games := h.collection.Query(status, spec, sortBy)
	return c.JSON(fiber.Map{
		"games": games,
		"count": len(games),
	})
}
