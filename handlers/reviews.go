// handlers/reviews.go
package handlers

import (
	"errors"
	"strings"

	"game-catalog-sync/middleware"
	"game-catalog-sync/models"
	"game-catalog-sync/services"

	"github.com/gofiber/fiber/v2"
)

type reviewHandler struct {
	reviews *services.ReviewService
}

type reviewInput struct {
	GameID  int64  `json:"game_id"`
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

func (in reviewInput) validate() error {
	if in.Rating < 1 || in.Rating > 5 {
		return errors.New("Rating must be between 1 and 5")
	}
	return nil
}

type commentInput struct {
	Content string `json:"content"`
}

// SetupReviewRoutes exposes the review/comment cache. Review-scoped routes take the
// owning game as an optional ?game_id=; without it the cache resolves the game itself.
func SetupReviewRoutes(app *fiber.App, reviews *services.ReviewService, identity middleware.Identity) {
	h := &reviewHandler{reviews: reviews}
	requireUser := middleware.RequireIdentity(identity)

	app.Get("/games/:id/reviews", h.gameReviews)
	app.Get("/games/:id/user-review", requireUser, h.userReview)
	app.Post("/games/:id/reviews", requireUser, h.create)
	app.Delete("/games/:id/reviews/cache", h.clearGame)

	app.Delete("/reviews/cache", h.clearAll)
	app.Put("/reviews/:review_id", requireUser, h.update)
	app.Delete("/reviews/:review_id", requireUser, h.delete)
	app.Post("/reviews/:review_id/like", requireUser, h.toggleLike)

	app.Get("/reviews/:review_id/comments", h.comments)
	app.Post("/reviews/:review_id/comments", requireUser, h.addComment)
	app.Put("/reviews/:review_id/comments/:comment_id", requireUser, h.updateComment)
	app.Delete("/reviews/:review_id/comments/:comment_id", requireUser, h.deleteComment)
}

// gameReviews refetches unless ?cached=true. Fetch failures keep the previous list
// and are reported next to it.
func (h *reviewHandler) gameReviews(c *fiber.Ctx) error {
	gameID, err := int64Param(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if !c.QueryBool("cached") {
		h.reviews.FetchGameReviews(c.UserContext(), gameID)
	}

	list := h.reviews.GameReviews(gameID)
	if list == nil {
		list = []models.Review{}
	}
	resp := fiber.Map{"reviews": list}
	if msg := h.reviews.Snapshot().Error; msg != "" {
		resp["error"] = msg
	}
	return c.JSON(resp)
}

func (h *reviewHandler) userReview(c *fiber.Ctx) error {
	gameID, err := int64Param(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if !c.QueryBool("cached") {
		h.reviews.FetchUserReviewForGame(c.UserContext(), gameID)
	}

	review := h.reviews.UserReview(gameID)
	resp := fiber.Map{"has_reviewed": review != nil, "review": review}
	if msg := h.reviews.Snapshot().Error; msg != "" {
		resp["error"] = msg
	}
	return c.JSON(resp)
}

func (h *reviewHandler) create(c *fiber.Ctx) error {
	gameID, err := int64Param(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var input reviewInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := input.validate(); err != nil {
		return badRequest(c, err)
	}

	review, err := h.reviews.AddReview(c.UserContext(), gameID, input.Rating, input.Content)
	if err != nil {
		return remoteFailure(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *reviewHandler) update(c *fiber.Ctx) error {
	var input reviewInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if input.GameID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "game_id is required"})
	}
	if err := input.validate(); err != nil {
		return badRequest(c, err)
	}

	review, err := h.reviews.UpdateReview(c.UserContext(), c.Params("review_id"), input.GameID, input.Rating, input.Content)
	if err != nil {
		return remoteFailure(c, err)
	}
	return c.JSON(review)
}

// delete accepts an optional ?game_id=; without it the game is resolved from the user's reviews.
func (h *reviewHandler) delete(c *fiber.Ctx) error {
	gameID, err := optionalGameID(c)
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.reviews.DeleteReview(c.UserContext(), c.Params("review_id"), gameID); err != nil {
		return remoteFailure(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *reviewHandler) toggleLike(c *fiber.Ctx) error {
	gameID, err := optionalGameID(c)
	if err != nil {
		return badRequest(c, err)
	}
	reviewID := c.Params("review_id")
	if err := h.reviews.ToggleLike(c.UserContext(), reviewID, gameID); err != nil {
		return remoteFailure(c, err)
	}
	return c.JSON(h.findReview(gameID, reviewID))
}

func (h *reviewHandler) comments(c *fiber.Ctx) error {
	gameID, err := optionalGameID(c)
	if err != nil {
		return badRequest(c, err)
	}
	comments, err := h.reviews.FetchReviewComments(c.UserContext(), c.Params("review_id"), gameID)
	if err != nil {
		return remoteFailure(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments, "count": len(comments)})
}

func (h *reviewHandler) addComment(c *fiber.Ctx) error {
	gameID, err := optionalGameID(c)
	if err != nil {
		return badRequest(c, err)
	}
	content, err := parseCommentContent(c)
	if err != nil {
		return badRequest(c, err)
	}
	comment, err := h.reviews.AddComment(c.UserContext(), c.Params("review_id"), gameID, content)
	if err != nil {
		return remoteFailure(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *reviewHandler) updateComment(c *fiber.Ctx) error {
	gameID, err := optionalGameID(c)
	if err != nil {
		return badRequest(c, err)
	}
	content, err := parseCommentContent(c)
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.reviews.UpdateComment(c.UserContext(), c.Params("review_id"), gameID, c.Params("comment_id"), content); err != nil {
		return remoteFailure(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *reviewHandler) deleteComment(c *fiber.Ctx) error {
	gameID, err := optionalGameID(c)
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.reviews.DeleteComment(c.UserContext(), c.Params("review_id"), gameID, c.Params("comment_id")); err != nil {
		return remoteFailure(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *reviewHandler) clearGame(c *fiber.Ctx) error {
	gameID, err := int64Param(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	h.reviews.ClearGameReviews(gameID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *reviewHandler) clearAll(c *fiber.Ctx) error {
	h.reviews.ClearAllReviews()
	return c.SendStatus(fiber.StatusNoContent)
}

// findReview returns the cached copy after a local patch, or just the id when the
// review is not cached. A zero gameID searches every cached game.
func (h *reviewHandler) findReview(gameID int64, reviewID string) any {
	st := h.reviews.Snapshot()
	games := []int64{gameID}
	if gameID == 0 {
		games = games[:0]
		for id := range st.GameReviews {
			games = append(games, id)
		}
		for id := range st.UserReviews {
			games = append(games, id)
		}
	}
	for _, id := range games {
		for _, r := range st.GameReviews[id] {
			if r.ID == reviewID {
				return r
			}
		}
		if r := st.UserReviews[id]; r != nil && r.ID == reviewID {
			return r
		}
	}
	return fiber.Map{"id": reviewID}
}

func parseCommentContent(c *fiber.Ctx) (string, error) {
	var input commentInput
	if err := c.BodyParser(&input); err != nil {
		return "", errors.New("Invalid request body")
	}
	if strings.TrimSpace(input.Content) == "" {
		return "", errors.New("content is required")
	}
	return input.Content, nil
}
