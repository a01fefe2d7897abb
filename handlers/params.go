// handlers/params.go
package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"game-catalog-sync/models"
	"game-catalog-sync/services"

	"github.com/gofiber/fiber/v2"
)

func int64Param(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// optionalGameID reads ?game_id=; 0 when absent.
func optionalGameID(c *fiber.Ctx) (int64, error) {
	raw := c.Query("game_id")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, errors.New("invalid game_id")
	}
	return id, nil
}

func listQuery(c *fiber.Ctx, key string) []string {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// filterFromQuery builds a FilterSpec from comma separated query values.
func filterFromQuery(c *fiber.Ctx) (models.FilterSpec, models.SortKey, error) {
	spec := models.FilterSpec{
		Genres:             listQuery(c, "genres"),
		Themes:             listQuery(c, "themes"),
		Platforms:          listQuery(c, "platforms"),
		GameModes:          listQuery(c, "game_modes"),
		PlayerPerspectives: listQuery(c, "player_perspectives"),
	}
	if raw := c.Query("min_rating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 5 {
			return spec, "", errors.New("min_rating must be a number between 0 and 5")
		}
		spec.MinRating = v
	}
	sortBy := models.SortKey(c.Query("sort"))
	if !sortBy.Valid() {
		return spec, "", fmt.Errorf("unsupported sort %q", sortBy)
	}
	return spec, sortBy, nil
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

// remoteFailure answers with the remote's status when it has one, 502 otherwise.
func remoteFailure(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadGateway
	var re *services.RemoteError
	if errors.As(err, &re) && re.Status >= 400 {
		status = re.Status
	}
	return c.Status(status).JSON(fiber.Map{"error": services.ErrorMessage(err)})
}
