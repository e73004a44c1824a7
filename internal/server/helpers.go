package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"moim/internal/models"
)

// paramID parses a positive numeric route parameter. On failure it writes
// the 400 response and returns ok=false.
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(name)))
		return 0, false
	}
	return uint(id), true
}

func humanizeParam(name string) string {
	switch name {
	case "id":
		return "ID"
	case "commentId":
		return "comment ID"
	case "attachmentId":
		return "attachment ID"
	default:
		return name
	}
}

// queryDate parses an optional yyyy-mm-dd query parameter.
func queryDate(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, models.NewValidationError("Invalid " + name + " date, expected YYYY-MM-DD")
	}
	return &t, nil
}
