package server

import (
	"strconv"

	"devlink/internal/models"

	"github.com/gofiber/fiber/v2"
)

// currentUserID returns the authenticated account id set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// parseID parses a numeric route parameter.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + param + " parameter")
	}
	return uint(id), nil
}
