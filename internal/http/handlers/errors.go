package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"partsdesk/internal/domain"
	applog "partsdesk/internal/log"
)

// respondErr maps domain errors to HTTP responses. Business-rule failures get
// their own message; anything else is a generic 500 so internals never leak.
func respondErr(c *fiber.Ctx, action string, err error) error {
	if errors.Is(err, domain.ErrOrderNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
	}
	if domain.IsClientError(err) {
		applog.Security(c, action, map[string]any{"error": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
}
