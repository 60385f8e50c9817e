package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "partsdesk/internal/log"
	"partsdesk/internal/services"
)

// RequireAdmin guards lifecycle and inventory mutations behind a staff
// session with the ADMIN role.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "login required"})
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil || u.Role != "ADMIN" {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": sid})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "access denied"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}
