package handlers

import (
	"github.com/gofiber/fiber/v2"

	"partsdesk/internal/services"
	"partsdesk/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// Check handles GET /api/v1/availability?partId=...
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	partID, ok := validate.ID(c.Query("partId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid partId"})
	}

	avail, err := h.Inv.CheckAvailability(partID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not check availability"})
	}
	return c.JSON(avail)
}
