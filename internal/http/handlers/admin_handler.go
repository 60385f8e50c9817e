package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "partsdesk/internal/log"
	"partsdesk/internal/repos"
	"partsdesk/internal/services"
	"partsdesk/internal/validate"
)

type AdminHandler struct {
	Lifecycle *services.LifecycleService
	OrderRepo *repos.OrderRepo
	Parts     *repos.PartRepo
}

// ListOrders handles GET /admin/orders.
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.OrderRepo.ListLatest(c.QueryInt("limit", 100))
	if err != nil {
		return respondErr(c, "admin.orders.list.fail", err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// UpdateStatus handles PATCH /orders/:id.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil || body.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "missing status"})
	}
	id := c.Params("id")
	if err := h.Lifecycle.UpdateStatus(id, body.Status); err != nil {
		return respondErr(c, "admin.orders.status.fail", err)
	}
	applog.Audit(c, "admin.orders.status", map[string]any{"order_id": id, "status": body.Status})
	return c.JSON(fiber.Map{"message": "status updated"})
}

// AssignTracking handles PATCH /orders/:id/tracking.
func (h *AdminHandler) AssignTracking(c *fiber.Ctx) error {
	var body struct {
		TrackingNumber string `json:"trackingNumber"`
		CourierName    string `json:"courierName"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "malformed request body"})
	}
	id := c.Params("id")
	if err := h.Lifecycle.AssignTracking(id, body.TrackingNumber, body.CourierName); err != nil {
		return respondErr(c, "admin.orders.tracking.fail", err)
	}
	applog.Audit(c, "admin.orders.tracking", map[string]any{
		"order_id": id, "tracking": body.TrackingNumber, "courier": body.CourierName,
	})
	return c.JSON(fiber.Map{"message": "tracking assigned"})
}

// ConfirmPayment handles POST /orders/:id/confirm-payment.
func (h *AdminHandler) ConfirmPayment(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Lifecycle.ConfirmPayment(id); err != nil {
		return respondErr(c, "admin.orders.confirm.fail", err)
	}
	applog.Audit(c, "admin.orders.confirm", map[string]any{"order_id": id})
	return c.JSON(fiber.Map{"message": "payment confirmed"})
}

// ToggleArchive handles PATCH /orders/:id/archive.
func (h *AdminHandler) ToggleArchive(c *fiber.Ctx) error {
	id := c.Params("id")
	archived, err := h.Lifecycle.ToggleArchive(id)
	if err != nil {
		return respondErr(c, "admin.orders.archive.fail", err)
	}
	applog.Audit(c, "admin.orders.archive", map[string]any{"order_id": id, "archived": archived})
	return c.JSON(fiber.Map{"message": "archive toggled", "isArchived": archived})
}

// Delete handles DELETE /orders/:id.
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Lifecycle.Delete(id); err != nil {
		return respondErr(c, "admin.orders.delete.fail", err)
	}
	applog.Audit(c, "admin.orders.delete", map[string]any{"order_id": id})
	return c.JSON(fiber.Map{"message": "order deleted"})
}

// ListParts handles GET /admin/parts.
func (h *AdminHandler) ListParts(c *fiber.Ctx) error {
	parts, err := h.Parts.ListAll()
	if err != nil {
		return respondErr(c, "admin.parts.list.fail", err)
	}
	return c.JSON(fiber.Map{"parts": parts})
}

// AdjustStock handles POST /admin/parts/:id/stock. Deductions use the same
// conditional guard as order reservations.
func (h *AdminHandler) AdjustStock(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid part id"})
	}
	var body struct {
		Delta int `json:"delta"`
	}
	if err := c.BodyParser(&body); err != nil || body.Delta == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "delta must be a non-zero integer"})
	}

	var err error
	if body.Delta > 0 {
		err = h.Parts.AddStock(pid, body.Delta)
	} else {
		err = h.Parts.DeductStock(pid, -body.Delta)
	}
	if err != nil {
		return respondErr(c, "admin.parts.adjust.fail", err)
	}
	applog.Audit(c, "admin.parts.adjust", map[string]any{"part": pid, "delta": body.Delta})
	return c.JSON(fiber.Map{"message": "stock adjusted"})
}
