package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "partsdesk/internal/log"
	"partsdesk/internal/repos"
	"partsdesk/internal/services"
)

type OrderHandler struct {
	Order *services.OrderService
	Repo  *repos.OrderRepo
}

// Place handles POST /orders.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req services.PlaceRequest
	if err := c.BodyParser(&req); err != nil {
		applog.Security(c, "order.place.badbody", map[string]any{"error": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "malformed request body"})
	}

	res, err := h.Order.Place(req)
	if err != nil {
		return respondErr(c, "order.place.fail", err)
	}

	applog.Audit(c, "order.place", map[string]any{
		"order_id": res.OrderID,
		"status":   string(res.Status),
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":              res.OrderID,
		"status":          res.Status,
		"requiresPayment": res.RequiresPayment,
	})
}

// View handles GET /orders/:id.
func (h *OrderHandler) View(c *fiber.Ctx) error {
	o, items, err := h.Repo.Get(c.Params("id"))
	if err != nil {
		return respondErr(c, "order.view.fail", err)
	}

	lines := make([]fiber.Map, 0, len(items))
	for _, it := range items {
		lines = append(lines, fiber.Map{
			"partId":    it.PartID,
			"name":      it.PartName,
			"qty":       it.Qty,
			"unitPrice": it.UnitPrice,
			"lineTotal": it.LineTotal(),
		})
	}
	return c.JSON(fiber.Map{
		"id":             o.ID,
		"customerName":   o.CustomerName,
		"customerEmail":  o.CustomerEmail,
		"customerPhone":  o.CustomerPhone,
		"items":          lines,
		"subtotal":       o.Subtotal,
		"shippingFee":    o.ShippingFee,
		"total":          o.Total,
		"paymentMethod":  o.PaymentMethod,
		"deliveryMethod": o.DeliveryMethod,
		"status":         o.Status,
		"trackingNumber": o.TrackingNumber.String,
		"courierName":    o.CourierName.String,
		"isArchived":     o.IsArchived,
		"createdAt":      o.CreatedAt,
	})
}
