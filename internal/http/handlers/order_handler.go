package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"shinejewelry/internal/domain"
	applog "shinejewelry/internal/log"
	"shinejewelry/internal/services"
)

const defaultShipping = 80

type OrderHandler struct {
	Order *services.OrderService
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req struct {
		Customer    domain.Customer    `json:"customer"`
		Items       []domain.OrderItem `json:"items"`
		Total       float64            `json:"total"`
		PaymentType string             `json:"paymentType"`
		Shipping    *float64           `json:"shipping"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing order fields"})
	}
	shipping := float64(defaultShipping)
	if req.Shipping != nil {
		shipping = *req.Shipping
	}

	res, err := h.Order.Place(c.UserContext(), domain.OrderRequest{
		Customer:    req.Customer,
		Items:       req.Items,
		Total:       req.Total,
		PaymentType: req.PaymentType,
		Shipping:    shipping,
	})
	switch {
	case errors.Is(err, services.ErrMissingFields):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing order fields"})
	case errors.Is(err, services.ErrUnknownPayment):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown payment type"})
	case err != nil:
		applog.Error(c, "order.place.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to place order"})
	}

	applog.Audit(c, "order.place", map[string]any{
		"ref":     res.Ref,
		"payment": req.PaymentType,
		"pending": res.AwaitingConfirm,
	})
	if res.AwaitingConfirm {
		return c.JSON(fiber.Map{"ok": true, "message": "Order placed, owner must confirm payment"})
	}
	return c.JSON(fiber.Map{"ok": true, "message": "Order placed and emails sent"})
}

// ConfirmPayment is reached from the link in the owner's Instapay
// notification. Without confirm=true it renders a page that requires an
// explicit checkbox; with it, the queued customer email goes out.
func (h *OrderHandler) ConfirmPayment(c *fiber.Ctx) error {
	id := c.Query("id")
	email := c.Query("email")
	if id == "" || email == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Missing parameters")
	}
	if !h.Order.HasPending(id) {
		return c.Status(fiber.StatusNotFound).SendString("No pending confirmation")
	}

	if c.Query("confirm") != "true" {
		return c.Render("confirm", fiber.Map{"ID": id, "Email": email})
	}

	if err := h.Order.Confirm(c.UserContext(), id); err != nil {
		if errors.Is(err, services.ErrNoPending) {
			return c.Status(fiber.StatusNotFound).SendString("No pending confirmation")
		}
		applog.Error(c, "order.confirm.fail", err, map[string]any{"id": id})
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to send confirmation email")
	}
	applog.Audit(c, "order.confirm", map[string]any{"id": id})
	return c.Render("confirmed", fiber.Map{})
}
