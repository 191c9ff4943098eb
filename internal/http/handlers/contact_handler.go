package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"shinejewelry/internal/domain"
	applog "shinejewelry/internal/log"
	"shinejewelry/internal/services"
)

type ContactHandler struct {
	Contact *services.ContactService
}

func (h *ContactHandler) Send(c *fiber.Ctx) error {
	var msg domain.ContactMessage
	if err := c.BodyParser(&msg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing fields"})
	}
	err := h.Contact.Send(c.UserContext(), msg)
	switch {
	case errors.Is(err, services.ErrMissingFields):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing fields"})
	case err != nil:
		applog.Error(c, "contact.send.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to send message"})
	}
	applog.Info(c, "contact.send", map[string]any{"from": msg.Email})
	return c.JSON(fiber.Map{"ok": true, "message": "Message sent"})
}
