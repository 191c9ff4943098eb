package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "shinejewelry/internal/log"
	"shinejewelry/internal/services"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// Products is the public read path: seed + dynamic merge with
// tombstones applied and sections normalized.
func (h *CatalogHandler) Products(c *fiber.Ctx) error {
	snap, err := h.Catalog.Read()
	if err != nil {
		applog.Error(c, "catalog.read.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load products"})
	}
	return c.JSON(fiber.Map{"ok": true, "categories": snap.Categories, "products": snap.Products})
}

func (h *CatalogHandler) Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}
