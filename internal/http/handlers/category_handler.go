package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"shinejewelry/internal/domain"
	applog "shinejewelry/internal/log"
	"shinejewelry/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

func (h *CategoryHandler) Add(c *fiber.Ctx) error {
	var in domain.Category
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id and name are required"})
	}
	cat, err := h.Catalog.AddCategory(in)
	switch {
	case errors.Is(err, services.ErrMissingFields):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id and name are required"})
	case errors.Is(err, services.ErrCategoryExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Category already exists"})
	case err != nil:
		applog.Error(c, "category.add.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add category"})
	}
	applog.Audit(c, "category.add", map[string]any{"id": cat.ID, "section": cat.Section})
	return c.JSON(fiber.Map{"ok": true, "category": cat})
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	deleted, err := h.Catalog.DeleteCategory(id)
	if err != nil {
		applog.Error(c, "category.delete.fail", err, map[string]any{"id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete category"})
	}
	applog.Audit(c, "category.delete", map[string]any{"id": id, "deleted_products": deleted})
	return c.JSON(fiber.Map{"ok": true, "deletedProducts": deleted, "tombstoned": true})
}
