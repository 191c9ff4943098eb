package handlers

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	applog "shinejewelry/internal/log"
	"shinejewelry/internal/services"
	"shinejewelry/internal/uploads"
	"shinejewelry/internal/validate"
)

const maxImages = 8

type ProductHandler struct {
	Catalog *services.CatalogService
	Files   *uploads.Manager
}

// formData reads multipart fields and files; urlencoded bodies are
// accepted too so partial edits without images work.
func formData(c *fiber.Ctx) (map[string][]string, []*multipart.FileHeader) {
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		return mf.Value, mf.File["images"]
	}
	vals := map[string][]string{}
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		vals[string(k)] = append(vals[string(k)], string(v))
	})
	return vals, nil
}

func first(vals map[string][]string, key string) (string, bool) {
	v, ok := vals[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func (h *ProductHandler) Add(c *fiber.Ctx) error {
	vals, files := formData(c)
	title, _ := first(vals, "title")
	priceStr, _ := first(vals, "price")
	category, _ := first(vals, "category")
	desc, _ := first(vals, "desc")

	if title == "" || priceStr == "" || category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title, price, category required"})
	}
	price, ok := validate.Price(priceStr)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid price"})
	}

	saved, err := h.Files.SaveAll(files, category, maxImages)
	if errors.Is(err, uploads.ErrTooManyFiles) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Too many images (max 8)"})
	}
	if err != nil {
		applog.Error(c, "product.upload.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add product"})
	}

	p, err := h.Catalog.AddProduct(title, price, category, desc, saved)
	switch {
	case errors.Is(err, services.ErrCategoryNotFound):
		h.Files.RemoveAll(saved)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Category not found"})
	case err != nil:
		h.Files.RemoveAll(saved)
		applog.Error(c, "product.add.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add product"})
	}
	applog.Audit(c, "product.add", map[string]any{"id": p.ID, "category": p.Category})
	return c.JSON(fiber.Map{"ok": true, "product": p})
}

func (h *ProductHandler) Edit(c *fiber.Ctx) error {
	id := c.Params("id")
	vals, files := formData(c)

	patch := services.ProductPatch{}
	if v, ok := first(vals, "title"); ok && v != "" {
		patch.Title = &v
	}
	if v, ok := first(vals, "desc"); ok {
		patch.Desc = &v
	}
	if v, ok := first(vals, "price"); ok {
		n, valid := validate.Price(v)
		if !valid {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid price"})
		}
		patch.Price = &n
	}
	if v, ok := first(vals, "replaceImages"); ok {
		patch.ReplaceImages = v == "true" || v == "1"
	}

	// PATCH bodies usually carry no category field; those uploads land
	// under the misc bucket, same as the original storage layout.
	category, _ := first(vals, "category")
	saved, err := h.Files.SaveAll(files, category, maxImages)
	if errors.Is(err, uploads.ErrTooManyFiles) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Too many images (max 8)"})
	}
	if err != nil {
		applog.Error(c, "product.upload.fail", err, map[string]any{"id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to edit product"})
	}
	patch.NewImages = saved

	p, err := h.Catalog.UpdateProduct(id, patch)
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		h.Files.RemoveAll(saved)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	case errors.Is(err, services.ErrInvalidPrice):
		h.Files.RemoveAll(saved)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid price"})
	case err != nil:
		h.Files.RemoveAll(saved)
		applog.Error(c, "product.edit.fail", err, map[string]any{"id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to edit product"})
	}
	applog.Audit(c, "product.edit", map[string]any{"id": id, "replace_images": patch.ReplaceImages})
	return c.JSON(fiber.Map{"ok": true, "product": p})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	tombstoned, err := h.Catalog.DeleteProduct(id)
	if err != nil {
		applog.Error(c, "product.delete.fail", err, map[string]any{"id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete product"})
	}
	applog.Audit(c, "product.delete", map[string]any{"id": id, "tombstoned": tombstoned})
	if tombstoned {
		return c.JSON(fiber.Map{"ok": true, "tombstoned": true})
	}
	return c.JSON(fiber.Map{"ok": true})
}
