package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-stockyng/internal/service"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// GetProducts lists products, filtered by name when q is given
// GET /api/v1/products?q=
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.SearchProducts(c.UserContext(), c.Query("q"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

// CreateProduct accepts JSON or multipart with an optional "image" part
// POST /api/v1/products
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	img, err := imageFrom(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	product, err := h.service.CreateProduct(c.UserContext(), &req, img)
	return written(c, fiber.StatusCreated, "Product created", product, err)
}

// UpdateProduct merges the submitted fields; blank ones keep their value
// PUT /api/v1/products/:id
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	var req service.ProductEditRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	img, err := imageFrom(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), &req, img)
	return written(c, fiber.StatusOK, "Product updated", product, err)
}

// DeleteProduct requires ?confirm=true
// DELETE /api/v1/products/:id
func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	if !confirmed(c) {
		return c.Status(400).JSON(fiber.Map{"error": "Deletion must be confirmed with ?confirm=true"})
	}
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}
