package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-stockyng/internal/repository"
)

type RoleHandler struct {
	roleRepo repository.RoleRepository
}

func NewRoleHandler(roleRepo repository.RoleRepository) *RoleHandler {
	return &RoleHandler{roleRepo: roleRepo}
}

// GetRoles returns all available roles
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	return c.JSON(h.roleRepo.FindAll())
}
