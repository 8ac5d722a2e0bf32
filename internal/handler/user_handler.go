package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-stockyng/internal/middleware"
	"go-stockyng/internal/model"
	"go-stockyng/internal/service"
	"go-stockyng/pkg/jwt"
)

type UserHandler struct {
	userService service.UserService
	tokens      *jwt.Manager
}

func NewUserHandler(userService service.UserService, tokens *jwt.Manager) *UserHandler {
	return &UserHandler{userService: userService, tokens: tokens}
}

// GetUsers lists users, filtered by name, email or username when q is given
// GET /api/v1/users?q=
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.SearchUsers(c.UserContext(), c.Query("q"))
	if err != nil {
		return fail(c, err)
	}
	out := make([]model.UserResponse, len(users))
	for i := range users {
		out[i] = users[i].ToResponse()
	}
	return c.JSON(out)
}

// CreateUser handles admin user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	user, err := h.userService.CreateUser(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user.ToResponse(),
	})
}

// UpdateUser handles admin edits of another user
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	user, err := h.userService.UpdateUser(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"data":    user.ToResponse(),
	})
}

// DeleteUser requires ?confirm=true
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	if !confirmed(c) {
		return c.Status(400).JSON(fiber.Map{"error": "Deletion must be confirmed with ?confirm=true"})
	}
	if err := h.userService.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// UpdateProfile edits the caller's own record and returns a fresh token
// PUT /api/v1/profile
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	current, ok := middleware.CurrentSession(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req service.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	img, err := imageFrom(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	updated, err := h.userService.UpdateProfile(c.UserContext(), current, &req, img)
	if updated == nil {
		return fail(c, err)
	}
	token, tokErr := h.tokens.GenerateToken(*updated)
	if tokErr != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate token"})
	}
	return written(c, fiber.StatusOK, "Profile updated", fiber.Map{"session": updated, "token": token}, err)
}
