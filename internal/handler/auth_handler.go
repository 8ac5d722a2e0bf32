package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-stockyng/internal/middleware"
	"go-stockyng/internal/service"
	"go-stockyng/pkg/jwt"
)

type AuthHandler struct {
	authService service.AuthService
	tokens      *jwt.Manager
}

func NewAuthHandler(authService service.AuthService, tokens *jwt.Manager) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens}
}

// LoginResponse adds the bearer token to the login result.
type LoginResponse struct {
	Token string `json:"token"`
	*service.LoginResult
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, result)
}

// Register creates a regular account and signs it in
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusCreated, result)
}

// Logout is stateless on the server; clients drop their token.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext()); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me returns the session carried by the token
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	return c.JSON(s)
}

func (h *AuthHandler) respond(c *fiber.Ctx, status int, result *service.LoginResult) error {
	token, err := h.tokens.GenerateToken(result.Session)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate token"})
	}
	return c.Status(status).JSON(LoginResponse{Token: token, LoginResult: result})
}
