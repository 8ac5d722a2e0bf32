package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"go-stockyng/internal/model"
	"go-stockyng/internal/repository"
	"go-stockyng/internal/session"
	"go-stockyng/pkg/jwt"
)

// Authenticate resolves a token to the identity as it is stored now. Role
// changes and deletions apply to tokens already issued.
func Authenticate(c *fiber.Ctx, tokens *jwt.Manager, userRepo repository.UserRepository, token string) (model.Session, error) {
	claims, err := tokens.ValidateToken(token)
	if err != nil {
		return model.Session{}, err
	}

	// Check strict session against the store
	user, err := userRepo.FindByID(c.UserContext(), claims.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, model.ErrUnauthenticated
	}
	if err != nil {
		return model.Session{}, err
	}

	s := user.ToSession()
	if !s.Complete() {
		return model.Session{}, model.ErrUnauthenticated
	}
	return s, nil
}

// RequireAuth validates the bearer token, reloads its user and stores the
// Session in the request context.
func RequireAuth(tokens *jwt.Manager, userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		s, err := Authenticate(c, tokens, userRepo, parts[1])
		switch {
		case errors.Is(err, jwt.ErrInvalidToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		case errors.Is(err, model.ErrUnauthenticated):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
		case err != nil:
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": model.ErrBackendUnavailable.Error()})
		}

		c.SetUserContext(session.NewContext(c.UserContext(), s))
		return c.Next()
	}
}

// CurrentSession returns the Session stored by RequireAuth.
func CurrentSession(c *fiber.Ctx) (model.Session, bool) {
	return session.FromContext(c.UserContext())
}

// RequirePrivilege checks if the authenticated role grants the privilege.
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := CurrentSession(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": model.ErrUnauthenticated.Error()})
		}
		if !s.HasPrivilege(requiredPrivilege) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
			})
		}
		return c.Next()
	}
}
