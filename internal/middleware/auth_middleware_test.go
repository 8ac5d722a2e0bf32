package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-stockyng/internal/backend"
	"go-stockyng/internal/model"
	"go-stockyng/internal/repository"
	"go-stockyng/pkg/jwt"
)

type env struct {
	app    *fiber.App
	tokens *jwt.Manager
	users  repository.UserRepository
}

func newEnv(t *testing.T) *env {
	t.Helper()
	tokens := jwt.NewManager("secret", time.Hour)
	users := repository.NewUserRepo(backend.NewMemoryStore(nil))

	app := fiber.New()
	app.Get("/me", RequireAuth(tokens, users), func(c *fiber.Ctx) error {
		s, ok := CurrentSession(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(s.Username)
	})
	app.Delete("/users", RequireAuth(tokens, users), RequirePrivilege(model.PrivUserDelete), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return &env{app: app, tokens: tokens, users: users}
}

func (e *env) seed(t *testing.T, u model.User) (*model.User, string) {
	t.Helper()
	require.NoError(t, e.users.Create(context.Background(), &u))
	tok, err := e.tokens.GenerateToken(u.ToSession())
	require.NoError(t, err)
	return &u, tok
}

func call(t *testing.T, app *fiber.App, method, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireAuth(t *testing.T) {
	e := newEnv(t)
	_, full := e.seed(t, model.User{Name: "Ann", Email: "a@b.com", Username: "ann", Role: "user"})

	assert.Equal(t, fiber.StatusOK, call(t, e.app, "GET", "/me", full))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, e.app, "GET", "/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, e.app, "GET", "/me", "not-a-token"))
}

func TestRequireAuth_IncompleteStoredRecord(t *testing.T) {
	e := newEnv(t)
	_, tok := e.seed(t, model.User{Name: "Ann", Email: "a@b.com", Role: "user"})

	assert.Equal(t, fiber.StatusUnauthorized, call(t, e.app, "GET", "/me", tok))
}

func TestRequireAuth_DeletedUser(t *testing.T) {
	e := newEnv(t)
	ann, tok := e.seed(t, model.User{Name: "Ann", Email: "a@b.com", Username: "ann", Role: "user"})

	require.NoError(t, e.users.Delete(context.Background(), ann.ID))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, e.app, "GET", "/me", tok))
}

func TestRequirePrivilege(t *testing.T) {
	e := newEnv(t)
	_, user := e.seed(t, model.User{Name: "Ann", Email: "a@b.com", Username: "ann", Role: "user"})
	_, admin := e.seed(t, model.User{Name: "Bo", Email: "b@b.com", Username: "bo", Role: "Admin"})

	assert.Equal(t, fiber.StatusForbidden, call(t, e.app, "DELETE", "/users", user))
	assert.Equal(t, fiber.StatusNoContent, call(t, e.app, "DELETE", "/users", admin))
}

func TestRequirePrivilege_UsesStoredRole(t *testing.T) {
	e := newEnv(t)
	bo, admin := e.seed(t, model.User{Name: "Bo", Email: "b@b.com", Username: "bo", Role: "Admin"})
	require.Equal(t, fiber.StatusNoContent, call(t, e.app, "DELETE", "/users", admin))

	bo.Role = model.RoleUser
	require.NoError(t, e.users.Update(context.Background(), bo))
	assert.Equal(t, fiber.StatusForbidden, call(t, e.app, "DELETE", "/users", admin))
}
