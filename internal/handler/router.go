package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-stockyng/internal/middleware"
	"go-stockyng/internal/model"
	"go-stockyng/internal/repository"
	"go-stockyng/pkg/jwt"
)

// Router holds every handler the API mounts.
type Router struct {
	Tokens    *jwt.Manager
	Users     repository.UserRepository
	Auth      *AuthHandler
	Inventory *InventoryHandler
	User      *UserHandler
	Role      *RoleHandler
	Health    *HealthHandler
	WS        *WSHandler
}

// Mount registers the routes on app. WS may be nil.
func (r *Router) Mount(app *fiber.App) {
	app.Get("/health", r.Health.Liveness)
	app.Get("/health/ready", r.Health.Readiness)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", r.Auth.Login)
	auth.Post("/register", r.Auth.Register)
	auth.Post("/logout", r.Auth.Logout)

	// ============ PROTECTED ROUTES ============
	requireAuth := middleware.RequireAuth(r.Tokens, r.Users)
	auth.Get("/me", requireAuth, r.Auth.Me)

	protected := api.Group("", requireAuth)

	protected.Get("/products", middleware.RequirePrivilege(model.PrivProductView), r.Inventory.GetProducts)
	protected.Post("/products", middleware.RequirePrivilege(model.PrivProductCreate), r.Inventory.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), r.Inventory.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege(model.PrivProductDelete), r.Inventory.DeleteProduct)

	protected.Get("/users", middleware.RequirePrivilege(model.PrivUserView), r.User.GetUsers)
	protected.Post("/users", middleware.RequirePrivilege(model.PrivUserCreate), r.User.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege(model.PrivUserUpdate), r.User.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege(model.PrivUserDelete), r.User.DeleteUser)

	protected.Put("/profile", r.User.UpdateProfile)
	protected.Get("/roles", r.Role.GetRoles)

	if r.WS != nil {
		app.Get("/ws/:collection", r.WS.Upgrade, r.WS.Stream())
	}
}
