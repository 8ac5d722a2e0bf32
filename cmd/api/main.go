package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"go-stockyng/internal/bootstrap"
	"go-stockyng/internal/config"
	"go-stockyng/internal/handler"
	"go-stockyng/internal/model"
	"go-stockyng/internal/repository"
	"go-stockyng/internal/service"
	"go-stockyng/internal/ws"
	"go-stockyng/pkg/hasher"
	"go-stockyng/pkg/jwt"
	"go-stockyng/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load config
	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("config")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), Output: os.Stdout})

	// 2. Setup backend
	be, err := bootstrap.OpenBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open backend")
	}
	defer be.Close()

	images, err := bootstrap.OpenImages(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open image store")
	}

	h, err := hasher.New(cfg.Hasher)
	if err != nil {
		log.Fatal().Err(err).Msg("hasher")
	}
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	// 3. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(be.Store)
	productRepo := repository.NewProductRepo(be.Store)
	roleRepo := repository.NewRoleRepo()

	if err := bootstrap.SeedAdmin(ctx, userRepo, h, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
		log.Warn().Err(err).Msg("seed admin")
	}

	authService := service.NewAuthService(userRepo, h, nil, log)
	invService := service.NewInventoryService(productRepo, images, log)
	userService := service.NewUserService(userRepo, h, images, nil, log)

	// 4. Setup WebSocket hub and live feeds
	hub := ws.NewHub(log)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()
	go func() {
		err := ws.Feed(ctx, hub, model.CollectionProducts, productRepo.Live,
			func(p model.Product) model.Product { return p })
		if err != nil {
			log.Error().Err(err).Msg("products feed")
		}
	}()
	go func() {
		err := ws.Feed(ctx, hub, model.CollectionUsers, userRepo.Live,
			func(u model.User) model.UserResponse { return u.ToResponse() })
		if err != nil {
			log.Error().Err(err).Msg("users feed")
		}
	}()

	checks := make(map[string]handler.Check, len(be.Checks))
	for name, check := range be.Checks {
		checks[name] = handler.Check(check)
	}

	router := &handler.Router{
		Tokens:    tokens,
		Users:     userRepo,
		Auth:      handler.NewAuthHandler(authService, tokens),
		Inventory: handler.NewInventoryHandler(invService),
		User:      handler.NewUserHandler(userService, tokens),
		Role:      handler.NewRoleHandler(roleRepo),
		Health:    handler.NewHealthHandler(checks),
		WS:        handler.NewWSHandler(hub, tokens, userRepo, hubDone),
	}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:               "Stockyng API",
		DisableStartupMessage: !cfg.IsDevelopment(),
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	router.Mount(app)

	// 6. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("listen")
			stop()
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	<-hubDone
	log.Info().Msg("Server exited")
}
