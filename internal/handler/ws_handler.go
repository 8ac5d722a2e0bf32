package handler

import (
	"errors"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"go-stockyng/internal/middleware"
	"go-stockyng/internal/model"
	"go-stockyng/internal/repository"
	"go-stockyng/internal/ws"
	"go-stockyng/pkg/jwt"
)

// topicPrivileges lists the collections clients may watch.
var topicPrivileges = map[string]string{
	model.CollectionProducts: model.PrivProductView,
	model.CollectionUsers:    model.PrivUserView,
}

type WSHandler struct {
	hub      *ws.Hub
	tokens   *jwt.Manager
	userRepo repository.UserRepository
	done     <-chan struct{}
}

// NewWSHandler serves hub topics. done is closed when the hub stops.
func NewWSHandler(hub *ws.Hub, tokens *jwt.Manager, userRepo repository.UserRepository, done <-chan struct{}) *WSHandler {
	return &WSHandler{hub: hub, tokens: tokens, userRepo: userRepo, done: done}
}

// Upgrade authenticates the ?token= query parameter before the handshake;
// browsers cannot set headers on websocket requests.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}

	topic := c.Params("collection")
	priv, ok := topicPrivileges[topic]
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "Unknown collection"})
	}

	s, err := middleware.Authenticate(c, h.tokens, h.userRepo, c.Query("token"))
	switch {
	case errors.Is(err, jwt.ErrInvalidToken):
		return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
	case errors.Is(err, model.ErrUnauthenticated):
		return c.Status(401).JSON(fiber.Map{"error": "User not found"})
	case err != nil:
		return fail(c, err)
	}
	if !s.HasPrivilege(priv) {
		return c.Status(403).JSON(fiber.Map{"error": "Forbidden: requires '" + priv + "' privilege"})
	}

	c.Locals("topic", topic)
	return c.Next()
}

// Stream registers the connection with the hub until the client goes away.
func (h *WSHandler) Stream() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		topic, _ := c.Locals("topic").(string)
		m := ws.Membership{Topic: topic, Client: c}

		select {
		case h.hub.Register <- m:
		case <-h.done:
			return
		}
		defer func() {
			select {
			case h.hub.Unregister <- m:
			case <-h.done:
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}
