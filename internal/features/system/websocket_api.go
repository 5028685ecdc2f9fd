package system

import (
	"go-hrops/internal/common/api"
	"go-hrops/internal/config"
	"go-hrops/internal/middleware"
	"go-hrops/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WebSocketApi struct {
	Controller *WebSocketController
	Config     *config.Config
}

func NewWebSocketApi(controller *WebSocketController, cfg *config.Config) api.Route {
	return &WebSocketApi{
		Controller: controller,
		Config:     cfg,
	}
}

func (h *WebSocketApi) Setup(app *fiber.App) {
	app.Get("/api/ws", middleware.AuthMiddleware(h.Config.SkipAuth), func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims); ok && claims != nil {
			c.Locals("tenantId", claims.TenantID)
		}
		return c.Next()
	}, websocket.New(h.Controller.HandleWebSocket))
}
