package system

import (
	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

type WebSocketController struct {
	Hub    *Hub
	Logger *zap.Logger
}

func NewWebSocketController(hub *Hub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		Hub:    hub,
		Logger: logger,
	}
}

// HandleWebSocket keeps the connection registered until the client goes away.
// Inbound messages are ignored; the socket is broadcast-only.
func (h *WebSocketController) HandleWebSocket(c *websocket.Conn) {
	tenantID := c.Locals("tenantId").(string)

	h.Hub.register(tenantID, c)
	defer func() {
		h.Hub.unregister(tenantID, c)
		_ = c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
