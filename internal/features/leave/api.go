package leave

import (
	"go-hrops/internal/config"
	"go-hrops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type LeaveApi struct {
	controller *LeaveController
	config     *config.Config
}

func NewLeaveApi(controller *LeaveController, config *config.Config) *LeaveApi {
	return &LeaveApi{
		controller: controller,
		config:     config,
	}
}

func (h *LeaveApi) Setup(app *fiber.App) {
	group := app.Group("/api/leave", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListRequests)
	group.Post("/", h.controller.CreateRequest)
	group.Get("/balance", h.controller.GetBalance)
	group.Get("/:id", h.controller.GetRequest)
	group.Post("/:id/cancel", h.controller.Cancel)
	group.Post("/:id/:action", h.controller.Decide)
}
