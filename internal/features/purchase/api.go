package purchase

import (
	"go-hrops/internal/config"
	"go-hrops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PurchaseApi struct {
	controller *PurchaseController
	config     *config.Config
}

func NewPurchaseApi(controller *PurchaseController, config *config.Config) *PurchaseApi {
	return &PurchaseApi{
		controller: controller,
		config:     config,
	}
}

func (h *PurchaseApi) Setup(app *fiber.App) {
	group := app.Group("/api/purchases", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListRequests)
	group.Post("/", h.controller.CreateRequest)
	group.Get("/:id", h.controller.GetRequest)
	group.Post("/:id/cancel", h.controller.Cancel)
	group.Post("/:id/:action", h.controller.Decide)
}
