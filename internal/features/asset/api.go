package asset

import (
	"go-hrops/internal/config"
	"go-hrops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AssetApi struct {
	controller *AssetController
	config     *config.Config
}

func NewAssetApi(controller *AssetController, config *config.Config) *AssetApi {
	return &AssetApi{
		controller: controller,
		config:     config,
	}
}

func (h *AssetApi) Setup(app *fiber.App) {
	group := app.Group("/api/assets", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListRequests)
	group.Post("/", h.controller.CreateRequest)
	group.Get("/:id", h.controller.GetRequest)
	group.Post("/:id/cancel", h.controller.Cancel)
	group.Post("/:id/:action", h.controller.Decide)
}
