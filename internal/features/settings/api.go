package settings

import (
	"go-hrops/internal/config"
	"go-hrops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SettingsApi struct {
	controller *SettingsController
	config     *config.Config
}

func NewSettingsApi(controller *SettingsController, config *config.Config) *SettingsApi {
	return &SettingsApi{
		controller: controller,
		config:     config,
	}
}

func (h *SettingsApi) Setup(app *fiber.App) {
	group := app.Group("/api/settings", middleware.AuthMiddleware(h.config.SkipAuth), middleware.AdminMiddleware())

	group.Get("/email", h.controller.GetEmailConfig)
	group.Put("/email", h.controller.UpdateEmailConfig)
	group.Get("/general", h.controller.GetGeneralConfig)
	group.Put("/general", h.controller.UpdateGeneralConfig)
}
