package report

import (
	"go-hrops/internal/config"
	"go-hrops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	controller *ReportController
	config     *config.Config
}

func NewReportApi(controller *ReportController, config *config.Config) *ReportApi {
	return &ReportApi{
		controller: controller,
		config:     config,
	}
}

func (h *ReportApi) Setup(app *fiber.App) {
	group := app.Group("/api/reports", middleware.AuthMiddleware(h.config.SkipAuth), middleware.AdminMiddleware())

	group.Post("/export", h.controller.RunExport)
	group.Get("/logs", h.controller.ListLogs)
	group.Get("/approvals.xlsx", h.controller.DownloadExcel)
}
