package approval

import (
	"go-hrops/internal/config"
	"go-hrops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ApprovalApi struct {
	controller *ApprovalController
	config     *config.Config
}

func NewApprovalApi(controller *ApprovalController, config *config.Config) *ApprovalApi {
	return &ApprovalApi{
		controller: controller,
		config:     config,
	}
}

func (h *ApprovalApi) Setup(app *fiber.App) {
	policies := app.Group("/api/approvals/policies", middleware.AuthMiddleware(h.config.SkipAuth), middleware.AdminMiddleware())

	policies.Post("/", h.controller.CreatePolicy)
	policies.Get("/", h.controller.ListPolicies)
	policies.Get("/:id", h.controller.GetPolicy)
	policies.Put("/:id", h.controller.UpdatePolicy)
	policies.Delete("/:id", h.controller.DeletePolicy)

	approvals := app.Group("/api/approvals", middleware.AuthMiddleware(h.config.SkipAuth))

	approvals.Get("/steps/:stepId/can-approve", h.controller.CanApproveStep)
	approvals.Get("/:module/:id/chain", h.controller.GetChain)
	approvals.Get("/:module/:id/summary", h.controller.GetChainSummary)
	approvals.Post("/:module/:id/bypass", middleware.AdminMiddleware(), h.controller.BypassApproval)
	approvals.Post("/:module/:id/:action", h.controller.ProcessApproval)
}
