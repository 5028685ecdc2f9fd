package member

import (
	"go-hrops/internal/config"
	"go-hrops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type MemberApi struct {
	controller *MemberController
	config     *config.Config
}

func NewMemberApi(controller *MemberController, config *config.Config) *MemberApi {
	return &MemberApi{controller: controller, config: config}
}

func (h *MemberApi) Setup(app *fiber.App) {
	members := app.Group("/api/members", middleware.AuthMiddleware(h.config.SkipAuth))

	members.Get("/", h.controller.ListMembers)
	members.Get("/:id", h.controller.GetMember)

	admin := app.Group("/api/members", middleware.AuthMiddleware(h.config.SkipAuth), middleware.AdminMiddleware())

	admin.Post("/", h.controller.CreateMember)
	admin.Put("/:id", h.controller.UpdateMember)
	admin.Delete("/:id", h.controller.DeleteMember)
}
