package member

import (
	"go-hrops/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemberController struct {
	Service MemberService
}

func NewMemberController(service MemberService) *MemberController {
	return &MemberController{Service: service}
}

func tenantFromClaims(ctx *fiber.Ctx) (primitive.ObjectID, error) {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok || claims == nil {
		return primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	tenantID, err := primitive.ObjectIDFromHex(claims.TenantID)
	if err != nil {
		return primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "Invalid tenant id")
	}
	return tenantID, nil
}

// CreateMember godoc
// @Summary Create a member
// @Tags members
// @Accept json
// @Produce json
// @Param member body CreateMemberInput true "Member"
// @Success 201 {object} models.Member
// @Router /api/members [post]
func (c *MemberController) CreateMember(ctx *fiber.Ctx) error {
	tenantID, err := tenantFromClaims(ctx)
	if err != nil {
		return err
	}

	var input CreateMemberInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	member, err := c.Service.Create(ctx.UserContext(), tenantID, input)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(member)
}

// ListMembers godoc
// @Summary List members of the tenant
// @Tags members
// @Produce json
// @Success 200 {array} models.Member
// @Router /api/members [get]
func (c *MemberController) ListMembers(ctx *fiber.Ctx) error {
	tenantID, err := tenantFromClaims(ctx)
	if err != nil {
		return err
	}

	members, err := c.Service.List(ctx.UserContext(), tenantID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(members)
}

// GetMember godoc
// @Summary Get a member
// @Tags members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} models.Member
// @Failure 404 {object} map[string]string "Member not found"
// @Router /api/members/{id} [get]
func (c *MemberController) GetMember(ctx *fiber.Ctx) error {
	tenantID, err := tenantFromClaims(ctx)
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid member id"})
	}

	member, err := c.Service.Get(ctx.UserContext(), tenantID, id)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if member == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Member not found"})
	}
	return ctx.JSON(member)
}

// UpdateMember godoc
// @Summary Update a member
// @Tags members
// @Accept json
// @Param id path string true "Member ID"
// @Param member body UpdateMemberInput true "Updates"
// @Success 200 {object} map[string]string
// @Router /api/members/{id} [put]
func (c *MemberController) UpdateMember(ctx *fiber.Ctx) error {
	tenantID, err := tenantFromClaims(ctx)
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid member id"})
	}

	var input UpdateMemberInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.Update(ctx.UserContext(), tenantID, id, input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Member updated successfully"})
}

// DeleteMember godoc
// @Summary Soft-delete a member
// @Tags members
// @Param id path string true "Member ID"
// @Success 204 {object} nil "No Content"
// @Router /api/members/{id} [delete]
func (c *MemberController) DeleteMember(ctx *fiber.Ctx) error {
	tenantID, err := tenantFromClaims(ctx)
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid member id"})
	}

	if err := c.Service.Delete(ctx.UserContext(), tenantID, id); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
