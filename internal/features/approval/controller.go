package approval

import (
	"go-hrops/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApprovalController struct {
	Service ApprovalService
}

func NewApprovalController(service ApprovalService) *ApprovalController {
	return &ApprovalController{Service: service}
}

func parseModule(raw string) (Module, bool) {
	switch Module(raw) {
	case ModuleLeaveRequest, ModulePurchaseRequest, ModuleAssetRequest:
		return Module(raw), true
	}
	return "", false
}

func requestIdentity(ctx *fiber.Ctx) (*utils.UserClaims, primitive.ObjectID, primitive.ObjectID, error) {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok || claims == nil {
		return nil, primitive.NilObjectID, primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	memberID, err := primitive.ObjectIDFromHex(claims.MemberID)
	if err != nil {
		return nil, primitive.NilObjectID, primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "Invalid member id")
	}
	tenantID, err := primitive.ObjectIDFromHex(claims.TenantID)
	if err != nil {
		return nil, primitive.NilObjectID, primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "Invalid tenant id")
	}
	return claims, memberID, tenantID, nil
}

// tenantChain loads an entity's chain scoped to the caller's tenant. A chain
// belonging to another tenant reads as not found so entity ids do not leak
// across organizations. On a miss the response is already written and ok is
// false.
func (c *ApprovalController) tenantChain(ctx *fiber.Ctx, module Module, entityID, tenantID primitive.ObjectID) ([]ApprovalStep, bool) {
	chain, err := c.Service.GetApprovalChain(ctx.UserContext(), module, entityID)
	if err != nil {
		_ = ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		return nil, false
	}
	if len(chain) > 0 && chain[0].TenantID != tenantID {
		_ = ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No approval chain for entity"})
		return nil, false
	}
	return chain, true
}

// CreatePolicy godoc
// @Summary Create an approval policy
// @Tags approvals
// @Accept json
// @Produce json
// @Param policy body ApprovalPolicy true "Policy"
// @Success 201 {object} ApprovalPolicy
// @Failure 400 {object} map[string]string "Invalid request body"
// @Router /api/approvals/policies [post]
func (c *ApprovalController) CreatePolicy(ctx *fiber.Ctx) error {
	_, _, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	var input ApprovalPolicy
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	input.TenantID = tenantID

	if err := c.Service.CreatePolicy(ctx.UserContext(), &input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(input)
}

// UpdatePolicy godoc
// @Summary Update an approval policy
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Policy ID"
// @Param policy body ApprovalPolicy true "Policy"
// @Success 200 {object} map[string]string
// @Router /api/approvals/policies/{id} [put]
func (c *ApprovalController) UpdatePolicy(ctx *fiber.Ctx) error {
	_, _, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	var input ApprovalPolicy
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdatePolicy(ctx.UserContext(), tenantID, ctx.Params("id"), &input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Policy updated successfully"})
}

// ListPolicies godoc
// @Summary List approval policies
// @Tags approvals
// @Produce json
// @Success 200 {array} ApprovalPolicy
// @Router /api/approvals/policies [get]
func (c *ApprovalController) ListPolicies(ctx *fiber.Ctx) error {
	_, _, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	policies, err := c.Service.ListPolicies(ctx.UserContext(), tenantID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(policies)
}

// GetPolicy godoc
// @Summary Get an approval policy
// @Tags approvals
// @Produce json
// @Param id path string true "Policy ID"
// @Success 200 {object} ApprovalPolicy
// @Failure 404 {object} map[string]string "Policy not found"
// @Router /api/approvals/policies/{id} [get]
func (c *ApprovalController) GetPolicy(ctx *fiber.Ctx) error {
	_, _, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	policy, err := c.Service.GetPolicy(ctx.UserContext(), tenantID, ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if policy == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Policy not found"})
	}
	return ctx.JSON(policy)
}

// DeletePolicy godoc
// @Summary Delete an approval policy
// @Tags approvals
// @Param id path string true "Policy ID"
// @Success 204 {object} nil "No Content"
// @Router /api/approvals/policies/{id} [delete]
func (c *ApprovalController) DeletePolicy(ctx *fiber.Ctx) error {
	_, _, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	if err := c.Service.DeletePolicy(ctx.UserContext(), tenantID, ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// GetChain godoc
// @Summary Get the approval chain for an entity
// @Tags approvals
// @Produce json
// @Param module path string true "Module"
// @Param id path string true "Entity ID"
// @Success 200 {array} ApprovalStep
// @Router /api/approvals/{module}/{id}/chain [get]
func (c *ApprovalController) GetChain(ctx *fiber.Ctx) error {
	module, ok := parseModule(ctx.Params("module"))
	if !ok {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown module"})
	}
	entityID, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid entity id"})
	}
	_, _, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	chain, ok := c.tenantChain(ctx, module, entityID, tenantID)
	if !ok {
		return nil
	}
	return ctx.JSON(chain)
}

// GetChainSummary godoc
// @Summary Get the chain summary for an entity
// @Tags approvals
// @Produce json
// @Param module path string true "Module"
// @Param id path string true "Entity ID"
// @Success 200 {object} ChainSummary
// @Router /api/approvals/{module}/{id}/summary [get]
func (c *ApprovalController) GetChainSummary(ctx *fiber.Ctx) error {
	module, ok := parseModule(ctx.Params("module"))
	if !ok {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown module"})
	}
	entityID, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid entity id"})
	}
	_, _, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	chain, ok := c.tenantChain(ctx, module, entityID, tenantID)
	if !ok {
		return nil
	}
	return ctx.JSON(summarize(chain))
}

// ProcessApproval godoc
// @Summary Approve or reject the current pending step
// @Tags approvals
// @Accept json
// @Produce json
// @Param module path string true "Module"
// @Param id path string true "Entity ID"
// @Param action path string true "approve or reject"
// @Success 200 {object} ProcessResult
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /api/approvals/{module}/{id}/{action} [post]
func (c *ApprovalController) ProcessApproval(ctx *fiber.Ctx) error {
	module, ok := parseModule(ctx.Params("module"))
	if !ok {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown module"})
	}
	entityID, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid entity id"})
	}

	var action Action
	switch ctx.Params("action") {
	case "approve":
		action = ActionApprove
	case "reject":
		action = ActionReject
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown action"})
	}

	var body struct {
		Notes string `json:"notes"`
	}
	_ = ctx.BodyParser(&body)

	_, memberID, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}
	if _, ok := c.tenantChain(ctx, module, entityID, tenantID); !ok {
		return nil
	}

	result, err := c.Service.ProcessEntityApproval(ctx.UserContext(), module, entityID, memberID, action, body.Notes)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !result.ChainExists {
		return ctx.Status(fiber.StatusNotFound).JSON(result)
	}
	if !result.StepProcessed && result.Error != "" && result.Error != "step already processed" {
		return ctx.Status(fiber.StatusForbidden).JSON(result)
	}
	return ctx.JSON(result)
}

// BypassApproval godoc
// @Summary Force-approve every pending step (admin only)
// @Tags approvals
// @Accept json
// @Produce json
// @Param module path string true "Module"
// @Param id path string true "Entity ID"
// @Success 200 {object} ProcessResult
// @Router /api/approvals/{module}/{id}/bypass [post]
func (c *ApprovalController) BypassApproval(ctx *fiber.Ctx) error {
	module, ok := parseModule(ctx.Params("module"))
	if !ok {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown module"})
	}
	entityID, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid entity id"})
	}

	var body struct {
		Note string `json:"note"`
	}
	_ = ctx.BodyParser(&body)

	_, memberID, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}
	if _, ok := c.tenantChain(ctx, module, entityID, tenantID); !ok {
		return nil
	}

	result, err := c.Service.AdminBypassApproval(ctx.UserContext(), module, entityID, memberID, body.Note)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !result.ChainExists {
		return ctx.Status(fiber.StatusNotFound).JSON(result)
	}
	return ctx.JSON(result)
}

// CanApproveStep godoc
// @Summary Check whether the caller may act on a step
// @Tags approvals
// @Produce json
// @Param stepId path string true "Step ID"
// @Success 200 {object} Authorization
// @Router /api/approvals/steps/{stepId}/can-approve [get]
func (c *ApprovalController) CanApproveStep(ctx *fiber.Ctx) error {
	stepID, err := primitive.ObjectIDFromHex(ctx.Params("stepId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid step id"})
	}

	_, memberID, _, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	authz, err := c.Service.CanMemberApprove(ctx.UserContext(), memberID, stepID)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(authz)
}
