package purchase

import (
	"strconv"

	"go-hrops/internal/features/approval"
	"go-hrops/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type PurchaseController struct {
	PurchaseService PurchaseService
	Logger          *zap.Logger
}

func NewPurchaseController(purchaseService PurchaseService, logger *zap.Logger) *PurchaseController {
	return &PurchaseController{
		PurchaseService: purchaseService,
		Logger:          logger,
	}
}

func requestIdentity(ctx *fiber.Ctx) (memberID, tenantID primitive.ObjectID, err error) {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok || claims == nil {
		return memberID, tenantID, fiber.NewError(fiber.StatusUnauthorized, "missing claims")
	}
	memberID, err = primitive.ObjectIDFromHex(claims.MemberID)
	if err != nil {
		return memberID, tenantID, fiber.NewError(fiber.StatusUnauthorized, "invalid member id")
	}
	tenantID, err = primitive.ObjectIDFromHex(claims.TenantID)
	if err != nil {
		return memberID, tenantID, fiber.NewError(fiber.StatusUnauthorized, "invalid tenant id")
	}
	return memberID, tenantID, nil
}

// CreateRequest godoc
// @Summary Submit a purchase request
// @Tags purchase
// @Accept json
// @Produce json
// @Param body body CreatePurchaseInput true "Purchase request payload"
// @Success 201 {object} PurchaseRequest
// @Router /api/purchases [post]
func (c *PurchaseController) CreateRequest(ctx *fiber.Ctx) error {
	memberID, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	var input CreatePurchaseInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	req, err := c.PurchaseService.CreateRequest(ctx.UserContext(), tenantID, memberID, input)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(req)
}

// ListRequests godoc
// @Summary List purchase requests for the tenant
// @Tags purchase
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {array} PurchaseRequest
// @Router /api/purchases [get]
func (c *PurchaseController) ListRequests(ctx *fiber.Ctx) error {
	_, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	filter := bson.M{}
	if status := ctx.Query("status"); status != "" {
		filter["status"] = status
	}
	if category := ctx.Query("category"); category != "" {
		filter["category"] = category
	}

	limit, _ := strconv.ParseInt(ctx.Query("limit", "50"), 10, 64)
	skip, _ := strconv.ParseInt(ctx.Query("skip", "0"), 10, 64)

	requests, err := c.PurchaseService.ListRequests(ctx.UserContext(), tenantID, filter, limit, skip)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(requests)
}

// GetRequest godoc
// @Summary Get one purchase request
// @Tags purchase
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} PurchaseRequest
// @Router /api/purchases/{id} [get]
func (c *PurchaseController) GetRequest(ctx *fiber.Ctx) error {
	_, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request id"})
	}

	req, err := c.PurchaseService.GetRequest(ctx.UserContext(), tenantID, id)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if req == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "purchase request not found"})
	}
	return ctx.JSON(req)
}

// Decide godoc
// @Summary Approve or reject a purchase request
// @Tags purchase
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param action path string true "approve or reject"
// @Success 200 {object} approval.ProcessResult
// @Router /api/purchases/{id}/{action} [post]
func (c *PurchaseController) Decide(ctx *fiber.Ctx) error {
	memberID, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request id"})
	}

	var action approval.Action
	switch ctx.Params("action") {
	case "approve":
		action = approval.ActionApprove
	case "reject":
		action = approval.ActionReject
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "action must be approve or reject"})
	}

	var body struct {
		Notes string `json:"notes"`
	}
	_ = ctx.BodyParser(&body)

	result, err := c.PurchaseService.Decide(ctx.UserContext(), tenantID, id, memberID, action, body.Notes)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if result.Error != "" && !result.StepProcessed {
		return ctx.Status(fiber.StatusForbidden).JSON(result)
	}
	return ctx.JSON(result)
}

// Cancel godoc
// @Summary Cancel a pending purchase request
// @Tags purchase
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/purchases/{id}/cancel [post]
func (c *PurchaseController) Cancel(ctx *fiber.Ctx) error {
	memberID, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request id"})
	}

	if err := c.PurchaseService.Cancel(ctx.UserContext(), tenantID, id, memberID); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"cancelled": true})
}
