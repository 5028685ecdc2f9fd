package asset

import (
	"strconv"

	"go-hrops/internal/features/approval"
	"go-hrops/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type AssetController struct {
	AssetService AssetService
	Logger       *zap.Logger
}

func NewAssetController(assetService AssetService, logger *zap.Logger) *AssetController {
	return &AssetController{
		AssetService: assetService,
		Logger:       logger,
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
// @Summary Submit an asset request
// @Tags asset
// @Accept json
// @Produce json
// @Param body body CreateAssetInput true "Asset request payload"
// @Success 201 {object} AssetRequest
// @Router /api/assets [post]
func (c *AssetController) CreateRequest(ctx *fiber.Ctx) error {
	memberID, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	var input CreateAssetInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	req, err := c.AssetService.CreateRequest(ctx.UserContext(), tenantID, memberID, input)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(req)
}

// ListRequests godoc
// @Summary List asset requests for the tenant
// @Tags asset
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {array} AssetRequest
// @Router /api/assets [get]
func (c *AssetController) ListRequests(ctx *fiber.Ctx) error {
	_, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	filter := bson.M{}
	if status := ctx.Query("status"); status != "" {
		filter["status"] = status
	}
	if assetType := ctx.Query("type"); assetType != "" {
		filter["type"] = assetType
	}

	limit, _ := strconv.ParseInt(ctx.Query("limit", "50"), 10, 64)
	skip, _ := strconv.ParseInt(ctx.Query("skip", "0"), 10, 64)

	requests, err := c.AssetService.ListRequests(ctx.UserContext(), tenantID, filter, limit, skip)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(requests)
}

// GetRequest godoc
// @Summary Get one asset request
// @Tags asset
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} AssetRequest
// @Router /api/assets/{id} [get]
func (c *AssetController) GetRequest(ctx *fiber.Ctx) error {
	_, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request id"})
	}

	req, err := c.AssetService.GetRequest(ctx.UserContext(), tenantID, id)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if req == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "asset request not found"})
	}
	return ctx.JSON(req)
}

// Decide godoc
// @Summary Approve or reject an asset request
// @Tags asset
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param action path string true "approve or reject"
// @Success 200 {object} approval.ProcessResult
// @Router /api/assets/{id}/{action} [post]
func (c *AssetController) Decide(ctx *fiber.Ctx) error {
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

	result, err := c.AssetService.Decide(ctx.UserContext(), tenantID, id, memberID, action, body.Notes)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if result.Error != "" && !result.StepProcessed {
		return ctx.Status(fiber.StatusForbidden).JSON(result)
	}
	return ctx.JSON(result)
}

// Cancel godoc
// @Summary Cancel a pending asset request
// @Tags asset
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/assets/{id}/cancel [post]
func (c *AssetController) Cancel(ctx *fiber.Ctx) error {
	memberID, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request id"})
	}

	if err := c.AssetService.Cancel(ctx.UserContext(), tenantID, id, memberID); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"cancelled": true})
}
