package leave

import (
	"strconv"
	"time"

	"go-hrops/internal/features/approval"
	"go-hrops/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type LeaveController struct {
	LeaveService LeaveService
	Logger       *zap.Logger
}

func NewLeaveController(leaveService LeaveService, logger *zap.Logger) *LeaveController {
	return &LeaveController{
		LeaveService: leaveService,
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
// @Summary Submit a leave request
// @Tags leave
// @Accept json
// @Produce json
// @Param body body CreateLeaveInput true "Leave request payload"
// @Success 201 {object} LeaveRequest
// @Router /api/leave [post]
func (c *LeaveController) CreateRequest(ctx *fiber.Ctx) error {
	memberID, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	var input CreateLeaveInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	req, err := c.LeaveService.CreateRequest(ctx.UserContext(), tenantID, memberID, input)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(req)
}

// ListRequests godoc
// @Summary List leave requests for the tenant
// @Tags leave
// @Produce json
// @Param status query string false "Filter by status"
// @Param member_id query string false "Filter by member"
// @Success 200 {array} LeaveRequest
// @Router /api/leave [get]
func (c *LeaveController) ListRequests(ctx *fiber.Ctx) error {
	_, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	filter := bson.M{}
	if status := ctx.Query("status"); status != "" {
		filter["status"] = status
	}
	if memberHex := ctx.Query("member_id"); memberHex != "" {
		memberID, err := primitive.ObjectIDFromHex(memberHex)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid member id"})
		}
		filter["member_id"] = memberID
	}

	limit, _ := strconv.ParseInt(ctx.Query("limit", "50"), 10, 64)
	skip, _ := strconv.ParseInt(ctx.Query("skip", "0"), 10, 64)

	requests, err := c.LeaveService.ListRequests(ctx.UserContext(), tenantID, filter, limit, skip)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(requests)
}

// GetRequest godoc
// @Summary Get one leave request
// @Tags leave
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} LeaveRequest
// @Router /api/leave/{id} [get]
func (c *LeaveController) GetRequest(ctx *fiber.Ctx) error {
	_, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request id"})
	}

	req, err := c.LeaveService.GetRequest(ctx.UserContext(), tenantID, id)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if req == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "leave request not found"})
	}
	return ctx.JSON(req)
}

// Decide godoc
// @Summary Approve or reject a leave request
// @Tags leave
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param action path string true "approve or reject"
// @Success 200 {object} approval.ProcessResult
// @Router /api/leave/{id}/{action} [post]
func (c *LeaveController) Decide(ctx *fiber.Ctx) error {
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

	result, err := c.LeaveService.Decide(ctx.UserContext(), tenantID, id, memberID, action, body.Notes)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if result.Error != "" && !result.StepProcessed {
		return ctx.Status(fiber.StatusForbidden).JSON(result)
	}
	return ctx.JSON(result)
}

// Cancel godoc
// @Summary Cancel a pending leave request
// @Tags leave
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/leave/{id}/cancel [post]
func (c *LeaveController) Cancel(ctx *fiber.Ctx) error {
	memberID, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request id"})
	}

	if err := c.LeaveService.Cancel(ctx.UserContext(), tenantID, id, memberID); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"cancelled": true})
}

// GetBalance godoc
// @Summary Get the caller's leave balance for a year
// @Tags leave
// @Produce json
// @Param year query int false "Year (defaults to current)"
// @Success 200 {object} LeaveBalance
// @Router /api/leave/balance [get]
func (c *LeaveController) GetBalance(ctx *fiber.Ctx) error {
	memberID, tenantID, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	year := time.Now().Year()
	if y, err := strconv.Atoi(ctx.Query("year", "")); err == nil && y > 0 {
		year = y
	}

	balance, err := c.LeaveService.GetBalance(ctx.UserContext(), tenantID, memberID, year)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(balance)
}
