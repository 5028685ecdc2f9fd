package report

import (
	"strconv"
	"time"

	"go-hrops/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportController struct {
	Service ReportService
}

func NewReportController(service ReportService) *ReportController {
	return &ReportController{Service: service}
}

// RunExport godoc
// @Summary Trigger a warehouse export run
// @Tags report
// @Produce json
// @Success 200 {object} ReportLog
// @Router /api/reports/export [post]
func (c *ReportController) RunExport(ctx *fiber.Ctx) error {
	run, err := c.Service.RunExport(ctx.UserContext(), RunTypeManual)
	if err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error(), "run": run})
	}
	return ctx.JSON(run)
}

// ListLogs godoc
// @Summary List export run history
// @Tags report
// @Produce json
// @Param limit query int false "Max rows"
// @Success 200 {array} ReportLog
// @Router /api/reports/logs [get]
func (c *ReportController) ListLogs(ctx *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(ctx.Query("limit", "20"), 10, 64)

	logs, err := c.Service.ListLogs(ctx.UserContext(), limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(logs)
}

// DownloadExcel godoc
// @Summary Download the tenant's approval history as a spreadsheet
// @Tags report
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /api/reports/approvals.xlsx [get]
func (c *ReportController) DownloadExcel(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok || claims == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "missing claims")
	}
	tenantID, err := primitive.ObjectIDFromHex(claims.TenantID)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid tenant id")
	}

	data, err := c.Service.ExportChainsExcel(ctx.UserContext(), tenantID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	filename := "approvals-" + time.Now().Format("2006-01-02") + ".xlsx"
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return ctx.Send(data)
}
