package settings

import (
	"go-hrops/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SettingsController struct {
	Service SettingsService
}

func NewSettingsController(service SettingsService) *SettingsController {
	return &SettingsController{Service: service}
}

func tenantFromClaims(ctx *fiber.Ctx) (primitive.ObjectID, error) {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok || claims == nil {
		return primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "missing claims")
	}
	tenantID, err := primitive.ObjectIDFromHex(claims.TenantID)
	if err != nil {
		return primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "invalid tenant id")
	}
	return tenantID, nil
}

// GetEmailConfig godoc
// @Summary Get the tenant's SMTP configuration
// @Tags settings
// @Produce json
// @Success 200 {object} EmailConfig
// @Router /api/settings/email [get]
func (c *SettingsController) GetEmailConfig(ctx *fiber.Ctx) error {
	tenantID, err := tenantFromClaims(ctx)
	if err != nil {
		return err
	}

	config, err := c.Service.GetEmailConfig(ctx.UserContext(), tenantID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if config == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "email configuration not set"})
	}

	config.SMTPPassword = ""
	return ctx.JSON(config)
}

// UpdateEmailConfig godoc
// @Summary Update the tenant's SMTP configuration
// @Tags settings
// @Accept json
// @Produce json
// @Param body body EmailConfig true "SMTP configuration"
// @Success 200 {object} map[string]interface{}
// @Router /api/settings/email [put]
func (c *SettingsController) UpdateEmailConfig(ctx *fiber.Ctx) error {
	tenantID, err := tenantFromClaims(ctx)
	if err != nil {
		return err
	}

	var config EmailConfig
	if err := ctx.BodyParser(&config); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := c.Service.UpdateEmailConfig(ctx.UserContext(), tenantID, config); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"updated": true})
}

// GetGeneralConfig godoc
// @Summary Get general tenant settings
// @Tags settings
// @Produce json
// @Success 200 {object} GeneralConfig
// @Router /api/settings/general [get]
func (c *SettingsController) GetGeneralConfig(ctx *fiber.Ctx) error {
	tenantID, err := tenantFromClaims(ctx)
	if err != nil {
		return err
	}

	config, err := c.Service.GetGeneralConfig(ctx.UserContext(), tenantID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(config)
}

// UpdateGeneralConfig godoc
// @Summary Update general tenant settings
// @Tags settings
// @Accept json
// @Produce json
// @Param body body GeneralConfig true "General configuration"
// @Success 200 {object} map[string]interface{}
// @Router /api/settings/general [put]
func (c *SettingsController) UpdateGeneralConfig(ctx *fiber.Ctx) error {
	tenantID, err := tenantFromClaims(ctx)
	if err != nil {
		return err
	}

	var config GeneralConfig
	if err := ctx.BodyParser(&config); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := c.Service.UpdateGeneralConfig(ctx.UserContext(), tenantID, config); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"updated": true})
}
