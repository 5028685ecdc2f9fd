package middleware

import (
	"context"

	common_models "go-hrops/internal/common/models"
	"go-hrops/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates JWT tokens and injects member claims plus the
// tenant id into the request's user context.
func AuthMiddleware(skipAuth bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAuth {
			// Inject dummy context for dev
			dummyClaims := &utils.UserClaims{
				MemberID: "dev-admin-id",
				IsAdmin:  true,
			}
			c.Locals(utils.UserClaimsKey, dummyClaims)
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		// Extract token from "Bearer <token>"
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		token := authHeader[7:]
		claims, err := utils.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals(utils.UserClaimsKey, claims)

		// Repositories resolve the tenant from the request context
		userCtx := context.WithValue(c.UserContext(), common_models.TenantIDKey, claims.TenantID)
		userCtx = context.WithValue(userCtx, utils.ClaimsContextKey, claims)
		c.SetUserContext(userCtx)

		return c.Next()
	}
}
