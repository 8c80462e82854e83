package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"docvault-be/internal/entity"
)

// NewIdentityMiddleware validates the bearer token and stores the verified
// tenant and user ids in locals. Identity is issued upstream; this service
// only verifies, it never mints tokens.
func NewIdentityMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
		}

		subject, _ := claims["sub"].(string)
		if subject == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
		}

		ctx.Locals("subject_id", subject)
		if email, ok := claims["email"].(string); ok {
			ctx.Locals("subject_email", email)
		}
		return ctx.Next()
	}
}

// TenantFromCtx returns the caller identity resolved by the user bootstrap
// handler. Controllers call this instead of reading locals directly.
func TenantFromCtx(ctx *fiber.Ctx) (entity.TenantContext, error) {
	tenantId, okT := ctx.Locals("tenant_id").(uuid.UUID)
	userId, okU := ctx.Locals("user_id").(uuid.UUID)
	if !okT || !okU {
		return entity.TenantContext{}, fiber.NewError(fiber.StatusUnauthorized, "identity not resolved")
	}
	return entity.TenantContext{
		TenantId:  tenantId,
		UserId:    userId,
		ClientIP:  ctx.IP(),
		UserAgent: ctx.Get("User-Agent"),
	}, nil
}
