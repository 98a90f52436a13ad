package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/office-hours/internal/dto"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/identity"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/models"
	"github.com/gofiber/fiber/v2"
)

// RoleRequired lets the request through only when the verified caller holds
// one of roles. It must run after JWTProtected.
func RoleRequired(roles ...models.Role) fiber.Handler {
	allowed := make([]string, 0, len(roles))
	for _, r := range roles {
		allowed = append(allowed, string(r))
	}
	message := "Requires role: " + strings.Join(allowed, " or ")

	return func(c *fiber.Ctx) error {
		caller, err := identity.GetCaller(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Code: "unauthorized", Message: "Unauthorized",
			})
		}

		for _, r := range roles {
			if caller.Is(r) {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Code: "forbidden", Message: message,
		})
	}
}
