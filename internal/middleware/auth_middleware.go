package middleware

import (
	"context"
	"strings"

	"go-kiosk-pos/internal/model"
	"go-kiosk-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// StaffAuthorizer confirms the staff member behind a token may still act.
type StaffAuthorizer interface {
	Authorize(ctx context.Context, staffID uuid.UUID) (*model.Staff, error)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "UNAUTHORIZED"})
}

// RequireAuth validates the bearer token and sets staff info in context.
func RequireAuth(staff StaffAuthorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return unauthorized(c)
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return unauthorized(c)
		}

		// Deactivated staff lose access immediately, even with a live token.
		if _, err := staff.Authorize(c.UserContext(), claims.StaffID); err != nil {
			return unauthorized(c)
		}

		c.Locals("staff_id", claims.StaffID.String())
		c.Locals("staff_name", claims.Name)
		c.Locals("capabilities", claims.Capabilities)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// RequirePrivilege checks the token carries the capability.
func RequirePrivilege(required model.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caps, ok := c.Locals("capabilities").([]string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "FORBIDDEN"})
		}

		for _, p := range caps {
			if p == string(required) {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "FORBIDDEN"})
	}
}
